package battle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"goldbox-rpg/pkg/integration"
)

// Catalog is the in-memory effect data catalog: every Effect the engine
// can place, keyed by (kind, normalized id), grouped the way spec.md §6
// describes ("JSON keyed by lowercase punctuation-stripped identifier,
// grouped by generation"). Loading the catalog is an external-collaborator
// concern (spec.md §1's "static data loader"); this type is the core's
// read side of that boundary.
type Catalog struct {
	effects map[EffectID]*Effect
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{effects: make(map[EffectID]*Effect)}
}

// NormalizeIdentifier lowercases and strips punctuation from a raw
// catalog key, spec.md §6's identifier rule ("JSON keyed by lowercase
// punctuation-stripped identifier"). Built with golang.org/x/text rather
// than a hand-rolled ASCII lowercaser, so that catalog identifiers using
// non-ASCII letters (accented move/ability names in some generations)
// fold correctly.
func NormalizeIdentifier(raw string) string {
	stripper := runes.Remove(runes.Predicate(isStrippablePunctuation))
	normalized, _, err := transform.String(stripper, raw)
	if err != nil {
		normalized = raw
	}
	return cases.Lower(language.Und).String(normalized)
}

func isStrippablePunctuation(r rune) bool {
	switch r {
	case ' ', '-', '\'', '.', '_', ':', ',':
		return true
	default:
		return false
	}
}

// Put registers eff under its own ID, keyed by the normalized identifier.
func (c *Catalog) Put(eff *Effect) {
	eff.ID.ID = NormalizeIdentifier(eff.ID.ID)
	c.effects[eff.ID] = eff
}

// Get looks up an effect by kind and raw (not-yet-normalized) id.
func (c *Catalog) Get(kind EffectKind, id string) (*Effect, bool) {
	eff, ok := c.effects[EffectID{Kind: kind, ID: NormalizeIdentifier(id)}]
	return eff, ok
}

// Merge copies every entry of other into c, overwriting any existing
// (kind, id) collision. Used to assemble a Battle's full Catalog from
// several LoadCatalogDir calls (one per kind-specific file).
func (c *Catalog) Merge(other *Catalog) {
	for id, eff := range other.effects {
		c.effects[id] = eff
	}
}

// entryFile is the on-disk shape of one catalog JSON file: a flat map of
// normalized identifier to the effect body (spec.md §6).
type entryFile map[string]*catalogEntry

// catalogEntry mirrors an Effect's JSON shape before the (kind, id) pair
// (known from the file's kind and the map key, not the JSON body itself)
// is attached.
type catalogEntry struct {
	Name      string              `json:"name"`
	Flags     map[string]bool     `json:"flags"`
	Move      *MoveData           `json:"move"`
	Effect    *effectBlockJSON    `json:"effect"`
	Condition *conditionBlockJSON `json:"condition"`
	LocalData *localDataJSON      `json:"local_data"`
}

type effectBlockJSON struct {
	Callbacks map[string][]*callbackJSON `json:"callbacks"`
}

type conditionBlockJSON struct {
	Callbacks map[string][]*callbackJSON `json:"callbacks"`
	Duration  *int                       `json:"duration"`
	NoCopy    bool                       `json:"no_copy"`
}

type localDataJSON struct {
	Moves map[string]*catalogEntry `json:"moves"`
}

// callbackJSON accepts either bare program array form or the
// meta-plus-program object form spec.md §6 documents ("A callback value
// may be either a program (array) or an object with meta + program").
type callbackJSON struct {
	Order    *int            `json:"order"`
	Priority int             `json:"priority"`
	SubOrder int             `json:"sub_order"`
	Program  json.RawMessage `json:"program"`
}

func (c *callbackJSON) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		c.Program = json.RawMessage(data)
		return nil
	}
	type alias callbackJSON
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = callbackJSON(a)
	return nil
}

// LoadCatalogDir loads the single JSON file filename under dir as one
// kind of catalog entries (spec.md's "grouped by generation" is a
// within-file concern the data itself encodes; this loader is
// kind-per-file, the layout a data directory of
// moves.json/abilitys.json/items.json/... uses).
// File reads are wrapped with the resilience/retry layer used elsewhere
// for external-boundary I/O (spec.md §1 treats the catalog source as an
// external collaborator).
func LoadCatalogDir(ctx context.Context, dir string, kind EffectKind, filename string) (*Catalog, error) {
	cat := NewCatalog()
	path := filepath.Join(dir, filename)

	var raw []byte
	err := integration.ExecuteFileSystemOperation(ctx, func(ctx context.Context) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		raw = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("battle: load catalog %s: %w", path, err)
	}

	var file entryFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("battle: parse catalog %s: %w", path, err)
	}

	for id, entry := range file {
		cat.Put(buildEffect(kind, id, entry))
	}
	return cat, nil
}

// catalogKinds lists every EffectKind a data directory may supply one
// `<kind>s.json` file for; KindFormat/KindClause/KindBuiltIn have no file
// form (formats and clauses are composed in-memory from the others, and
// built-ins are Go code, never catalog data).
var catalogKinds = []EffectKind{
	KindMove, KindAbility, KindItem, KindStatus, KindVolatile,
	KindSideCondition, KindWeather, KindTerrain, KindPseudoWeather,
}

// LoadCatalogFromDataDir loads every per-kind file under dir and merges
// them into one Catalog, the shape both the control surface and the
// headless CLI runner build a battle's data from. A missing category
// file is not fatal; other categories still load.
func LoadCatalogFromDataDir(ctx context.Context, dir string) (*Catalog, error) {
	cat := NewCatalog()
	for _, kind := range catalogKinds {
		loaded, err := LoadCatalogDir(ctx, dir, kind, kind.String()+"s.json")
		if err != nil {
			continue
		}
		cat.Merge(loaded)
	}
	return cat, nil
}

func buildEffect(kind EffectKind, id string, entry *catalogEntry) *Effect {
	eff := &Effect{
		ID:       EffectID{Kind: kind, ID: id},
		Name:     entry.Name,
		Flags:    entry.Flags,
		MoveData: entry.Move,
	}
	if entry.Effect != nil {
		eff.Callbacks = buildCallbacks(entry.Effect.Callbacks)
	}
	if entry.Condition != nil {
		cond := &Condition{
			Callbacks: buildCallbacks(entry.Condition.Callbacks),
			NoCopy:    entry.Condition.NoCopy,
		}
		if entry.Condition.Duration != nil {
			d := NewDuration(*entry.Condition.Duration)
			cond.DefaultDuration = &d
		}
		eff.Condition = cond
	}
	if entry.LocalData != nil {
		local := &LocalCatalog{Moves: make(map[string]*Effect, len(entry.LocalData.Moves))}
		for moveID, moveEntry := range entry.LocalData.Moves {
			local.Moves[NormalizeIdentifier(moveID)] = buildEffect(KindMove, moveID, moveEntry)
		}
		eff.LocalData = local
	}
	return eff
}

func buildCallbacks(raw map[string][]*callbackJSON) map[string][]*Callback {
	if raw == nil {
		return nil
	}
	out := make(map[string][]*Callback, len(raw))
	for event, cbs := range raw {
		list := make([]*Callback, 0, len(cbs))
		for _, cb := range cbs {
			entry := &Callback{
				Event:    event,
				Priority: cb.Priority,
				SubOrder: cb.SubOrder,
				Raw:      cb.Program,
			}
			if cb.Order != nil {
				entry.Order = *cb.Order
				entry.HasOrder = true
			}
			list = append(list, entry)
		}
		out[event] = list
	}
	return out
}
