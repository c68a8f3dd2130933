package battle

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"goldbox-rpg/pkg/fx"
)

// programCacheKey identifies one parsed FX program: the effect identity
// the callback belongs to, the event name (an effect can register a
// different program per event), and the callback's slot index, which
// disambiguates several programs registered for the same event.
type programCacheKey struct {
	effect EffectID
	event  string
	slot   int // index within Callbacks(event), disambiguates multiple handlers for one event
}

// ProgramCache memoizes parsed FX programs by effect identity, avoiding a
// re-parse of the same callback's JSON on every dispatch (spec.md §4.4:
// "parsed programs are cached... keyed by effect identity", capacity at
// least 64). Backed by `hashicorp/golang-lru`, the same bounded-LRU
// library used elsewhere in the retrieved corpus's tooling, rather than a
// hand-rolled container/list cache.
type ProgramCache struct {
	cache   *lru.Cache[programCacheKey, *fx.Program]
	metrics *Metrics
}

// DefaultProgramCacheCapacity is the minimum capacity spec.md §4.4 requires.
const DefaultProgramCacheCapacity = 64

// NewProgramCache creates a cache holding up to capacity parsed programs;
// capacity is clamped up to DefaultProgramCacheCapacity if given smaller.
// metrics may be nil (tests construct caches without a metrics registry).
func NewProgramCache(capacity int, metrics *Metrics) *ProgramCache {
	if capacity < DefaultProgramCacheCapacity {
		capacity = DefaultProgramCacheCapacity
	}
	c, err := lru.New[programCacheKey, *fx.Program](capacity)
	if err != nil {
		// lru.New only errors for a non-positive size, which the clamp
		// above rules out.
		panic(err)
	}
	return &ProgramCache{cache: c, metrics: metrics}
}

// Get resolves cb's program for identity/event/slot, parsing and caching
// it on first use. A parse failure is returned to the caller (the
// dispatcher logs it to the diagnostic sink and skips the callback,
// spec.md §7) and is not cached, so a later catalog hot-reload correcting
// the script is picked up without restarting the process.
func (pc *ProgramCache) Get(identity EffectID, event string, slot int, cb *Callback) (*fx.Program, error) {
	key := programCacheKey{effect: identity, event: event, slot: slot}
	if prog, ok := pc.cache.Get(key); ok {
		if pc.metrics != nil {
			pc.metrics.RecordCacheHit()
		}
		return prog, nil
	}
	if pc.metrics != nil {
		pc.metrics.RecordCacheMiss()
	}
	prog, err := fx.ParseProgramJSON(cb.Raw)
	if err != nil {
		return nil, err
	}
	pc.cache.Add(key, prog)
	return prog, nil
}

// Invalidate drops every cached program for the given effect identity,
// used when a catalog reload replaces that effect's definition.
func (pc *ProgramCache) Invalidate(identity EffectID) {
	for _, key := range pc.cache.Keys() {
		if key.effect == identity {
			pc.cache.Remove(key)
		}
	}
}

// Len reports the number of programs currently cached, for metrics/tests.
func (pc *ProgramCache) Len() int { return pc.cache.Len() }
