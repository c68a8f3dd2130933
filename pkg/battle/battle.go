package battle

import (
	"github.com/sirupsen/logrus"

	"goldbox-rpg/pkg/fx"
)

// Battle is the root of every arena a FX program or built-in resolves
// handles against: Mons, Sides, the Field, Players, the effect-state
// store, the parsed-program cache, the deterministic PRNG, the battle
// log, and the diagnostic sink. No code outside this file constructs one
// directly from its zero value; use NewBattle.
//
// Battle itself implements fx.Host, so that `CallExpr` nodes route
// straight back into the built-in registry (builtins.go) without any
// intermediate adapter type.
type Battle struct {
	Config *EngineConfig

	Mons    []*Mon // index 0 unused; MonRef(0) is NoMon
	Sides   []*Side
	Field   *Field
	Players []*Player

	Catalog      *Catalog
	EffectStates *EffectStateStore
	ProgramCache *ProgramCache
	Dispatcher   *Dispatcher
	RNG          Rand
	Log          *Log
	Diagnostics  *Diagnostics
	Metrics      *Metrics

	activeMoves map[ActiveMoveRef]*ActiveMove
	nextMoveRef ActiveMoveRef

	// PendingActors lists the Mons still due to act this turn, maintained
	// by the turn scheduler; any_mon_will_move_this_turn consults it.
	PendingActors []MonRef

	builtins map[string]BuiltinFunc
}

// NewBattle constructs an empty battle wired with cfg's knobs. Mons,
// Sides, and the Field are populated by the caller (typically pkg/server,
// translating a battle-creation request) via AddSide/AddMon before the
// first turn begins.
func NewBattle(cfg *EngineConfig) *Battle {
	metrics := NewMetrics()
	b := &Battle{
		Config:       cfg,
		Mons:         []*Mon{nil}, // reserve index 0 for NoMon
		Sides:        []*Side{nil},
		Field:        NewField(FieldRef(1)),
		Players:      []*Player{nil},
		Catalog:      NewCatalog(),
		EffectStates: NewEffectStateStore(),
		ProgramCache: NewProgramCache(cfg.ProgramCacheCapacity, metrics),
		RNG:          cfg.newRand(),
		Log:          NewLog(),
		Diagnostics:  NewDiagnostics(metrics),
		Metrics:      metrics,
		activeMoves:  make(map[ActiveMoveRef]*ActiveMove),
	}
	b.Dispatcher = NewDispatcher(b)
	b.builtins = defaultBuiltins()
	return b
}

// AddPlayer registers a new player and returns its PlayerRef.
func (b *Battle) AddPlayer(id, name string) PlayerRef {
	ref := PlayerRef(len(b.Players))
	b.Players = append(b.Players, &Player{Ref: ref, ID: id, Name: name})
	return ref
}

// AddSide registers a new side owned by player and returns its SideRef.
func (b *Battle) AddSide(player PlayerRef) SideRef {
	ref := SideRef(len(b.Sides))
	side := NewSide(ref, player, nil)
	b.Sides = append(b.Sides, side)
	if player != NoPlayer {
		b.Players[player].Side = ref
	}
	return ref
}

// AddMon registers a new Mon on side and returns its MonRef.
func (b *Battle) AddMon(side SideRef, mon *Mon) MonRef {
	ref := MonRef(len(b.Mons))
	mon.Ref = ref
	mon.Side = side
	mon.Position = -1
	if mon.Volatiles == nil {
		mon.Volatiles = make(map[string]EffectRef)
	}
	b.Mons = append(b.Mons, mon)
	b.Sides[side].Mons = append(b.Sides[side].Mons, ref)
	return ref
}

// Mon resolves ref against the Mon arena. Callers must re-resolve on
// every use rather than retaining the returned pointer across a built-in
// call (spec.md §9).
func (b *Battle) Mon(ref MonRef) *Mon {
	if int(ref) <= 0 || int(ref) >= len(b.Mons) {
		return nil
	}
	return b.Mons[ref]
}

// Side resolves ref against the Side arena.
func (b *Battle) Side(ref SideRef) *Side {
	if int(ref) <= 0 || int(ref) >= len(b.Sides) {
		return nil
	}
	return b.Sides[ref]
}

// Player resolves ref against the Player arena.
func (b *Battle) Player(ref PlayerRef) *Player {
	if int(ref) <= 0 || int(ref) >= len(b.Players) {
		return nil
	}
	return b.Players[ref]
}

// ActiveMove resolves ref against the transient active-move table.
func (b *Battle) ActiveMove(ref ActiveMoveRef) *ActiveMove {
	return b.activeMoves[ref]
}

// NewActiveMoveRef allocates a fresh ActiveMoveRef for am, valid for the
// duration of one move's resolution (spec.md's `use_active_move`/
// `calculate_damage` built-ins operate against one of these).
func (b *Battle) NewActiveMoveRef(am *ActiveMove) ActiveMoveRef {
	b.nextMoveRef++
	ref := b.nextMoveRef
	am.Ref = ref
	b.activeMoves[ref] = am
	return ref
}

// ReleaseActiveMove discards a transient ActiveMove once its move
// resolution completes; any ActiveMoveRef still held afterward resolves
// to nil via ActiveMove.
func (b *Battle) ReleaseActiveMove(ref ActiveMoveRef) {
	delete(b.activeMoves, ref)
}

// Call implements fx.Host: every CallExpr an FX program evaluates routes
// here, dispatched against the closed built-in registry (builtins.go).
func (b *Battle) Call(ctx *fx.EvalContext, name string, args []fx.Value) (fx.Value, error) {
	fn, ok := b.builtins[name]
	if !ok {
		return fx.Undefined, &fx.RuntimeError{Kind: fx.ErrKindType, Msg: "unknown built-in: " + name}
	}
	return fn(b, ctx, args)
}

// logScriptFailure routes a callback's evaluation error to the
// diagnostic sink, distinguishing a parse failure (cached as a negative
// result, logged once per identity) from a runtime failure (logged every
// occurrence), per spec.md §7.
func (b *Battle) logScriptFailure(identity EffectID, event string, err error) {
	if _, isParseErr := err.(*fx.ParseError); isParseErr {
		b.Diagnostics.RecordParseFailure(identity, event, err)
		return
	}
	b.Diagnostics.RecordRuntimeFailure(identity, event, err)
	logrus.WithFields(logrus.Fields{
		"function": "Battle.logScriptFailure",
		"package":  "battle",
		"effect":   identity.String(),
		"event":    event,
	}).Debug("script failure handled transparently, dispatch continues")
}
