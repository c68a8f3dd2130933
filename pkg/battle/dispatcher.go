package battle

import (
	"encoding/binary"
	"hash/fnv"
	"sort"

	"github.com/sirupsen/logrus"

	"goldbox-rpg/pkg/fx"
)

// candidate is one (instance, callback) pair collected for a dispatch,
// the unit the sort/suppress/relay pipeline in spec.md §4.5 operates on.
type candidate struct {
	instance *ActiveEffectInstance
	callback *Callback
	slot     int    // index of callback within instance.Callbacks(event), for cache keying
	rngKey   uint64 // stable per-candidate tie-break seed input, keyed on identity not position
}

// tieBreakKey derives a stable pseudo-random tie-break value from the
// battle seed and a candidate's identity (instance ref + callback slot),
// never from the candidate's position in the collected slice. Collection
// walks EffectStateStore's map-backed ForScope/All, whose iteration order
// Go leaves unspecified per run; keying on identity instead of position is
// what makes two runs of the same (seed, catalog, choices) agree on tie
// order even when the two runs collect the same candidates in different
// sequences (spec.md §8).
func tieBreakKey(seed int64, ref EffectRef, slot int) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(ref)<<32|uint64(uint32(slot)))
	h.Write(buf[:])
	return h.Sum64()
}

// sortCandidates orders candidates by (order asc, priority desc,
// sub_order asc, PRNG tie-break), spec.md §4.5 step 3. The comparator is
// total: the PRNG tie-break is a per-candidate key derived from stable
// identity (tieBreakKey), not a Fisher-Yates shuffle over the run's
// position, so the same seed resolves the same tie the same way
// regardless of what order the candidates arrived in.
func sortCandidates(cs []candidate, rng Rand, def *EventDef) {
	order := func(c candidate) int {
		if c.callback.HasOrder {
			return c.callback.Order
		}
		return def.DefaultOrder
	}
	seed := rng.Seed()
	for i := range cs {
		cs[i].rngKey = tieBreakKey(seed, cs[i].instance.Ref, cs[i].slot)
	}
	sort.SliceStable(cs, func(i, j int) bool {
		oi, oj := order(cs[i]), order(cs[j])
		if oi != oj {
			return oi < oj
		}
		if cs[i].callback.Priority != cs[j].callback.Priority {
			return cs[i].callback.Priority > cs[j].callback.Priority
		}
		if cs[i].callback.SubOrder != cs[j].callback.SubOrder {
			return cs[i].callback.SubOrder < cs[j].callback.SubOrder
		}
		return cs[i].rngKey < cs[j].rngKey
	})
}

// sentinel classifies a callback's return value per spec.md §4.5 step 6.
type sentinel int

const (
	sentinelNone  sentinel = iota // no value / Undefined: relay unchanged
	sentinelValue                 // a concrete value: overwrite relay
	sentinelFalse                 // boolean false: stop dispatch, return false
	sentinelStop                  // string "stop": stop dispatch, return current relay
	sentinelZero                  // integer 0 on events honoring "handled" semantics
)

func classify(v fx.Value, honorsZero bool) sentinel {
	switch v.Kind() {
	case fx.KindUndefined:
		return sentinelNone
	case fx.KindBool:
		if !v.AsBool() {
			return sentinelFalse
		}
		return sentinelValue
	case fx.KindString:
		if v.AsString() == "stop" {
			return sentinelStop
		}
		return sentinelValue
	case fx.KindInt:
		if honorsZero && v.AsInt() == 0 {
			return sentinelZero
		}
		return sentinelValue
	default:
		return sentinelValue
	}
}

// DispatchResult is the outcome of firing a broadcast event.
type DispatchResult struct {
	Relay   fx.Value
	Stopped bool
	Handled bool // true if a sentinelZero ended dispatch under "handled" semantics
}

// Dispatcher runs the collect/filter/sort/suppress/relay/interpret
// pipeline spec.md §4.5 describes, against one Battle's effect-state
// store, program cache, and PRNG.
type Dispatcher struct {
	battle         *Battle
	suppressDepth  map[string]int
}

// NewDispatcher constructs a Dispatcher bound to b.
func NewDispatcher(b *Battle) *Dispatcher {
	return &Dispatcher{battle: b, suppressDepth: make(map[string]int)}
}

// Collect gathers every live instance's registration for event into
// dispatch candidates, in encounter order (pre-sort); instances is the
// already-scoped set the caller assembled (applying-effect broadcast,
// field broadcast, or a bespoke scope per spec.md §4.5's two collection
// modes).
func (d *Dispatcher) Collect(event string, instances []*ActiveEffectInstance) []candidate {
	var out []candidate
	for _, inst := range instances {
		cbs := inst.Callbacks(event)
		for slot, cb := range cbs {
			out = append(out, candidate{instance: inst, callback: cb, slot: slot})
		}
	}
	return out
}

// Dispatch fires event across instances, honoring suppression, ordering,
// and relay/sentinel interpretation. honorsZero enables the integer-0
// "handled" sentinel for events that document it (e.g. TryPrimaryHit).
// bindings supplies the event-specific input bindings each candidate's
// EvalContext is seeded with (e.g. `$damage`), and relay names which
// binding key is overwritten by a callback's returned value.
func (d *Dispatcher) Dispatch(event string, instances []*ActiveEffectInstance, bindings map[string]fx.Value, relay string, initial fx.Value, honorsZero bool) (DispatchResult, error) {
	def := lookupEvent(event)
	cs := d.Collect(event, instances)
	cs = d.filterSuppressed(event, cs)
	sortCandidates(cs, d.battle.RNG, def)
	if m := d.battle.Metrics; m != nil {
		m.RecordDispatch(event, def.Shape, len(cs))
	}

	current := initial
	for _, c := range cs {
		cbBindings := WithExtra(bindings, map[string]fx.Value{})
		if relay != "" {
			cbBindings[relay] = current
		}
		dc := NewDispatchContext(d.battle, c.instance, cbBindings)
		prog, err := d.battle.ProgramCache.Get(c.instance.Identity(), event, c.slot, c.callback)
		if err != nil {
			d.battle.logScriptFailure(c.instance.Identity(), event, err)
			continue
		}
		ec := dc.EvalContext()
		ret, err := prog.Eval(ec)
		if err != nil {
			d.battle.logScriptFailure(c.instance.Identity(), event, err)
			continue
		}

		if def.Shape == ShapeState {
			if ret.Kind() == fx.KindBool && ret.AsBool() {
				return DispatchResult{Relay: fx.Bool(true), Stopped: true}, nil
			}
			continue
		}

		switch classify(ret, honorsZero) {
		case sentinelNone:
			// relay unchanged
		case sentinelValue:
			current = ret
		case sentinelFalse:
			return DispatchResult{Relay: fx.Bool(false), Stopped: true}, nil
		case sentinelStop:
			return DispatchResult{Relay: current, Stopped: true}, nil
		case sentinelZero:
			return DispatchResult{Relay: current, Stopped: true, Handled: true}, nil
		}
	}
	return DispatchResult{Relay: current}, nil
}

// filterSuppressed drops candidates whose underlying effect kind is
// currently suppressed (spec.md §4.5 step 4): before invoking an
// ability/item/weather/terrain callback, the matching Suppress* state
// event fires on the candidate's scope; a `true` response skips that
// candidate. Each candidate's own effect kind decides whether any
// suppression check applies to it at all — most callback sources (moves,
// statuses, volatiles, ...) are never suppressible and pass straight
// through.
func (d *Dispatcher) filterSuppressed(event string, cs []candidate) []candidate {
	out := make([]candidate, 0, len(cs))
	for _, c := range cs {
		suppEvent, ok := suppressionEventFor[suppressibleKindOf(c.instance.Effect.ID.Kind)]
		if !ok || d.suppressDepth[suppEvent] > 0 {
			// Not a suppressible kind, or already one level deep
			// resolving this very suppression event: the depth-1
			// guard forbids a suppressor from itself being
			// suppressed (spec.md §4.5 step 4).
			out = append(out, c)
			continue
		}
		if d.isSuppressed(suppEvent, c.instance) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (d *Dispatcher) isSuppressed(suppEvent string, inst *ActiveEffectInstance) bool {
	d.suppressDepth[suppEvent]++
	defer func() { d.suppressDepth[suppEvent]-- }()

	scopeInstances := d.battle.EffectStates.ForScope(inst.Scope, inst.Owner)
	res, err := d.Dispatch(suppEvent, scopeInstances, map[string]fx.Value{"effect": inst.Ref.Value()}, "", fx.Undefined, false)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "isSuppressed",
			"package":  "battle",
			"event":    suppEvent,
			"error":    err,
		}).Warn("suppression check failed, treating as unsuppressed")
		return false
	}
	suppressed := res.Stopped && res.Relay.Kind() == fx.KindBool && res.Relay.AsBool()
	if m := d.battle.Metrics; m != nil {
		m.RecordSuppressionCheck(suppressibleKindOf(inst.Effect.ID.Kind), suppressed)
	}
	return suppressed
}

// suppressibleKindOf maps an effect kind to its suppression-table key
// ("ability", "item", "weather", "terrain"), or "" for every kind spec.md
// §4.5 step 4 never gates (moves, statuses, volatiles, side/slot
// conditions, pseudo-weather, format, clause, built-in).
func suppressibleKindOf(kind EffectKind) string {
	switch kind {
	case KindAbility:
		return "ability"
	case KindItem:
		return "item"
	case KindWeather:
		return "weather"
	case KindTerrain:
		return "terrain"
	default:
		return ""
	}
}
