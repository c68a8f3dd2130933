package battle

import (
	"sort"

	"goldbox-rpg/pkg/fx"
)

// RunTurn is the battle scheduler's turn pipeline entry point: given one
// validated Choice per acting Mon, it resolves each into an Action,
// orders them per spec.md §4.2/§4.5 (priority bracket, then effective
// speed, PRNG-broken ties), publishes the order as PendingActors so
// run_event-style callbacks can observe "who still has to move this
// turn," and executes each Action's move/switch/item/escape/forfeit in
// order via do_move/use_move.
func (b *Battle) RunTurn(choices []Choice) {
	actions := make([]Action, 0, len(choices))
	for _, c := range choices {
		actions = append(actions, Action{
			Mon:      c.Mon,
			Choice:   c,
			Target:   b.resolveTargetPosition(c.Mon, c.Target),
			Priority: b.priorityOf(c.Mon, c),
			Speed:    b.speedOf(c.Mon),
		})
	}
	b.sortActions(actions)

	b.PendingActors = make([]MonRef, len(actions))
	for i, a := range actions {
		b.PendingActors[i] = a.Mon
	}

	for _, a := range actions {
		if mon := b.Mon(a.Mon); mon == nil || mon.Fainted {
			biDoMove(b, nil, []fx.Value{a.Mon.Value()})
			continue
		}
		b.executeAction(a)
		biDoMove(b, nil, []fx.Value{a.Mon.Value()})
	}

	b.runResidual()
}

// sortActions orders actions by (priority desc, speed desc), breaking any
// remaining tie with the battle's seeded PRNG via a Fisher-Yates shuffle
// of the tied run. dispatcher.go's sortCandidates breaks callback ties
// differently, with a per-candidate key hashed from the seed and the
// candidate's identity instead of a shuffle.
func (b *Battle) sortActions(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Priority != actions[j].Priority {
			return actions[i].Priority > actions[j].Priority
		}
		return actions[i].Speed > actions[j].Speed
	})
	n := len(actions)
	for i := 0; i < n; {
		j := i + 1
		for j < n && actions[j].Priority == actions[i].Priority && actions[j].Speed == actions[i].Speed {
			j++
		}
		if j-i > 1 {
			run := actions[i:j]
			b.RNG.Shuffle(len(run), func(x, y int) { run[x], run[y] = run[y], run[x] })
		}
		i = j
	}
}

// executeAction dispatches one Action to the matching built-in(s),
// mirroring the same operations an FX program would invoke via
// use_move/use_active_move for a move choice.
func (b *Battle) executeAction(a Action) {
	switch a.Choice.Kind {
	case ChoiceMove:
		target := a.Target
		if target == NoMon {
			target = a.Mon
		}
		biUseMove(b, nil, []fx.Value{a.Mon.Value(), fx.Str(a.Choice.MoveID), target.Value()})
	case ChoiceSwitch:
		b.performSwitch(a.Mon, a.Choice.SwitchTo)
	case ChoiceItem, ChoicePass, ChoiceEscape, ChoiceForfeit:
		// No core behavior beyond logging: item/escape/forfeit
		// resolution is a control-surface concern (pkg/server) layered
		// on top of the dispatch core's action-order guarantee.
		b.Log.Append(NewLogRecord(a.Choice.Kind.String()).
			Field(MonField(mustMonName(b, a.Mon), b.mustPlayerLabel(a.Mon), mustMonPosition(b, a.Mon))))
	}
}

// performSwitch benches out and activates in a slot swap: the fainted or
// recalled Mon's position is cleared, the replacement takes its slot, and
// the side's Active slice is updated, firing no dispatch events of its
// own here (the entry hazard / switch-in ability chain belongs to the
// control surface's richer switch handling, out of this core's scope).
func (b *Battle) performSwitch(out, in MonRef) {
	outMon, inMon := b.Mon(out), b.Mon(in)
	if outMon == nil || inMon == nil {
		return
	}
	side := b.Side(outMon.Side)
	if side == nil {
		return
	}
	position := outMon.Position
	outMon.Position = -1
	inMon.Position = position
	if position >= 0 && position < len(side.Active) {
		side.Active[position] = in
	}
	b.Log.Append(NewLogRecord("switch").
		Field(MonField(outMon.Name, b.playerLabel(outMon), -1)).
		Field(MonField(inMon.Name, b.playerLabel(inMon), position)))
}

// runResidual fires the end-of-turn Residual event across every live
// instance, ticking each finite Duration down by one immediately before
// its Residual callback (spec.md §3's duration-decrement rule), removing
// any instance whose Duration expires.
func (b *Battle) runResidual() {
	for _, inst := range b.EffectStates.All() {
		inst.Duration = inst.Duration.Tick()
		if inst.HasCallback("Residual") {
			b.Dispatcher.Dispatch("Residual", []*ActiveEffectInstance{inst}, nil, "", fx.Undefined, false)
		}
		if inst.Duration.IsExpired() {
			if inst.HasCallback("End") {
				b.Dispatcher.Dispatch("End", []*ActiveEffectInstance{inst}, nil, "", fx.Undefined, false)
			}
			b.EffectStates.Remove(inst.Ref)
		}
	}
}

func mustMonName(b *Battle, ref MonRef) string {
	if m := b.Mon(ref); m != nil {
		return m.Name
	}
	return ""
}

func mustMonPosition(b *Battle, ref MonRef) int {
	if m := b.Mon(ref); m != nil {
		return m.Position
	}
	return -1
}

func (b *Battle) mustPlayerLabel(ref MonRef) string {
	if m := b.Mon(ref); m != nil {
		return b.playerLabel(m)
	}
	return ""
}
