package battle

import "goldbox-rpg/pkg/fx"

// Action is a validated Choice resolved into the concrete form the turn
// scheduler orders and executes: a move's priority bracket and the
// acting Mon's effective speed are computed once up front so the sort in
// scheduler.go never re-queries battle state mid-sort.
type Action struct {
	Mon    MonRef
	Choice Choice
	Target MonRef

	Priority int
	Speed    int
}

// speedOf reads mon's effective speed, boost stage applied, the value
// the turn order sort compares (spec.md §4.2's action-order resolution:
// "equal-priority/equal-speed actions" broken by the battle's PRNG).
func (b *Battle) speedOf(mon MonRef) int {
	m := b.Mon(mon)
	if m == nil {
		return 0
	}
	num, den := boostMultiplier(m.Boost(StatSpe))
	return m.Stats[StatSpe] * num / den
}

// priorityOf resolves a Choice's priority bracket: a move's catalog
// priority (default 0; item/switch/escape/forfeit actions use their own
// fixed brackets above all moves and return without consulting
// callbacks, and pass sorts below all moves), then lets any live
// ModifyPriority callback adjust a move's priority (spec.md §4.5's
// "Choice sorting" phase).
func (b *Battle) priorityOf(mon MonRef, c Choice) int {
	const (
		priorityForfeit = 7
		priorityEscape  = 6
		prioritySwitch  = 6
		priorityItem    = 5
	)
	switch c.Kind {
	case ChoiceForfeit:
		return priorityForfeit
	case ChoiceEscape:
		return priorityEscape
	case ChoiceSwitch:
		return prioritySwitch
	case ChoiceItem:
		return priorityItem
	case ChoicePass:
		return -127
	}

	priority := 0
	if move, ok := b.Catalog.Get(KindMove, c.MoveID); ok && move.MoveData != nil {
		priority = move.MoveData.Priority
	}
	res, err := b.Dispatcher.Dispatch("ModifyPriority", b.battleWideInstances(mon),
		map[string]fx.Value{"mon": mon.Value(), "priority": fx.Int(int64(priority))},
		"priority", fx.Int(int64(priority)), false)
	if err == nil && res.Relay.Kind() == fx.KindInt {
		priority = int(res.Relay.AsInt())
	}
	return priority
}
