package battle

// EventShape classifies how a dispatch interprets its candidates' return
// values (spec.md §4.5): a Broadcast event relays a value through each
// surviving callback in order and honors the `false`/`stop`/`0` early-exit
// sentinels; a State event dispatches to every candidate in scope and
// short-circuits on the first `true` (e.g. IsRaining, IsGrounded).
type EventShape int

const (
	ShapeBroadcast EventShape = iota
	ShapeState
)

// EventDef is the catalog entry for one event name: its shape and the
// default `order` a callback registers under when its catalog entry omits
// one (spec.md §3's EventRegistration: "order (default by event)").
type EventDef struct {
	Name         string
	Shape        EventShape
	DefaultOrder int
}

// eventCatalog is the closed registry of events the dispatcher and
// scheduler know about, matching spec.md §4.2/§4.5's named events. No
// entry sets DefaultOrder, so every event's default order is 0; a
// callback takes a different place only by setting `order` in its
// catalog entry.
var eventCatalog = buildEventCatalog()

func buildEventCatalog() map[string]*EventDef {
	defs := []*EventDef{
		// Suppression queries (state events, depth-1 guarded).
		{Name: "SuppressMonAbility", Shape: ShapeState},
		{Name: "SuppressMonItem", Shape: ShapeState},
		{Name: "SuppressMonWeather", Shape: ShapeState},
		{Name: "SuppressFieldWeather", Shape: ShapeState},
		{Name: "SuppressMonTerrain", Shape: ShapeState},
		{Name: "SuppressFieldTerrain", Shape: ShapeState},

		// Other state events.
		{Name: "IsRaining", Shape: ShapeState},
		{Name: "IsGrounded", Shape: ShapeState},
		{Name: "IsSemiInvulnerable", Shape: ShapeState},

		// Instance lifecycle.
		{Name: "Start", Shape: ShapeBroadcast},
		{Name: "Restart", Shape: ShapeBroadcast},
		{Name: "Duration", Shape: ShapeBroadcast},
		{Name: "End", Shape: ShapeBroadcast},

		// Before-turn setup.
		{Name: "DisableMove", Shape: ShapeBroadcast},
		{Name: "TrapMon", Shape: ShapeBroadcast},
		{Name: "PreventUsedItems", Shape: ShapeBroadcast},
		{Name: "LockMove", Shape: ShapeBroadcast},
		{Name: "MoveTargetOverride", Shape: ShapeBroadcast},

		// Choice sorting.
		{Name: "ModifyPriority", Shape: ShapeBroadcast},
		{Name: "SubPriority", Shape: ShapeBroadcast},

		// Per-move phases.
		{Name: "BeforeMove", Shape: ShapeBroadcast},
		{Name: "UseMove", Shape: ShapeBroadcast},
		{Name: "TryMove", Shape: ShapeBroadcast},
		{Name: "PrepareHit", Shape: ShapeBroadcast},

		// Hit loop.
		{Name: "Invulnerability", Shape: ShapeBroadcast},
		{Name: "TryHit", Shape: ShapeBroadcast},
		{Name: "IgnoreImmunity", Shape: ShapeBroadcast},
		{Name: "NegateImmunity", Shape: ShapeBroadcast},
		{Name: "TypeImmunity", Shape: ShapeBroadcast},
		{Name: "TryImmunity", Shape: ShapeBroadcast},
		{Name: "Immunity", Shape: ShapeBroadcast},
		{Name: "ModifyAccuracy", Shape: ShapeBroadcast},
		{Name: "ModifyBoosts", Shape: ShapeBroadcast},
		{Name: "ModifyCritRatio", Shape: ShapeBroadcast},
		{Name: "ModifyCritChance", Shape: ShapeBroadcast},
		{Name: "CriticalHit", Shape: ShapeBroadcast},
		{Name: "ModifyAtk", Shape: ShapeBroadcast},
		{Name: "ModifyDef", Shape: ShapeBroadcast},
		{Name: "ModifySpA", Shape: ShapeBroadcast},
		{Name: "ModifySpD", Shape: ShapeBroadcast},
		{Name: "ModifySpe", Shape: ShapeBroadcast},
		{Name: "WeatherModifyDamage", Shape: ShapeBroadcast},
		{Name: "Effectiveness", Shape: ShapeBroadcast},
		{Name: "ModifyDamage", Shape: ShapeBroadcast},
		{Name: "Damage", Shape: ShapeBroadcast},
		{Name: "TryPrimaryHit", Shape: ShapeBroadcast},

		// Move-effect application order (spec.md §4.5 MoveHit order).
		{Name: "ChangeBoosts", Shape: ShapeBroadcast},
		{Name: "TryBoost", Shape: ShapeBroadcast},
		{Name: "CanHeal", Shape: ShapeBroadcast},
		{Name: "TryHeal", Shape: ShapeBroadcast},
		{Name: "CureStatus", Shape: ShapeBroadcast},
		{Name: "SetStatus", Shape: ShapeBroadcast},
		{Name: "AfterSetStatus", Shape: ShapeBroadcast},
		{Name: "DragOut", Shape: ShapeBroadcast},
		{Name: "Hit", Shape: ShapeBroadcast},
		{Name: "HitSide", Shape: ShapeBroadcast},
		{Name: "HitField", Shape: ShapeBroadcast},
		{Name: "DamagingHit", Shape: ShapeBroadcast},
		{Name: "AfterHit", Shape: ShapeBroadcast},
		{Name: "Update", Shape: ShapeBroadcast},
		{Name: "ModifySecondaryEffects", Shape: ShapeBroadcast},

		// Post-move/residual/end.
		{Name: "AfterMove", Shape: ShapeBroadcast},
		{Name: "SetLastMove", Shape: ShapeBroadcast},
		{Name: "DeductPp", Shape: ShapeBroadcast},
		{Name: "Residual", Shape: ShapeBroadcast},

		// Weather/terrain broadcasts.
		{Name: "WeatherMon", Shape: ShapeBroadcast},
		{Name: "TerrainMon", Shape: ShapeBroadcast},
	}
	m := make(map[string]*EventDef, len(defs))
	for _, d := range defs {
		m[d.Name] = d
	}
	return m
}

// lookupEvent returns the catalog entry for name, or a generic
// zero-order Broadcast definition for names the static catalog above
// doesn't enumerate (the catalog above documents the events spec.md
// names explicitly; a data-driven effect may still register a handler
// for any event string the scheduler chooses to fire).
func lookupEvent(name string) *EventDef {
	if d, ok := eventCatalog[name]; ok {
		return d
	}
	return &EventDef{Name: name, Shape: ShapeBroadcast}
}

// suppressionEventFor maps a suppressible kind to the state event the
// dispatcher consults before invoking a callback of that kind (spec.md
// §4.5 step 4).
var suppressionEventFor = map[string]string{
	"ability": "SuppressMonAbility",
	"item":    "SuppressMonItem",
	"weather": "SuppressMonWeather",
	"terrain": "SuppressMonTerrain",
}
