package battle

// Field is the singleton global scope weather, terrain, and pseudo-weather
// attach to. There is exactly one Field per battle, referenced by the
// constant FieldRef(1) (index 0 is never allocated, as for the other
// handle types in handles.go; there is no NoField constant).
type Field struct {
	Ref FieldRef

	Weather       EffectID
	WeatherRef    EffectRef
	Terrain       EffectID
	TerrainRef    EffectRef

	// PseudoWeathers maps a pseudo-weather's catalog id to its
	// ActiveEffectInstance ref (Trick Room, Gravity, ...).
	PseudoWeathers map[string]EffectRef
}

// NewField constructs an empty Field.
func NewField(ref FieldRef) *Field {
	return &Field{Ref: ref, PseudoWeathers: make(map[string]EffectRef)}
}

// HasWeather reports whether any weather is currently active.
func (f *Field) HasWeather() bool {
	return f.WeatherRef != NoEffect
}

// HasTerrain reports whether any terrain is currently active.
func (f *Field) HasTerrain() bool {
	return f.TerrainRef != NoEffect
}

// HasPseudoWeather reports whether the named pseudo-weather is active.
func (f *Field) HasPseudoWeather(id string) bool {
	_, ok := f.PseudoWeathers[id]
	return ok
}
