package battle

import "testing"

func TestNewFieldStartsEmpty(t *testing.T) {
	f := NewField(FieldRef(1))

	if f.HasWeather() {
		t.Error("a fresh field should report no active weather")
	}
	if f.HasTerrain() {
		t.Error("a fresh field should report no active terrain")
	}
	if f.HasPseudoWeather("trickroom") {
		t.Error("a fresh field should report no active pseudo-weather")
	}
}

func TestFieldWeatherTerrainState(t *testing.T) {
	f := NewField(FieldRef(1))

	f.Weather = EffectID{Kind: KindWeather, ID: "raindance"}
	f.WeatherRef = EffectRef(1)
	if !f.HasWeather() {
		t.Error("expected HasWeather to report true once WeatherRef is set")
	}

	f.Terrain = EffectID{Kind: KindTerrain, ID: "electricterrain"}
	f.TerrainRef = EffectRef(2)
	if !f.HasTerrain() {
		t.Error("expected HasTerrain to report true once TerrainRef is set")
	}

	f.PseudoWeathers["trickroom"] = EffectRef(3)
	if !f.HasPseudoWeather("trickroom") {
		t.Error("expected HasPseudoWeather to report true for a registered id")
	}
	if f.HasPseudoWeather("gravity") {
		t.Error("expected HasPseudoWeather to report false for an unregistered id")
	}
}
