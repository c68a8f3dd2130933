package battle

import "testing"

func TestHasFlag(t *testing.T) {
	var nilEffect *Effect
	if nilEffect.HasFlag("contact") {
		t.Error("a nil effect should report false for any flag")
	}

	eff := &Effect{Flags: map[string]bool{"contact": true, "sound": false}}
	if !eff.HasFlag("contact") {
		t.Error("expected contact flag to be true")
	}
	if eff.HasFlag("sound") {
		t.Error("expected sound flag to be false")
	}
	if eff.HasFlag("missing") {
		t.Error("expected an absent flag to report false")
	}
}

func TestResolvedCallbacksConditionOverridesEffect(t *testing.T) {
	effectLevel := []*Callback{{Event: "Start"}}
	conditionLevel := []*Callback{{Event: "Start"}, {Event: "Start"}}

	eff := &Effect{
		Callbacks: map[string][]*Callback{
			"Start": effectLevel,
			"End":   {{Event: "End"}},
		},
		Condition: &Condition{
			Callbacks: map[string][]*Callback{
				"Start": conditionLevel,
			},
		},
	}

	merged := eff.ResolvedCallbacks()
	if len(merged["Start"]) != 2 {
		t.Errorf("expected the Condition's Start callbacks to take precedence, got %d entries", len(merged["Start"]))
	}
	if len(merged["End"]) != 1 {
		t.Error("expected an event defined only on the Effect to survive the merge")
	}
}

func TestDefaultDurationFallsBackToForever(t *testing.T) {
	bare := &Effect{}
	if got := bare.DefaultDuration(); got != Forever {
		t.Errorf("expected an effect with no Condition to default to Forever, got %v", got)
	}

	finite := NewDuration(3)
	withCondition := &Effect{Condition: &Condition{DefaultDuration: &finite}}
	if got := withCondition.DefaultDuration(); got != finite {
		t.Errorf("expected the Condition's DefaultDuration to be used, got %v", got)
	}
}
