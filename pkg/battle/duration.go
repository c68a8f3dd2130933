package battle

import "strconv"

// Duration tracks an ActiveEffectInstance's remaining lifetime in turns.
// Per spec.md §3, duration is optional (Indefinite == true means no
// expiry) and, when set, decrements by one immediately before each
// Residual firing; reaching zero triggers End (or its scope-specific
// variant) during destruction.
type Duration struct {
	Turns      int
	Indefinite bool
}

// Forever is the indefinite Duration value.
var Forever = Duration{Indefinite: true}

// NewDuration constructs a finite Duration of the given number of turns.
func NewDuration(turns int) Duration {
	return Duration{Turns: turns}
}

// IsExpired reports whether the duration has elapsed.
func (d Duration) IsExpired() bool {
	return !d.Indefinite && d.Turns <= 0
}

// Tick decrements a finite duration by one turn, clamping at zero. It is a
// no-op for an indefinite duration. Called once per instance immediately
// before the instance's Residual callback fires.
func (d Duration) Tick() Duration {
	if d.Indefinite || d.Turns <= 0 {
		return d
	}
	return Duration{Turns: d.Turns - 1}
}

// String renders the duration for log records and diagnostics.
func (d Duration) String() string {
	if d.Indefinite {
		return "indefinite"
	}
	if d.Turns == 1 {
		return "1 turn"
	}
	return strconv.Itoa(d.Turns) + " turns"
}
