package battle

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Rand is the deterministic PRNG surface the engine uses everywhere a
// random decision is required: move/ability/item built-ins (`random`,
// `chance`, `sample`), dispatch-order tie-breaking among same
// (order, priority, sub_order) candidates, and action-order resolution
// among equal-priority/equal-speed actions (spec.md §4.2, §9's bit-
// identical reproducibility requirement). A single seeded source drives
// all of these so that a fixed seed reproduces an entire battle bit for
// bit.
type Rand interface {
	// Intn returns a pseudo-random int in [0, n).
	Intn(n int) int
	// Chance reports true with probability num/den (spec.md's `chance`
	// built-in signature of numerator/denominator rather than a float,
	// to keep outcomes exactly reproducible across platforms).
	Chance(num, den int) bool
	// Shuffle permutes n elements in place via swap, Fisher-Yates.
	Shuffle(n int, swap func(i, j int))
	// Seed reports the seed this source was constructed with, recorded
	// in the battle log header for reproduction.
	Seed() int64
}

// pcgRand is the default Rand, a seeded math/rand.Rand wrapped to satisfy
// the narrower Rand surface and to log construction the way the teacher's
// DiceRoller does.
type pcgRand struct {
	seed int64
	r    *rand.Rand
}

// NewRand constructs a deterministic Rand from seed. The same seed always
// produces the same sequence of decisions for a given sequence of calls,
// which is the engine's entire reproducibility contract — callers must not
// reorder or skip calls to this source based on anything nondeterministic.
func NewRand(seed int64) Rand {
	logrus.WithFields(logrus.Fields{
		"function": "NewRand",
		"package":  "battle",
		"seed":     seed,
	}).Debug("entering NewRand")
	return &pcgRand{seed: seed, r: rand.New(rand.NewSource(seed))}
}

func (p *pcgRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return p.r.Intn(n)
}

func (p *pcgRand) Chance(num, den int) bool {
	if den <= 0 {
		return false
	}
	if num >= den {
		return true
	}
	if num <= 0 {
		return false
	}
	return p.r.Intn(den) < num
}

func (p *pcgRand) Shuffle(n int, swap func(i, j int)) {
	p.r.Shuffle(n, swap)
}

func (p *pcgRand) Seed() int64 { return p.seed }

// controlledRand wraps a Rand with a fixed per-call-site override table
// (spec.md's engine-config "controlled-RNG map", used by test cases that
// pin specific rolls — e.g. "this secondary effect's `chance` call always
// hits"). Lookups are keyed by a caller-supplied site name; a site absent
// from the table falls through to the underlying Rand unchanged.
type controlledRand struct {
	base      Rand
	overrides map[string]bool
	site      string
}

// NewControlledRand layers fixed true/false overrides, keyed by call-site
// name, over base. Call Site to scope the next Chance call to a named
// override before invoking it.
func NewControlledRand(base Rand, overrides map[string]bool) *controlledRand {
	return &controlledRand{base: base, overrides: overrides}
}

// Site scopes the next Chance call to the named override entry, returning
// the same *controlledRand for chaining: `rng.Site("confusion_chance").Chance(1, 3)`.
func (c *controlledRand) Site(name string) *controlledRand {
	c.site = name
	return c
}

func (c *controlledRand) Intn(n int) int { return c.base.Intn(n) }

func (c *controlledRand) Chance(num, den int) bool {
	if c.site != "" {
		if forced, ok := c.overrides[c.site]; ok {
			c.site = ""
			return forced
		}
		c.site = ""
	}
	return c.base.Chance(num, den)
}

func (c *controlledRand) Shuffle(n int, swap func(i, j int)) { c.base.Shuffle(n, swap) }
func (c *controlledRand) Seed() int64                        { return c.base.Seed() }
