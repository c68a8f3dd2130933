package battle

import "goldbox-rpg/pkg/fx"

// registerRNGBuiltins wires the PRNG-backed built-ins: random, chance,
// sample, plus the integer helpers max/min/floor_div that commonly
// accompany damage-formula scripts (spec.md §4.3).
func registerRNGBuiltins(reg map[string]BuiltinFunc) {
	reg["random"] = biRandom
	reg["chance"] = biChance
	reg["sample"] = biSample
	reg["max"] = biMax
	reg["min"] = biMin
	reg["floor_div"] = biFloorDiv
}

// random(n) -> integer in [0, n); random(lo, hi) -> integer in [lo, hi).
func biRandom(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	if len(args) == 1 {
		n, err := argInt(args, 0)
		if err != nil {
			return fx.Undefined, err
		}
		if n <= 0 {
			return fx.Undefined, typeErrorf("random: bound must be positive, got %d", n)
		}
		return fx.Int(int64(b.RNG.Intn(int(n)))), nil
	}
	lo, err := argInt(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	hi, err := argInt(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	if hi <= lo {
		return fx.Undefined, typeErrorf("random: hi must be greater than lo, got [%d, %d)", lo, hi)
	}
	return fx.Int(lo + int64(b.RNG.Intn(int(hi-lo)))), nil
}

// chance(num, den) -> boolean, true with probability num/den. An optional
// leading string argument names the call site for a controlled-RNG
// override (spec.md's engine-config "controlled-RNG map").
func biChance(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	i := 0
	var site string
	if len(args) > 0 && args[0].Kind() == fx.KindString {
		site = args[0].AsString()
		i = 1
	}
	if err := argCount(args, i+2); err != nil {
		return fx.Undefined, err
	}
	num, err := argInt(args, i)
	if err != nil {
		return fx.Undefined, err
	}
	den, err := argInt(args, i+1)
	if err != nil {
		return fx.Undefined, err
	}
	if cr, ok := b.RNG.(*controlledRand); ok && site != "" {
		return fx.Bool(cr.Site(site).Chance(int(num), int(den))), nil
	}
	return fx.Bool(b.RNG.Chance(int(num), int(den))), nil
}

// sample(list) -> a uniformly chosen element of list.
func biSample(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	if args[0].Kind() != fx.KindList {
		return fx.Undefined, typeErrorf("sample: expected a list, got %s", args[0].Kind())
	}
	items := args[0].AsList()
	if len(items) == 0 {
		return fx.Undefined, nil
	}
	return items[b.RNG.Intn(len(items))], nil
}

func biMax(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	best := args[0]
	for _, v := range args[1:] {
		if !v.IsNumeric() || !best.IsNumeric() {
			return fx.Undefined, typeErrorf("max: expected numeric arguments")
		}
		if v.Float64() > best.Float64() {
			best = v
		}
	}
	return best, nil
}

func biMin(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	best := args[0]
	for _, v := range args[1:] {
		if !v.IsNumeric() || !best.IsNumeric() {
			return fx.Undefined, typeErrorf("min: expected numeric arguments")
		}
		if v.Float64() < best.Float64() {
			best = v
		}
	}
	return best, nil
}

// floor_div(a, b) -> integer division of a by b, rounding toward negative
// infinity (the rounding mode the damage formula's stage multipliers use,
// rather than Go's truncating /).
func biFloorDiv(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	a, err := argInt(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	d, err := argInt(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	if d == 0 {
		return fx.Undefined, typeErrorf("floor_div: division by zero")
	}
	q := a / d
	if (a%d != 0) && ((a < 0) != (d < 0)) {
		q--
	}
	return fx.Int(q), nil
}
