package fx

import "testing"

func TestApplyArithIntDivisionTruncates(t *testing.T) {
	v, err := applyArith(OpDiv, Int(7), Int(2))
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != KindInt || v.AsInt() != 3 {
		t.Fatalf("expected integer 3, got %s", v)
	}
}

func TestApplyArithMixedPromotesToFraction(t *testing.T) {
	v, err := applyArith(OpAdd, Int(1), Frac(1, 2))
	if err != nil {
		t.Fatal(err)
	}
	n, d := v.AsFraction()
	if n != 3 || d != 2 {
		t.Fatalf("expected 3/2, got %d/%d", n, d)
	}
}

func TestApplyArithOverflow(t *testing.T) {
	_, err := applyArith(OpMul, Int(1<<62), Int(4))
	if err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestApplyArithDivisionByZero(t *testing.T) {
	_, err := applyArith(OpDiv, Int(1), Int(0))
	if err == nil {
		t.Fatal("expected division-by-zero error")
	}
}

func TestApplyCompareFractionVsFraction(t *testing.T) {
	v, err := applyCompare(OpLt, Frac(1, 3), Frac(1, 2))
	if err != nil {
		t.Fatal(err)
	}
	if !v.AsBool() {
		t.Fatal("expected 1/3 < 1/2")
	}
}

func TestApplyHas(t *testing.T) {
	list := List(Int(1), Str("poison"), Bool(true))
	v, err := applyHas(list, Str("poison"))
	if err != nil {
		t.Fatal(err)
	}
	if !v.AsBool() {
		t.Fatal("expected list to have 'poison'")
	}
	v2, _ := applyHas(list, Str("missing"))
	if v2.AsBool() {
		t.Fatal("expected list to not have 'missing'")
	}
}

func TestApplyHasAny(t *testing.T) {
	a := List(Str("fire"), Str("water"))
	b := List(Str("grass"), Str("fire"))
	v, err := applyHasAny(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !v.AsBool() {
		t.Fatal("expected shared element 'fire'")
	}
}

func TestNegateTable(t *testing.T) {
	if !negate(Bool(false)).AsBool() {
		t.Fatal("!false should be true")
	}
	if negate(Bool(true)).AsBool() {
		t.Fatal("!true should be false")
	}
	if !negate(Undefined).AsBool() {
		t.Fatal("!undefined should be true")
	}
}
