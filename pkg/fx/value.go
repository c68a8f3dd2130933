package fx

import (
	"fmt"
	"math"
)

// Kind is the runtime type tag of a Value. FX is dynamically typed: every
// operator and built-in performs an explicit Kind check at evaluation time
// rather than relying on any static analysis.
type Kind int

const (
	KindUndefined Kind = iota
	KindBool
	KindInt
	KindFraction
	KindString
	KindList
	KindObject
	KindHandle
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFraction:
		return "fraction"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindHandle:
		return "handle"
	default:
		return "unknown"
	}
}

// HandleKind discriminates the opaque entity-reference Values: MonRef,
// SideRef, FieldRef, EffectRef, ActiveMoveRef, PlayerRef. The Value itself
// carries only a stable numeric id; what the id addresses is resolved
// against the owning battle.Battle, never stored as a pointer inside the
// Value (see spec.md §9 on reentrant borrowing of a mutable graph).
type HandleKind int

const (
	HandleMon HandleKind = iota
	HandleSide
	HandleField
	HandleEffect
	HandleActiveMove
	HandlePlayer
)

func (h HandleKind) String() string {
	switch h {
	case HandleMon:
		return "mon"
	case HandleSide:
		return "side"
	case HandleField:
		return "field"
	case HandleEffect:
		return "effect"
	case HandleActiveMove:
		return "active_move"
	case HandlePlayer:
		return "player"
	default:
		return "handle"
	}
}

// Handle is an opaque, stable reference to a battle entity. It is a pure
// value — comparable by identity ((Kind, ID) equality) — never a pointer.
type Handle struct {
	Kind HandleKind
	ID   int
}

// Value is the tagged sum that every FX expression evaluates to: Boolean,
// Integer, Fraction, String, List, Object, Undefined (sentinel only, never
// stored in a typed binding), or an opaque Handle to a battle entity.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	num    int64
	den    int64
	s      string
	list   []Value
	object *Object
	handle Handle
}

// Object is an insertion-order-preserving string -> Value map, the FX
// runtime representation of a JSON object literal / built-in return record.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set inserts or overwrites key, preserving first-insertion order.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value bound to key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len reports the number of entries.
func (o *Object) Len() int { return len(o.keys) }

// Clone returns a new Object with the same keys in the same order. The copy
// is shallow: nested List and Object values are shared with o. A nil o
// clones to an empty Object.
func (o *Object) Clone() *Object {
	if o == nil {
		return NewObject()
	}
	clone := NewObject()
	for _, k := range o.keys {
		clone.Set(k, o.values[k])
	}
	return clone
}

// Undefined is the sentinel value returned by member access on an already-
// Undefined receiver, and by lookups of unbound names that the evaluator's
// call sites choose to tolerate (e.g. $effect_state field probing).
var Undefined = Value{kind: KindUndefined}

// Bool constructs a Boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int constructs an Integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Str constructs a String Value.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// List constructs a List Value from the given elements (copied).
func List(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Obj wraps an *Object as an Object Value.
func Obj(o *Object) Value { return Value{kind: KindObject, object: o} }

// HandleVal constructs a Handle Value.
func HandleVal(kind HandleKind, id int) Value {
	return Value{kind: KindHandle, handle: Handle{Kind: kind, ID: id}}
}

// Frac constructs a reduced Fraction Value. A zero denominator is a
// programmer error in the interpreter itself (callers must route user-level
// zero denominators through arithmeticError), so Frac panics on den == 0.
func Frac(num, den int64) Value {
	if den == 0 {
		panic("fx: Frac called with zero denominator")
	}
	num, den = reduceFraction(num, den)
	if den == 1 {
		return Int(num)
	}
	return Value{kind: KindFraction, num: num, den: den}
}

func reduceFraction(num, den int64) (int64, int64) {
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(absInt64(num), den)
	if g == 0 {
		return 0, 1
	}
	return num / g, den / g
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Kind returns the Value's runtime type tag.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether v is the Undefined sentinel.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// AsBool returns the underlying bool; callers must check Kind() == KindBool.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the underlying int64; callers must check Kind() == KindInt.
func (v Value) AsInt() int64 { return v.i }

// AsFraction returns the numerator and denominator; valid for both KindInt
// (denominator 1) and KindFraction.
func (v Value) AsFraction() (int64, int64) {
	if v.kind == KindInt {
		return v.i, 1
	}
	return v.num, v.den
}

// AsString returns the underlying string; callers must check Kind() ==
// KindString.
func (v Value) AsString() string { return v.s }

// AsList returns the underlying element slice; callers must check Kind() ==
// KindList. The returned slice aliases the Value's storage.
func (v Value) AsList() []Value { return v.list }

// AsObject returns the underlying *Object; callers must check Kind() ==
// KindObject.
func (v Value) AsObject() *Object { return v.object }

// AsHandle returns the underlying Handle; callers must check Kind() ==
// KindHandle.
func (v Value) AsHandle() Handle { return v.handle }

// IsNumeric reports whether v is an Integer or Fraction, the only kinds
// accepted by arithmetic and ordered-comparison operators.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFraction }

// Float64 converts a numeric Value to float64, for built-ins (damage rolls,
// accuracy checks) that need a floating computation at the boundary. FX
// itself never exposes a float kind.
func (v Value) Float64() float64 {
	num, den := v.AsFraction()
	return float64(num) / float64(den)
}

// String renders v for logging and string-concatenation built-ins. Lists
// and objects render as a compact bracket/brace form; this is a debug
// rendering, not a stable wire format.
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFraction:
		return fmt.Sprintf("%d/%d", v.num, v.den)
	case KindString:
		return v.s
	case KindList:
		s := "["
		for i, e := range v.list {
			if i > 0 {
				s += " "
			}
			s += e.String()
		}
		return s + "]"
	case KindObject:
		s := "{"
		for i, k := range v.object.Keys() {
			if i > 0 {
				s += " "
			}
			val, _ := v.object.Get(k)
			s += k + ":" + val.String()
		}
		return s + "}"
	case KindHandle:
		return fmt.Sprintf("<%s #%d>", v.handle.Kind, v.handle.ID)
	default:
		return "?"
	}
}

// checkedAdd returns a+b and whether the addition overflowed int64.
func checkedAdd(a, b int64) (int64, bool) {
	r := a + b
	if (b > 0 && r < a) || (b < 0 && r > a) {
		return 0, true
	}
	return r, false
}

// checkedSub returns a-b and whether the subtraction overflowed int64.
func checkedSub(a, b int64) (int64, bool) {
	r := a - b
	if (b < 0 && r < a) || (b > 0 && r > a) {
		return 0, true
	}
	return r, false
}

// checkedMul returns a*b and whether the multiplication overflowed int64.
func checkedMul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	r := a * b
	if r/b != a {
		return 0, true
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return 0, true
	}
	return r, false
}
