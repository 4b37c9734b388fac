package lang

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	KindUnset  Kind = iota // unset
	KindNumber             // number
	KindString             // string
	KindArray              // array
)

var kindNames = [...]string{
	KindUnset:  "unset",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is the result of evaluating a Molang expression.
//
// The zero Value is unset. Values are immutable: array values share their
// backing storage, and writes through an index assignment copy the array
// before modifying it.
type Value struct {
	kind Kind
	num  float64
	str  string
	arr  []Value
}

// Unset returns the unset value.
func Unset() Value { return Value{} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool returns 1 for true and 0 for false.
func Bool(b bool) Value {
	if b {
		return Number(1)
	}

	return Number(0)
}

// Array returns an array value holding elems. The slice is retained and must
// not be modified by the caller afterwards.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{kind: KindArray, arr: elems}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsUnset reports whether v is the unset value.
func (v Value) IsUnset() bool { return v.kind == KindUnset }

// Float returns the numeric interpretation of v. Unset is 0 and strings are
// parsed as decimal numbers. The second result is false when v has no
// numeric interpretation.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindUnset:
		return 0, true
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

// Str returns the string held by v, or the empty string for other kinds.
func (v Value) Str() string { return v.str }

// Elements returns the elements of an array value. The result must not be
// modified.
func (v Value) Elements() []Value { return v.arr }

// Len returns the number of elements of an array value, or 0.
func (v Value) Len() int { return len(v.arr) }

// At returns element i of an array value. Negative indices clamp to 0 and
// indices past the end yield unset.
func (v Value) At(i int) Value {
	i = max(i, 0)
	if v.kind != KindArray || i >= len(v.arr) {
		return Value{}
	}

	return v.arr[i]
}

// Truthy reports whether v is considered true in a condition.
// Unset and numeric zero are false. Strings are always true; arrays are true
// when non-empty.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNumber:
		return v.num != 0
	case KindString:
		return true
	case KindArray:
		return len(v.arr) > 0
	default:
		return false
	}
}

// Equal reports whether v and o are equal under Molang's == operator.
// Comparison never fails: strings compare as strings, arrays element-wise,
// and anything else numerically when both sides have a numeric
// interpretation.
func (v Value) Equal(o Value) bool {
	switch {
	case v.kind == KindString && o.kind == KindString:
		return v.str == o.str

	case v.kind == KindArray || o.kind == KindArray:
		if v.kind != o.kind || len(v.arr) != len(o.arr) {
			return false
		}

		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}

		return true
	}

	a, aok := v.Float()
	b, bok := o.Float()

	return aok && bok && a == b
}

// String formats v for display. Numbers use the shortest representation
// that round-trips, strings are returned verbatim, and arrays are written
// as [a, b, ...].
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindString:
		return v.str
	case KindArray:
		var sb strings.Builder

		sb.WriteByte('[')

		for i, e := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}

			if e.kind == KindString {
				sb.WriteString(strconv.Quote(e.str))
			} else {
				sb.WriteString(e.String())
			}
		}

		sb.WriteByte(']')

		return sb.String()
	default:
		return "unset"
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	return strconv.FormatFloat(f, 'g', -1, 64)
}

// with returns a copy of array v with element i set to x. The index is
// clamped to [0, len], so writing one past the end appends.
func (v Value) with(i int, x Value) Value {
	var elems []Value
	if v.kind == KindArray {
		elems = v.arr
	}

	i = min(max(i, 0), len(elems))

	out := make([]Value, max(len(elems), i+1))
	copy(out, elems)
	out[i] = x

	return Array(out...)
}
