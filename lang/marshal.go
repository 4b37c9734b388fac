package lang

import (
	"encoding/json"
	"log/slog"
	"math"
	"reflect"
)

// Native converts v to a plain Go value: nil for unset, float64, string, or
// []any for arrays.
func (v Value) Native() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Native()
		}

		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler using [Value.Native].
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// MarshalYAML implements the go-yaml InterfaceMarshaler. Integral numbers
// are written without a fractional part.
func (v Value) MarshalYAML() (any, error) {
	return v.yamlNative(), nil
}

func (v Value) yamlNative() any {
	switch v.kind {
	case KindNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1<<53 {
			return int64(v.num)
		}

		return v.num
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.yamlNative()
		}

		return out
	default:
		return v.Native()
	}
}

// ValueOf converts a native Go value to a [Value].
//
// Supported inputs are nil, bool, all integer and floating-point kinds,
// string, Value, and slices or arrays of supported inputs. Other kinds fail
// with [ErrTypeMismatch].
func ValueOf(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case int:
		return Number(float64(x)), nil
	case []any:
		return arrayOf(len(x), func(i int) any { return x[i] })
	}

	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint())), nil

	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil

	case reflect.Bool:
		return Bool(rv.Bool()), nil

	case reflect.String:
		return String(rv.String()), nil

	case reflect.Slice, reflect.Array:
		return arrayOf(rv.Len(), func(i int) any { return rv.Index(i).Interface() })

	case reflect.Pointer:
		if rv.IsNil() {
			return Value{}, nil
		}

		return ValueOf(rv.Elem().Interface())
	}

	return Value{}, ErrTypeMismatch.With(
		slog.String("issue", "unsupported native type"),
		slog.String("type", reflect.TypeOf(x).String()),
	)
}

func arrayOf(n int, at func(int) any) (Value, error) {
	elems := make([]Value, n)

	for i := range n {
		v, err := ValueOf(at(i))
		if err != nil {
			return Value{}, err
		}

		elems[i] = v
	}

	return Array(elems...), nil
}

// ValuesOf converts every entry of m with [ValueOf].
func ValuesOf(m map[string]any) (map[string]Value, error) {
	out := make(map[string]Value, len(m))

	for k, x := range m {
		v, err := ValueOf(x)
		if err != nil {
			return nil, WrapError(err).With(slog.String("key", k))
		}

		out[k] = v
	}

	return out, nil
}

// Dump converts the tree rooted at n into nested maps suitable for JSON or
// YAML encoding. Every node map carries a "node" key naming its type and a
// "pos" key holding its line:column position.
func Dump(n Node) map[string]any {
	if n == nil || isNilNode(n) {
		return nil
	}

	m := map[string]any{"pos": n.Pos().String()}

	dumpAll := func(ns []Node) []any {
		out := make([]any, len(ns))
		for i, c := range ns {
			out[i] = Dump(c)
		}

		return out
	}

	opt := func(key string, c Node) {
		if c != nil && !isNilNode(c) {
			m[key] = Dump(c)
		}
	}

	switch n := n.(type) {
	case *NumberLiteral:
		m["node"] = "number"
		m["value"] = n.Value

	case *StringLiteral:
		m["node"] = "string"
		m["value"] = n.Value

	case *Identifier:
		m["node"] = "identifier"
		m["scope"] = n.Scope.String()
		m["name"] = n.Name

	case *BinaryOp:
		m["node"] = "binary"
		m["op"] = n.Op.String()
		m["left"] = Dump(n.Left)
		m["right"] = Dump(n.Right)

	case *UnaryOp:
		m["node"] = "unary"
		m["op"] = n.Op.String()
		m["operand"] = Dump(n.Operand)

	case *Ternary:
		m["node"] = "ternary"
		m["cond"] = Dump(n.Cond)
		m["then"] = Dump(n.Then)
		opt("else", n.Else)

	case *Assignment:
		m["node"] = "assign"
		m["target"] = Dump(n.Target)
		m["value"] = Dump(n.Value)

	case *Conditional:
		m["node"] = "if"
		m["cond"] = Dump(n.Cond)
		m["then"] = Dump(n.Then)
		opt("else", n.Else)

	case *Loop:
		m["node"] = "loop"
		m["count"] = Dump(n.Count)
		m["body"] = Dump(n.Body)

	case *ForEach:
		m["node"] = "for_each"
		m["item"] = Dump(n.Item)
		m["collection"] = Dump(n.Collection)
		m["body"] = Dump(n.Body)

	case *ArrayLiteral:
		m["node"] = "array"
		m["elements"] = dumpAll(n.Elements)

	case *Index:
		m["node"] = "index"
		m["target"] = Dump(n.Target)
		m["index"] = Dump(n.Index)

	case *Call:
		m["node"] = "call"
		m["scope"] = n.Scope.String()
		m["name"] = n.Name
		m["args"] = dumpAll(n.Args)

	case *Block:
		m["node"] = "block"
		m["statements"] = dumpAll(n.Statements)

	case *Return:
		m["node"] = "return"
		opt("value", n.Value)

	case *Break:
		m["node"] = "break"

	case *Continue:
		m["node"] = "continue"
	}

	return m
}
