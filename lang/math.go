package lang

import (
	"log/slog"
	"maps"
	"math"
	"math/rand/v2"
)

// dieRollLimit caps the number of dice a single die_roll call may sum.
const dieRollLimit = 100

// mathLibrary is the builtin function set reachable as math.<name>.
// Trigonometric functions take and return degrees.
var mathLibrary = Functions{
	"abs":  unary(math.Abs),
	"acos": checked(1, inUnitRange("acos", func(a []float64) float64 { return degrees(math.Acos(a[0])) })),
	"asin": checked(1, inUnitRange("asin", func(a []float64) float64 { return degrees(math.Asin(a[0])) })),
	"atan": unary(func(x float64) float64 { return degrees(math.Atan(x)) }),
	"atan2": pure(2, func(a []float64) float64 {
		return degrees(math.Atan2(a[0], a[1]))
	}),
	"ceil": unary(math.Ceil),
	"clamp": pure(3, func(a []float64) float64 {
		return math.Min(math.Max(a[0], a[1]), a[2])
	}),
	"cos":              unary(func(x float64) float64 { return math.Cos(radians(x)) }),
	"die_roll":         impure(3, dieRoll(random)),
	"die_roll_integer": impure(3, dieRoll(randomInteger)),
	"exp":              unary(math.Exp),
	"floor":            unary(math.Floor),
	"hermite_blend": unary(func(t float64) float64 {
		return 3*t*t - 2*t*t*t
	}),
	"lerp": pure(3, func(a []float64) float64 {
		return lerp(a[0], a[1], a[2])
	}),
	"lerprotate": pure(3, func(a []float64) float64 {
		return a[0] + minAngle(a[1]-a[0])*a[2]
	}),
	"ln":        unary(math.Log),
	"max":       pure(Variadic, extremum(math.Max)),
	"min":       pure(Variadic, extremum(math.Min)),
	"min_angle": unary(minAngle),
	"mod": pure(2, func(a []float64) float64 {
		if a[1] == 0 {
			return 0
		}

		return math.Mod(a[0], a[1])
	}),
	"pi": pure(0, func([]float64) float64 { return math.Pi }),
	"pow": pure(2, func(a []float64) float64 {
		return math.Pow(a[0], a[1])
	}),
	"random": impure(2, func(a []float64) float64 {
		return random(a[0], a[1])
	}),
	"random_integer": impure(2, func(a []float64) float64 {
		return randomInteger(a[0], a[1])
	}),
	"round": unary(func(x float64) float64 { return math.Floor(x + 0.5) }),
	"sin":   unary(func(x float64) float64 { return math.Sin(radians(x)) }),
	"sqrt":  unary(math.Sqrt),
	"trunc": unary(math.Trunc),
}

func init() {
	for name, ease := range easings {
		mathLibrary[name] = pure(3, func(a []float64) float64 {
			return lerp(a[0], a[1], ease(math.Min(math.Max(a[2], 0), 1)))
		})
	}
}

// MathFunctions returns a copy of the builtin math library.
func MathFunctions() Functions {
	return maps.Clone(mathLibrary)
}

// IsPure reports whether the builtin math function name is pure.
func IsPure(name string) bool {
	fn, ok := mathLibrary[name]

	return ok && fn.Pure
}

func degrees(r float64) float64 { return r * 180 / math.Pi }

func radians(d float64) float64 { return d * math.Pi / 180 }

func lerp(start, end, t float64) float64 { return start + (end-start)*t }

// minAngle wraps an angle in degrees into [-180, 180).
func minAngle(d float64) float64 {
	d = math.Mod(d+180, 360)
	if d < 0 {
		d += 360
	}

	return d - 180
}

func random(low, high float64) float64 {
	if high <= low {
		return low
	}

	return low + rand.Float64()*(high-low) //nolint:gosec
}

func randomInteger(low, high float64) float64 {
	lo, hi := int(low), int(high)
	if hi < lo {
		lo, hi = hi, lo
	}

	return float64(lo + rand.IntN(hi-lo+1)) //nolint:gosec
}

func dieRoll(roll func(low, high float64) float64) func([]float64) float64 {
	return func(a []float64) float64 {
		n := int(math.Min(math.Max(a[0], 0), dieRollLimit))

		var total float64
		for range n {
			total += roll(a[1], a[2])
		}

		return total
	}
}

func extremum(pick func(a, b float64) float64) func([]float64) float64 {
	return func(a []float64) float64 {
		if len(a) == 0 {
			return 0
		}

		r := a[0]
		for _, x := range a[1:] {
			r = pick(r, x)
		}

		return r
	}
}

func inUnitRange(
	name string,
	fn func([]float64) float64,
) func([]float64) (float64, error) {
	return func(a []float64) (float64, error) {
		if a[0] < -1 || a[0] > 1 {
			return 0, ErrCall.With(
				slog.String("function", "math."+name),
				slog.String("issue", "argument must be in the range [-1, 1]"),
			)
		}

		return fn(a), nil
	}
}

func unary(fn func(float64) float64) Function {
	return pure(1, func(a []float64) float64 { return fn(a[0]) })
}

func pure(arity int, fn func([]float64) float64) Function {
	f := checked(arity, func(a []float64) (float64, error) { return fn(a), nil })
	f.Pure = true

	return f
}

func impure(arity int, fn func([]float64) float64) Function {
	f := checked(arity, func(a []float64) (float64, error) { return fn(a), nil })
	f.Pure = false

	return f
}

// checked adapts a float function to a [Function], converting each argument
// to a number. Arguments without a numeric interpretation fail with
// [ErrTypeMismatch].
func checked(arity int, fn func([]float64) (float64, error)) Function {
	return Function{
		Arity: arity,
		Pure:  true,
		Call: func(args []Value) (Value, error) {
			var buf [4]float64

			nums := buf[:0]

			for i, arg := range args {
				f, ok := arg.Float()
				if !ok {
					return Value{}, ErrTypeMismatch.With(
						slog.Int("argument", i),
						slog.String("kind", arg.Kind().String()),
					)
				}

				nums = append(nums, f)
			}

			r, err := fn(nums)
			if err != nil {
				return Value{}, err
			}

			return Number(r), nil
		},
	}
}
