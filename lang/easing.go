package lang

import "math"

// easings are registered in the math library as name(start, end, t), which
// interpolates from start to end along the curve with t clamped to [0, 1].
var easings = map[string]func(float64) float64{
	"ease_in_quad":     func(x float64) float64 { return x * x },
	"ease_out_quad":    func(x float64) float64 { return 1 - (1-x)*(1-x) },
	"ease_in_out_quad": inOut(func(x float64) float64 { return 2 * x * x }, 2),
	"ease_in_cubic":    func(x float64) float64 { return x * x * x },
	"ease_out_cubic":   func(x float64) float64 { return 1 - math.Pow(1-x, 3) },
	"ease_in_out_cubic": inOut(func(x float64) float64 {
		return 4 * x * x * x
	}, 3),
	"ease_in_quart":  func(x float64) float64 { return x * x * x * x },
	"ease_out_quart": func(x float64) float64 { return 1 - math.Pow(1-x, 4) },
	"ease_in_out_quart": inOut(func(x float64) float64 {
		return 8 * x * x * x * x
	}, 4),
	"ease_in_quint":  func(x float64) float64 { return x * x * x * x * x },
	"ease_out_quint": func(x float64) float64 { return 1 - math.Pow(1-x, 5) },
	"ease_in_out_quint": inOut(func(x float64) float64 {
		return 16 * x * x * x * x * x
	}, 5),
	"ease_in_sine":     func(x float64) float64 { return 1 - math.Cos(x*math.Pi/2) },
	"ease_out_sine":    func(x float64) float64 { return math.Sin(x * math.Pi / 2) },
	"ease_in_out_sine": func(x float64) float64 { return -(math.Cos(math.Pi*x) - 1) / 2 },
	"ease_in_expo": func(x float64) float64 {
		if x == 0 {
			return 0
		}

		return math.Pow(2, 10*x-10)
	},
	"ease_out_expo": func(x float64) float64 {
		if x == 1 {
			return 1
		}

		return 1 - math.Pow(2, -10*x)
	},
	"ease_in_out_expo": func(x float64) float64 {
		switch {
		case x == 0, x == 1:
			return x
		case x < 0.5:
			return math.Pow(2, 20*x-10) / 2
		default:
			return (2 - math.Pow(2, -20*x+10)) / 2
		}
	},
	"ease_in_circ":  func(x float64) float64 { return 1 - math.Sqrt(1-x*x) },
	"ease_out_circ": func(x float64) float64 { return math.Sqrt(1 - (x-1)*(x-1)) },
	"ease_in_out_circ": func(x float64) float64 {
		if x < 0.5 {
			return (1 - math.Sqrt(1-4*x*x)) / 2
		}

		return (math.Sqrt(1-math.Pow(-2*x+2, 2)) + 1) / 2
	},
	"ease_in_back": func(x float64) float64 {
		return backC3*x*x*x - backC1*x*x
	},
	"ease_out_back": func(x float64) float64 {
		return 1 + backC3*math.Pow(x-1, 3) + backC1*math.Pow(x-1, 2)
	},
	"ease_in_out_back": func(x float64) float64 {
		if x < 0.5 {
			return math.Pow(2*x, 2) * ((backC2+1)*2*x - backC2) / 2
		}

		return (math.Pow(2*x-2, 2)*((backC2+1)*(x*2-2)+backC2) + 2) / 2
	},
	"ease_in_elastic": func(x float64) float64 {
		if x == 0 || x == 1 {
			return x
		}

		return -math.Pow(2, 10*x-10) * math.Sin((x*10-10.75)*elasticC4)
	},
	"ease_out_elastic": func(x float64) float64 {
		if x == 0 || x == 1 {
			return x
		}

		return math.Pow(2, -10*x)*math.Sin((x*10-0.75)*elasticC4) + 1
	},
	"ease_in_out_elastic": func(x float64) float64 {
		switch {
		case x == 0, x == 1:
			return x
		case x < 0.5:
			return -(math.Pow(2, 20*x-10) * math.Sin((20*x-11.125)*elasticC5)) / 2
		default:
			return math.Pow(2, -20*x+10)*math.Sin((20*x-11.125)*elasticC5)/2 + 1
		}
	},
	"ease_in_bounce":  func(x float64) float64 { return 1 - bounceOut(1-x) },
	"ease_out_bounce": bounceOut,
	"ease_in_out_bounce": func(x float64) float64 {
		if x < 0.5 {
			return (1 - bounceOut(1-2*x)) / 2
		}

		return (1 + bounceOut(2*x-1)) / 2
	},
}

const (
	backC1    = 1.70158
	backC2    = backC1 * 1.525
	backC3    = backC1 + 1
	elasticC4 = 2 * math.Pi / 3
	elasticC5 = 2 * math.Pi / 4.5
)

// inOut builds the symmetric in-out variant of a polynomial ease of the
// given degree from its in-half.
func inOut(in func(float64) float64, degree float64) func(float64) float64 {
	return func(x float64) float64 {
		if x < 0.5 {
			return in(x)
		}

		return 1 - math.Pow(-2*x+2, degree)/2
	}
}

func bounceOut(x float64) float64 {
	const (
		n1 = 7.5625
		d1 = 2.75
	)

	switch {
	case x < 1/d1:
		return n1 * x * x
	case x < 2/d1:
		x -= 1.5 / d1

		return n1*x*x + 0.75
	case x < 2.5/d1:
		x -= 2.25 / d1

		return n1*x*x + 0.9375
	default:
		x -= 2.625 / d1

		return n1*x*x + 0.984375
	}
}
