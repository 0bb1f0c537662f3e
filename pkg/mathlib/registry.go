// Package mathlib implements MQL's built-in math library, the query root
// always bound to both "math" and "m" (spec.md §4.6). It is a static
// ClassInfo: its methods ignore the receiver entirely.
package mathlib

import (
	"math"
	mrand "math/rand"
	"time"

	"github.com/hollowcube/mql/pkg/functions"
	"github.com/hollowcube/mql/pkg/types"
)

// New builds the math ClassInfo with a fresh, time-seeded random source.
// Per spec.md §9's Open Question on math.random, determinism is not
// required by default: each compiler instance gets its own seed unless
// the host calls NewSeeded.
func New() *functions.ClassInfo {
	return build(mrand.New(mrand.NewSource(time.Now().UnixNano())))
}

// NewSeeded builds the math ClassInfo with a deterministic random source,
// for hosts that need reproducible random_int/random sequences (golden
// tests, replay).
func NewSeeded(seed int64) *functions.ClassInfo {
	return build(mrand.New(mrand.NewSource(seed)))
}

func build(rng *mrand.Rand) *functions.ClassInfo {
	n := func(arity int) []functions.ParamKind {
		kinds := make([]functions.ParamKind, arity)
		for i := range kinds {
			kinds[i] = functions.ParamNumber
		}
		return kinds
	}

	fn1 := func(name string, f func(float64) float64) functions.Method {
		return functions.Method{
			Name:       name,
			ParamKinds: n(1),
			Invoke: func(_ interface{}, args []float64) (types.Value, error) {
				return types.Number(f(args[0])), nil
			},
		}
	}
	fn2 := func(name string, f func(float64, float64) float64) functions.Method {
		return functions.Method{
			Name:       name,
			ParamKinds: n(2),
			Invoke: func(_ interface{}, args []float64) (types.Value, error) {
				return types.Number(f(args[0], args[1])), nil
			},
		}
	}
	fn3 := func(name string, f func(float64, float64, float64) float64) functions.Method {
		return functions.Method{
			Name:       name,
			ParamKinds: n(3),
			Invoke: func(_ interface{}, args []float64) (types.Value, error) {
				return types.Number(f(args[0], args[1], args[2])), nil
			},
		}
	}
	fn0 := func(name string, f func() float64) functions.Method {
		return functions.Method{
			Name:       name,
			ParamKinds: n(0),
			Invoke: func(_ interface{}, _ []float64) (types.Value, error) {
				return types.Number(f()), nil
			},
		}
	}

	classInfo, err := functions.NewClassInfo(
		fn1("abs", math.Abs),
		fn1("sign", signum),
		fn1("floor", math.Floor),
		fn1("ceil", math.Ceil),
		fn1("round", math.Round),
		fn1("trunc", math.Trunc),
		fn1("sqrt", math.Sqrt),
		fn1("exp", math.Exp),
		fn1("ln", math.Log),
		fn2("pow", math.Pow),
		fn1("sin", func(deg float64) float64 { return math.Sin(deg2rad(deg)) }),
		fn1("cos", func(deg float64) float64 { return math.Cos(deg2rad(deg)) }),
		fn1("tan", func(deg float64) float64 { return math.Tan(deg2rad(deg)) }),
		fn1("asin", func(x float64) float64 { return rad2deg(math.Asin(x)) }),
		fn1("acos", func(x float64) float64 { return rad2deg(math.Acos(x)) }),
		fn1("atan", func(x float64) float64 { return rad2deg(math.Atan(x)) }),
		fn2("atan2", func(y, x float64) float64 { return rad2deg(math.Atan2(y, x)) }),
		fn2("min", math.Min),
		fn2("max", math.Max),
		fn2("mod", math.Mod),
		fn3("clamp", clamp),
		fn3("lerp", lerp),
		fn3("lerp_rotate", lerpRotate),
		fn1("hermite_blend", hermiteBlend),
		fn0("random", rng.Float64),
		fn2("random_int", func(lo, hi float64) float64 { return randomInt(rng, lo, hi) }),
		fn0("pi", func() float64 { return math.Pi }),
	)
	if err != nil {
		// Every method above declares only ParamNumber parameters with a
		// distinct (name, arity) pair; registration cannot fail.
		panic(err)
	}
	return classInfo
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// lerpRotate interpolates a to b along the shorter arc on a 360-degree
// circle, per spec.md §4.6.
func lerpRotate(a, b, t float64) float64 {
	diff := math.Mod(b-a, 360)
	if diff > 180 {
		diff -= 360
	} else if diff < -180 {
		diff += 360
	}
	return a + diff*t
}

func hermiteBlend(t float64) float64 {
	return 3*t*t - 2*t*t*t
}

func randomInt(rng *mrand.Rand, lo, hi float64) float64 {
	span := hi - lo + 1
	if span <= 0 {
		return lo
	}
	return math.Floor(lo + rng.Float64()*span)
}

func deg2rad(deg float64) float64 { return deg * math.Pi / 180 }
func rad2deg(rad float64) float64 { return rad * 180 / math.Pi }
