package session

import "math"

// Direction names an axis direction for autoscale.
type Direction string

const (
	DirX Direction = "x"
	DirY Direction = "y"
)

// niceMantissas is the ordered set autoscale bounds are drawn from.
var niceMantissas = []float64{1, 1.5, 2, 2.5, 3, 4, 5, 6, 8, 10}

// AutoscaleLimits pools the factor/offset-scaled raw samples of all given
// traces along one direction and derives padded, visually nice axis bounds.
// Raw values are used deliberately: the last-rendered values already carry
// the factor and reading them back would compound it. The transform mode is
// irrelevant to bounds and ignored here. ok is false when no finite value
// exists in the pool.
func AutoscaleLimits(traces []*Trace, dir Direction) (min, max float64, ok bool) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, t := range traces {
		var data []float64
		var factor, offset float64
		if dir == DirX {
			data, factor, offset = t.RawX, t.XFactor, t.XOffset
		} else {
			data, factor, offset = t.RawY, t.YFactor, t.YOffset
		}
		for _, v := range data {
			tv := v*factor + offset
			if !isFinite(tv) {
				continue
			}
			if tv < min {
				min = tv
			}
			if tv > max {
				max = tv
			}
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}

	margin := (max - min) * 0.05
	if margin == 0 {
		if min != 0 {
			margin = math.Abs(min) * 0.1
		} else {
			margin = 1.0
		}
	}
	return roundToNice(min-margin, true), roundToNice(max+margin, false), true
}

// roundToNice snaps v to sign * m * 10^k with m drawn from niceMantissas.
// roundDown rounds towards -inf, otherwise towards +inf; for negative v that
// flips which way the magnitude moves, keeping min bounds below the data and
// max bounds above it.
func roundToNice(v float64, roundDown bool) float64 {
	if v == 0 {
		return 0
	}
	sign := 1.0
	if v < 0 {
		sign = -1.0
	}
	abs := math.Abs(v)
	order := math.Floor(math.Log10(abs))
	normalized := abs / math.Pow(10, order)

	// Shrinking the magnitude rounds a positive value down and a negative one
	// up; growing it does the opposite.
	shrink := roundDown == (sign > 0)

	var selected float64
	if shrink {
		selected = niceMantissas[0]
		for _, m := range niceMantissas {
			if m <= normalized {
				selected = m
			} else {
				break
			}
		}
	} else {
		selected = niceMantissas[len(niceMantissas)-1]
		for _, m := range niceMantissas {
			if m >= normalized {
				selected = m
				break
			}
		}
	}
	return sign * selected * math.Pow(10, order)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
