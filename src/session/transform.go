package session

import "math"

// RenderTrace computes the rendered (x, y) arrays for a trace from its raw
// samples. The transform step runs strictly before factor/offset scaling;
// the order is a correctness requirement, not a style choice. The function is
// pure: writing the result into the renderer is the caller's job.
func RenderTrace(t *Trace) (x, y []float64) {
	ry := t.RawY
	switch t.Transform {
	case TransformMovingAverage:
		ry = movingAverage(ry, t.WindowSize)
	case TransformCumulativeSum:
		ry = cumulativeSum(ry)
	}

	x = make([]float64, len(t.RawX))
	for i, v := range t.RawX {
		x[i] = v*t.XFactor + t.XOffset
	}
	y = make([]float64, len(ry))
	for i, v := range ry {
		y[i] = v*t.YFactor + t.YOffset
	}
	return x, y
}

// movingAverage is a centered rolling mean of the given width. Edge positions
// average over the clamped partial window; positions whose window holds no
// finite value are back-filled from the next defined result.
func movingAverage(vals []float64, window int) []float64 {
	n := len(vals)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if window > n {
		window = n
	}
	// Centered window: for even widths the extra sample sits on the right.
	left := (window - 1) / 2
	right := window / 2
	for i := 0; i < n; i++ {
		lo := i - left
		if lo < 0 {
			lo = 0
		}
		hi := i + right
		if hi > n-1 {
			hi = n - 1
		}
		sum, cnt := 0.0, 0
		for j := lo; j <= hi; j++ {
			if math.IsNaN(vals[j]) {
				continue
			}
			sum += vals[j]
			cnt++
		}
		if cnt == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(cnt)
		}
	}
	backfill(out)
	return out
}

// backfill replaces each NaN with the next non-NaN value to its right.
func backfill(vals []float64) {
	next := math.NaN()
	for i := len(vals) - 1; i >= 0; i-- {
		if math.IsNaN(vals[i]) {
			vals[i] = next
		} else {
			next = vals[i]
		}
	}
}

func cumulativeSum(vals []float64) []float64 {
	out := make([]float64, len(vals))
	sum := 0.0
	for i, v := range vals {
		sum += v
		out[i] = sum
	}
	return out
}
