package render

import (
	"math"
	"strconv"
)

// Range is a closed axis interval.
type Range struct {
	Min, Max float64
}

// FitRange returns bounds that contain every finite value in vs, padded and rounded by
// NiceBounds. ok is false when vs has no finite value.
func FitRange(vs []float64) (r Range, ok bool) {
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		return Range{}, false
	}
	a, b := NiceBounds(lo, hi)
	return Range{Min: a, Max: b}, true
}

// NiceBounds expands [min,max] by a small margin and rounds to "nice" numbers for readability.
func NiceBounds(min, max float64) (float64, float64) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return min, max
	}
	if max <= min {
		// a single value (or a flat line) still needs a visible span
		pad := math.Abs(min) * 0.1
		if pad == 0 {
			pad = 1
		}
		min, max = min-pad, max+pad
	}
	span := max - min
	// 5% margin on both sides
	pad := span * 0.05
	a := min - pad
	b := max + pad
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// NiceTicks generates up to n tick positions spanning [min,max] using 1, 2, 2.5, 5 × 10^k steps.
func NiceTicks(min, max float64, n int) []float64 {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		count := math.Ceil(span/step) + 1
		if count < 2 {
			count = 2
		}
		if score := math.Abs(count - float64(n)); score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	start := math.Ceil(min/bestStep) * bestStep
	var out []float64
	for v := start; v <= max+bestStep*1e-9; v += bestStep {
		out = append(out, roundToStep(v, bestStep))
		if len(out) > n+2 {
			break
		}
	}
	if len(out) < 2 {
		out = []float64{min, max}
	}
	return out
}

// roundToStep trims accumulated float error from v, keeping two digits below the step's
// leading digit so tiny steps (1e-8 on an offset of 1000) stay distinct.
func roundToStep(v, step float64) float64 {
	p := math.Pow(10, 2-math.Floor(math.Log10(step)))
	if p == 0 || math.IsInf(p, 0) {
		return v
	}
	r := math.Round(v*p) / p
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return v
	}
	return r
}

// TickLabels formats ticks with FormatTick, falling back to the precision of the tick
// step when neighbouring labels would read the same.
func TickLabels(ticks []float64) []string {
	out := make([]string, len(ticks))
	for i, v := range ticks {
		out[i] = FormatTick(v)
	}
	if len(ticks) < 2 {
		return out
	}
	step := math.Abs(ticks[1] - ticks[0])
	collide := false
	for i := 1; i < len(out); i++ {
		if out[i] == out[i-1] {
			collide = true
			break
		}
	}
	if !collide || step == 0 {
		return out
	}
	digits := int(1 - math.Floor(math.Log10(step)))
	if digits < 0 {
		digits = 0
	}
	for i, v := range ticks {
		if math.Abs(v) < 1e-4 && v != 0 {
			out[i] = strconv.FormatFloat(v, 'e', -1, 64)
			continue
		}
		out[i] = strconv.FormatFloat(v, 'f', digits, 64)
	}
	return out
}

// FormatTick gives a compact label whose precision shrinks as magnitude grows.
func FormatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 1e6:
		return strconv.FormatFloat(v, 'g', 4, 64)
	case av >= 100:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case av >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	case av >= 1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case av >= 0.01:
		return strconv.FormatFloat(v, 'f', 3, 64)
	default:
		return strconv.FormatFloat(v, 'g', 3, 64)
	}
}
