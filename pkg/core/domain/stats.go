package domain

import (
	"math"
	"sort"
)

// Mean 算术平均，空切片或求和溢出时返回 false
func Mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(len(xs))
	return m, Finite(m)
}

// StdDev 样本标准差 (n-1)，少于 2 个点返回 false
func StdDev(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	m, ok := Mean(xs)
	if !ok {
		return 0, false
	}
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(xs)-1))
	return sd, Finite(sd)
}

// Quantile 线性插值分位数 (q ∈ [0,1])
func Quantile(xs []float64, q float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	q = Clamp(q, 0, 1)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], true
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, true
}

// Clamp 截断到 [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Finite 非 NaN/Inf
func Finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
