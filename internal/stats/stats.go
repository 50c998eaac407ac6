package stats

import (
	"math"
)

// Collect 收集非 nil 样本（所有统计折叠跳过缺失值，绝不当 0）
func Collect(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Mean 算术均值，空切片返回 nil
func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

// PopStdDev 总体标准差，样本数 <2 返回 nil
func PopStdDev(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	m := *Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	sd := math.Sqrt(sumSq / float64(len(values)))
	return &sd
}

// Pearson 皮尔逊相关系数，要求 ≥2 对样本且两侧方差非零，否则返回 nil
func Pearson(xs, ys []float64) *float64 {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return nil
	}

	mx := *Mean(xs)
	my := *Mean(ys)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return nil
	}
	r := cov / math.Sqrt(varX*varY)
	return &r
}

// Clamp 将值限制到 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round1 四舍五入到一位小数
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
