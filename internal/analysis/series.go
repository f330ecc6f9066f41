package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
}

func Describe(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(data, nil)
	if len(data) == 1 {
		std = 0
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	return Summary{
		N:      len(data),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(data),
		Max:    floats.Max(data),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
}

// SettleTick returns the first index from which every value stays within
// tol of the final value. A series whose only such value is the final sample
// has not settled and yields -1, as does an empty series. A single-sample
// series is settled at 0.
func SettleTick(data []float64, tol float64) int {
	if len(data) == 0 {
		return -1
	}
	final := data[len(data)-1]
	settled := len(data) - 1
	for i := len(data) - 1; i >= 0; i-- {
		if math.Abs(data[i]-final) > tol {
			break
		}
		settled = i
	}
	if settled == len(data)-1 && len(data) > 1 {
		return -1
	}
	return settled
}

// HeightProfile counts particles per horizontal band of the viewport. Band 0
// is the top. Positions outside [0, height] land in the nearest band.
func HeightProfile(ys []float64, height float64, bins int) []float64 {
	if bins <= 0 || height <= 0 {
		return nil
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, 0, height)
	dividers[0] = math.Inf(-1)
	dividers[bins] = math.Inf(1)

	sorted := append([]float64(nil), ys...)
	sort.Float64s(sorted)
	return stat.Histogram(nil, dividers, sorted, nil)
}
