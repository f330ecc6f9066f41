package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Detrend returns a copy of data with its mean removed.
func Detrend(data []float64) []float64 {
	out := make([]float64, len(data))
	if len(data) == 0 {
		return out
	}
	mean := stat.Mean(data, nil)
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// PowerSpectrum returns the magnitude of the first n/2+1 Fourier
// coefficients of data. Bin k corresponds to k/n cycles per sample.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	fft := fourier.NewFFT(len(data))
	coeffs := fft.Coefficients(nil, data)

	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency finds the strongest non-constant component of data,
// sampled every sampleEvery ticks. It returns the bin index and the
// frequency in cycles per tick; bin is 0 when there is no oscillation.
func DominantFrequency(data []float64, sampleEvery int) (bin int, freq float64) {
	if len(data) < 4 || sampleEvery <= 0 {
		return 0, 0
	}
	ps := PowerSpectrum(Detrend(data))
	best := 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > best {
			best, bin = ps[k], k
		}
	}
	if bin == 0 {
		return 0, 0
	}
	return bin, float64(bin) / (float64(len(data)) * float64(sampleEvery))
}
