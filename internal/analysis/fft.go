package analysis

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/yawrate/internal/loop"
)

// FFT is a radix-2 transform. len(data) must be a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n&(n-1) != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// PowerSpectrum zero-pads data to the next power of two and returns the
// magnitudes of the lower half of the spectrum.
func PowerSpectrum(data []float64) []float64 {
	padded := make([]float64, nextPow2(len(data)))
	copy(padded, data)

	fft := FFT(padded)
	ps := make([]float64, len(fft)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}

	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// bin of the rate error, given the tick rate. The mean is removed first.
func DominantFrequency(ticks []loop.Tick, rateHz float64) float64 {
	if len(ticks) < 4 || rateHz <= 0 {
		return 0
	}

	series := make([]float64, len(ticks))
	mean := 0.0
	for i, t := range ticks {
		series[i] = t.RateError()
		mean += series[i]
	}
	mean /= float64(len(series))
	for i := range series {
		series[i] -= mean
	}

	ps := PowerSpectrum(series)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}

	n := 2 * len(ps)
	return float64(best) * rateHz / float64(n)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
