// Package analysis extracts frequency information from saved drop
// trajectories. The x-position series of a ball rattling between pegs
// or walls carries a clear dominant oscillation; its frequency and
// power separate healthy bouncing from pathological jitter.
package analysis

import (
	"math"
	"math/cmplx"
)

// FFT computes the discrete Fourier transform of a power-of-2 length
// series with the recursive Cooley-Tukey split.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		out := make([]complex128, n)
		for i, v := range data {
			out[i] = complex(v, 0)
		}
		return out
	}
	if n%2 != 0 {
		panic("analysis: fft length must be a power of 2")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	fe := FFT(even)
	fo := FFT(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		out[k] = fe[k] + w*fo[k]
		out[k+n/2] = fe[k] - w*fo[k]
	}
	return out
}

// PowerSpectrum returns the magnitude of the first half of the FFT of
// data, zero-padded to the next power of 2 and Hann-windowed to reduce
// leakage from the abrupt landing cutoff. The mean is removed first so
// the DC bin does not swamp the bounce frequencies.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	n := 1
	for n < len(data) {
		n *= 2
	}

	padded := make([]float64, n)
	for i, v := range data {
		// Hann window over the original sample count
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(len(data))))
		padded[i] = (v - mean) * w
	}

	fft := FFT(padded)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantFrequency finds the strongest bin of the spectrum of a series
// sampled at tickRate ticks per second and returns its frequency in Hz
// together with the normalized spectrum. Returns 0 when the series is
// too short to resolve anything.
func DominantFrequency(data []float64, tickRate float64) (float64, []float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, ps
	}

	maxIdx := 1 // skip the residual DC bin
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[maxIdx] {
			maxIdx = i
		}
	}

	// bin width = sample rate / fft size; ps covers half the fft
	freq := float64(maxIdx) * tickRate / float64(2*len(ps))
	return freq, ps
}
