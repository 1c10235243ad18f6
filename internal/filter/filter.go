// Package filter designs finite impulse response kernels with the
// windowed-sinc method and applies them by convolution.
package filter

import (
	"math"
	"math/cmplx"

	"github.com/maddyblue/go-dsp/fft"
	"github.com/viterin/vek"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

// CutoffFromFrequency returns cutoff as a fraction of sampleRate, clamped to
// the Nyquist limit of 0.5.
func CutoffFromFrequency(cutoff float64, sampleRate int) (float64, error) {
	if sampleRate <= 0 {
		return 0, errs.Param("sample rate", "must be positive, got %d", sampleRate)
	}
	if cutoff <= 0 || math.IsNaN(cutoff) {
		return 0, errs.Param("cutoff", "must be positive, got %v", cutoff)
	}
	return math.Min(cutoff/float64(sampleRate), 0.5), nil
}

// LengthForTransition returns the odd kernel length giving roughly the
// requested transition bandwidth, expressed as a fraction of the sample rate.
func LengthForTransition(band float64) (int, error) {
	if band <= 0 || band > 0.5 {
		return 0, errs.Param("transition band", "must be in (0, 0.5], got %v", band)
	}
	n := int(math.Ceil(4 / band))
	if n%2 == 0 {
		n++
	}
	return n, nil
}

// Blackman returns a Blackman window of n points.
func Blackman(n int) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	m := float64(n - 1)
	for i := range w {
		x := float64(i)
		w[i] = 0.42 - 0.5*math.Cos(2*math.Pi*x/m) + 0.08*math.Cos(4*math.Pi*x/m)
	}
	return w
}

// LowPass designs a low-pass kernel of the given odd length. The kernel is
// normalized to unity gain at DC.
func LowPass(cutoff float64, sampleRate, length int) ([]float64, error) {
	if err := checkLength(length); err != nil {
		return nil, err
	}
	fc, err := CutoffFromFrequency(cutoff, sampleRate)
	if err != nil {
		return nil, err
	}
	return lowPass(fc, length), nil
}

func lowPass(fc float64, length int) []float64 {
	h := make([]float64, length)
	center := (length - 1) / 2
	for i := range h {
		h[i] = sinc(2 * fc * float64(i-center))
	}
	h = vek.Mul(h, Blackman(length))
	if sum := vek.Sum(h); sum != 0 {
		vek.MulNumber_Inplace(h, 1/sum)
	}
	return h
}

// HighPass designs a high-pass kernel by spectral inversion of a low-pass
// kernel with the same cutoff.
func HighPass(cutoff float64, sampleRate, length int) ([]float64, error) {
	h, err := LowPass(cutoff, sampleRate, length)
	if err != nil {
		return nil, err
	}
	return SpectralInvert(h), nil
}

// BandPass passes frequencies between low and high. The result is the
// convolution of a low-pass at high and a high-pass at low, so its length is
// 2*length-1.
func BandPass(low, high float64, sampleRate, length int) ([]float64, error) {
	if err := checkBand(low, high); err != nil {
		return nil, err
	}
	lp, err := LowPass(high, sampleRate, length)
	if err != nil {
		return nil, err
	}
	hp, err := HighPass(low, sampleRate, length)
	if err != nil {
		return nil, err
	}
	return Convolve(lp, hp), nil
}

// BandReject stops frequencies between low and high: a low-pass at low plus
// a high-pass at high.
func BandReject(low, high float64, sampleRate, length int) ([]float64, error) {
	if err := checkBand(low, high); err != nil {
		return nil, err
	}
	lp, err := LowPass(low, sampleRate, length)
	if err != nil {
		return nil, err
	}
	hp, err := HighPass(high, sampleRate, length)
	if err != nil {
		return nil, err
	}
	return Add(lp, hp), nil
}

// SpectralInvert negates every tap and adds one to the center tap. Applying
// it twice restores the original kernel.
func SpectralInvert(h []float64) []float64 {
	out := vek.MulNumber(h, -1)
	if len(out) > 0 {
		out[len(out)/2] += 1
	}
	return out
}

// Add sums two kernels elementwise. The shorter kernel is treated as
// zero-padded.
func Add(a, b []float64) []float64 {
	if len(a) < len(b) {
		a, b = b, a
	}
	out := make([]float64, len(a))
	copy(out, a)
	vek.Add_Inplace(out[:len(b)], b)
	return out
}

// Convolve returns the full linear convolution of a and b, of length
// len(a)+len(b)-1. Either input being empty yields an empty result.
func Convolve(a, b []float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// Apply filters signal with kernel h and returns a slice as long as signal.
// The full convolution is trimmed by (len(h)-1)/2 taps on the leading edge,
// which keeps symmetric kernels phase-aligned with the input.
func Apply(signal, h []float64) []float64 {
	if len(signal) == 0 {
		return nil
	}
	if len(h) == 0 {
		return make([]float64, len(signal))
	}
	full := Convolve(signal, h)
	offset := (len(h) - 1) / 2
	out := make([]float64, len(signal))
	copy(out, full[offset:offset+len(signal)])
	return out
}

// FrequencyResponse returns the magnitude response of h at n/2+1 evenly
// spaced frequencies from DC to Nyquist. h is zero-padded to n points.
func FrequencyResponse(h []float64, n int) []float64 {
	if n < len(h) {
		n = len(h)
	}
	if n == 0 {
		return nil
	}
	padded := make([]float64, n)
	copy(padded, h)
	spectrum := fft.FFTReal(padded)
	mags := make([]float64, n/2+1)
	for i := range mags {
		mags[i] = cmplx.Abs(spectrum[i])
	}
	return mags
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

func checkLength(length int) error {
	if length < 1 || length%2 == 0 {
		return errs.Param("filter length", "must be odd and positive, got %d", length)
	}
	return nil
}

func checkBand(low, high float64) error {
	if !(low < high) {
		return errs.Param("band", "low edge %v must be below high edge %v", low, high)
	}
	return nil
}
