package effects

import "github.com/cbegin/wavesynth-go/internal/errs"

// FIR streams a signal through a fixed set of filter coefficients, one
// sample at a time. Output lags input by the kernel's group delay, which is
// (len-1)/2 samples for the symmetric kernels from package filter.
type FIR struct {
	coeffs  []float64
	history []float64
	pos     int
}

func NewFIR(coeffs []float64) (*FIR, error) {
	if len(coeffs) == 0 {
		return nil, errs.Param("coefficients", "must not be empty")
	}
	c := make([]float64, len(coeffs))
	copy(c, coeffs)
	return &FIR{coeffs: c, history: make([]float64, len(c))}, nil
}

func (f *FIR) Tick(x float64) float64 {
	f.history[f.pos] = x
	var out float64
	idx := f.pos
	for _, c := range f.coeffs {
		out += c * f.history[idx]
		idx--
		if idx < 0 {
			idx = len(f.history) - 1
		}
	}
	f.pos++
	if f.pos >= len(f.history) {
		f.pos = 0
	}
	return out
}

func (f *FIR) Reset() {
	for i := range f.history {
		f.history[i] = 0
	}
	f.pos = 0
}
