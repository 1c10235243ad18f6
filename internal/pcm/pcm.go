// Package pcm converts between floating-point samples in [-1, 1] and signed
// integer PCM.
package pcm

import (
	"math"
	"unsafe"

	"github.com/viterin/vek"
	"golang.org/x/exp/constraints"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

func maxOf[T constraints.Signed]() T {
	var zero T
	bits := unsafe.Sizeof(zero) * 8
	return T(uint64(1)<<(bits-1) - 1)
}

// Quantize maps x onto the full positive range of T, rounding to the
// nearest step. Values outside [-1, 1] are clamped and NaN maps to 0.
func Quantize[T constraints.Signed](x float64) T {
	m := maxOf[T]()
	v := math.Round(clamp(x) * float64(m))
	if v >= float64(m) {
		return m
	}
	if v <= -float64(m) {
		return -m
	}
	return T(v)
}

// Unquantize is the inverse of Quantize. The most negative value of T maps
// to -1.
func Unquantize[T constraints.Signed](q T) float64 {
	return clamp(float64(q) / float64(maxOf[T]()))
}

func QuantizeAll[T constraints.Signed](xs []float64) []T {
	out := make([]T, len(xs))
	for i, x := range xs {
		out[i] = Quantize[T](x)
	}
	return out
}

func UnquantizeAll[T constraints.Signed](qs []T) []float64 {
	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = Unquantize(q)
	}
	return out
}

// QuantizeInts quantizes to bitDepth-bit signed values held in ints, the
// representation used by WAV encoding. bitDepth is 8, 16, 24 or 32.
func QuantizeInts(xs []float64, bitDepth int) ([]int, error) {
	m, err := intMax(bitDepth)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = int(math.Round(clamp(x) * m))
	}
	return out, nil
}

// UnquantizeInts is the inverse of QuantizeInts.
func UnquantizeInts(qs []int, bitDepth int) ([]float64, error) {
	m, err := intMax(bitDepth)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = clamp(float64(q) / m)
	}
	return out, nil
}

func intMax(bitDepth int) (float64, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
		return float64(int64(1)<<(bitDepth-1) - 1), nil
	}
	return 0, errs.Param("bit depth", "must be 8, 16, 24 or 32, got %d", bitDepth)
}

// Peak returns the largest absolute sample value.
func Peak(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return math.Max(vek.Max(xs), -vek.Min(xs))
}

// PeakNormalize returns a copy of xs scaled so that its largest absolute
// value is 1. All-zero input is returned unscaled.
func PeakNormalize(xs []float64) []float64 {
	peak := Peak(xs)
	if peak == 0 {
		return append([]float64(nil), xs...)
	}
	return vek.MulNumber(xs, 1/peak)
}

func clamp(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < -1:
		return -1
	case x > 1:
		return 1
	}
	return x
}
