package filter

import (
	"errors"
	"math"
	"testing"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

func TestLowPassIsSymmetricWithUnityDCGain(t *testing.T) {
	h, err := LowPass(1000, 44100, 101)
	if err != nil {
		t.Fatalf("low-pass: %v", err)
	}
	if len(h) != 101 {
		t.Fatalf("len = %d, want 101", len(h))
	}
	var sum float64
	for i, v := range h {
		sum += v
		if math.Abs(v-h[len(h)-1-i]) > 1e-12 {
			t.Fatalf("tap %d = %v, mirror = %v", i, v, h[len(h)-1-i])
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("DC gain = %v, want 1", sum)
	}
}

func TestSpectralInvertIsInvolution(t *testing.T) {
	h, err := LowPass(2500, 48000, 63)
	if err != nil {
		t.Fatalf("low-pass: %v", err)
	}
	twice := SpectralInvert(SpectralInvert(h))
	if len(twice) != len(h) {
		t.Fatalf("len = %d, want %d", len(twice), len(h))
	}
	for i := range h {
		if math.Abs(twice[i]-h[i]) > 1e-12 {
			t.Fatalf("tap %d: got %v, want %v", i, twice[i], h[i])
		}
	}
}

func TestHighPassRejectsDC(t *testing.T) {
	h, err := HighPass(1000, 44100, 101)
	if err != nil {
		t.Fatalf("high-pass: %v", err)
	}
	var sum float64
	for _, v := range h {
		sum += v
	}
	if math.Abs(sum) > 1e-9 {
		t.Fatalf("DC gain = %v, want 0", sum)
	}
}

func TestConvolveLengthAndCommutativity(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{0.5, -1, 4, 2}
	ab := Convolve(a, b)
	ba := Convolve(b, a)
	if len(ab) != len(a)+len(b)-1 {
		t.Fatalf("len = %d, want %d", len(ab), len(a)+len(b)-1)
	}
	want := []float64{0.5, 0, 3.5, 7, 16, 6}
	for i := range want {
		if math.Abs(ab[i]-want[i]) > 1e-12 {
			t.Fatalf("ab[%d] = %v, want %v", i, ab[i], want[i])
		}
		if math.Abs(ab[i]-ba[i]) > 1e-12 {
			t.Fatalf("convolve not commutative at %d: %v vs %v", i, ab[i], ba[i])
		}
	}
	if got := Convolve(nil, b); len(got) != 0 {
		t.Fatalf("convolve with empty input = %v, want empty", got)
	}
}

func TestApplyKeepsSignalLength(t *testing.T) {
	signal := make([]float64, 50)
	signal[10] = 1
	h := []float64{0.25, 0.5, 0.25}
	out := Apply(signal, h)
	if len(out) != len(signal) {
		t.Fatalf("len = %d, want %d", len(out), len(signal))
	}
	// Symmetric kernels stay centered on the impulse.
	if out[9] != 0.25 || out[10] != 0.5 || out[11] != 0.25 {
		t.Fatalf("impulse response misaligned: %v", out[8:13])
	}
}

func TestBandPassAndBandRejectResponse(t *testing.T) {
	const rate = 48000
	const n = 4096
	bp, err := BandPass(2000, 6000, rate, 201)
	if err != nil {
		t.Fatalf("band-pass: %v", err)
	}
	if len(bp) != 401 {
		t.Fatalf("band-pass len = %d, want 401", len(bp))
	}
	br, err := BandReject(2000, 6000, rate, 201)
	if err != nil {
		t.Fatalf("band-reject: %v", err)
	}
	if len(br) != 201 {
		t.Fatalf("band-reject len = %d, want 201", len(br))
	}
	bin := func(hz float64) int { return int(math.Round(hz / rate * n)) }
	bpMag := FrequencyResponse(bp, n)
	brMag := FrequencyResponse(br, n)
	if len(bpMag) != n/2+1 {
		t.Fatalf("response len = %d, want %d", len(bpMag), n/2+1)
	}
	if bpMag[bin(4000)] < 0.9 || bpMag[bin(200)] > 0.05 || bpMag[bin(15000)] > 0.05 {
		t.Fatalf("band-pass response: 4k=%v 200=%v 15k=%v", bpMag[bin(4000)], bpMag[bin(200)], bpMag[bin(15000)])
	}
	if brMag[bin(4000)] > 0.05 || brMag[bin(200)] < 0.9 || brMag[bin(15000)] < 0.9 {
		t.Fatalf("band-reject response: 4k=%v 200=%v 15k=%v", brMag[bin(4000)], brMag[bin(200)], brMag[bin(15000)])
	}
}

func TestCutoffIsClampedToNyquist(t *testing.T) {
	fc, err := CutoffFromFrequency(30000, 44100)
	if err != nil {
		t.Fatalf("cutoff: %v", err)
	}
	if fc != 0.5 {
		t.Fatalf("cutoff fraction = %v, want 0.5", fc)
	}
}

func TestDesignRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name string
		fn   func() error
	}{
		{"even length", func() error { _, err := LowPass(1000, 44100, 100); return err }},
		{"zero length", func() error { _, err := HighPass(1000, 44100, 0); return err }},
		{"zero cutoff", func() error { _, err := LowPass(0, 44100, 11); return err }},
		{"zero rate", func() error { _, err := LowPass(1000, 0, 11); return err }},
		{"inverted band", func() error { _, err := BandPass(5000, 1000, 44100, 11); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var pe *errs.ParamError
			if err := tc.fn(); !errors.As(err, &pe) {
				t.Fatalf("expected ParamError, got %v", err)
			}
		})
	}
}

func TestLengthForTransitionIsOdd(t *testing.T) {
	n, err := LengthForTransition(0.01)
	if err != nil {
		t.Fatalf("length: %v", err)
	}
	if n != 401 {
		t.Fatalf("length = %d, want 401", n)
	}
}

func TestBlackmanEndpoints(t *testing.T) {
	w := Blackman(9)
	if math.Abs(w[0]) > 1e-12 || math.Abs(w[8]) > 1e-12 {
		t.Fatalf("endpoints = %v, %v, want 0", w[0], w[8])
	}
	if math.Abs(w[4]-1) > 1e-12 {
		t.Fatalf("center = %v, want 1", w[4])
	}
}
