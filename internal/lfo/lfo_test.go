package lfo

import (
	"errors"
	"math"
	"testing"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

func TestLFOTriangleBasicShape(t *testing.T) {
	// 100 samples per second = 100 samples per cycle
	l := New(1.0, 1.0, WaveTriangle, 100)
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = l.Sample()
	}
	if math.Abs(samples[0]-(-1.0)) > 0.05 {
		t.Errorf("triangle at phase 0: got %f, want -1.0", samples[0])
	}
	if math.Abs(samples[25]) > 0.05 {
		t.Errorf("triangle at phase 0.25: got %f, want ~0", samples[25])
	}
	if math.Abs(samples[50]-1.0) > 0.05 {
		t.Errorf("triangle at phase 0.5: got %f, want 1.0", samples[50])
	}
}

func TestLFOSquareShape(t *testing.T) {
	l := New(2.0, 1.0, WaveSquare, 100)
	if v := l.Sample(); math.Abs(v-2.0) > 0.01 {
		t.Errorf("square first half: got %f, want 2.0", v)
	}
	for i := 1; i < 50; i++ {
		l.Sample()
	}
	if v := l.Sample(); math.Abs(v-(-2.0)) > 0.01 {
		t.Errorf("square second half: got %f, want -2.0", v)
	}
}

func TestLFOSineQuarterPeriod(t *testing.T) {
	l := New(0.5, 1.0, WaveSine, 100)
	for i := 0; i < 25; i++ {
		l.Sample()
	}
	if v := l.Sample(); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("sine at phase 0.25: got %f, want 0.5", v)
	}
}

func TestLFOInactiveReturnsZero(t *testing.T) {
	cases := []*LFO{
		New(0, 5.0, WaveTriangle, 44100),
		New(1.0, 0, WaveTriangle, 44100),
		New(1.0, 5.0, WaveTriangle, 0),
	}
	for i, l := range cases {
		if l.Active() {
			t.Errorf("case %d: expected inactive", i)
		}
		if v := l.Sample(); v != 0 {
			t.Errorf("case %d: got %f, want 0", i, v)
		}
	}
}

func TestParseWaveform(t *testing.T) {
	tests := []struct {
		name string
		want Waveform
	}{
		{"saw", WaveSaw},
		{"Square", WaveSquare},
		{" triangle ", WaveTriangle},
		{"", WaveSine},
	}
	for _, tt := range tests {
		got, err := ParseWaveform(tt.name)
		if err != nil {
			t.Fatalf("ParseWaveform(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseWaveform(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
	var pe *errs.ParamError
	if _, err := ParseWaveform("random"); !errors.As(err, &pe) {
		t.Errorf("expected ParamError for unknown waveform, got %v", err)
	}
}
