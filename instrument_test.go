package wavesynth

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cbegin/wavesynth-go/internal/config"
)

func TestInstrumentAppliesEnvelopeAndGain(t *testing.T) {
	inst, err := NewInstrument(config.Instrument{Waveform: "square", Attack: 0.1, Decay: 0.1, Gain: 0.5}, 44100)
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	gen, err := inst(Note{Key: 69, Velocity: 64, Frequency: 1, SampleRate: 44100})
	if err != nil {
		t.Fatalf("voice: %v", err)
	}
	cases := []struct {
		t, want float64
	}{
		{0, 0},
		{0.05, 0.25},
		{0.1, 0.5},
		{0.15, 0.25},
		{0.3, 0},
	}
	for _, tc := range cases {
		if got := gen.Sample(tc.t); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("sample(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestInstrumentVelocityScaling(t *testing.T) {
	inst, err := NewInstrument(config.Instrument{Waveform: "square", Gain: 1, Velocity: true}, 44100)
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	loud, _ := inst(Note{Velocity: 127, Frequency: 1, SampleRate: 44100})
	soft, _ := inst(Note{Velocity: 32, Frequency: 1, SampleRate: 44100})
	if math.Abs(loud.Sample(0.1)-1) > 1e-3 {
		t.Fatalf("velocity 127 = %v, want ~1", loud.Sample(0.1))
	}
	if s := soft.Sample(0.1); s <= 0 || s >= 0.1 {
		t.Fatalf("velocity 32 = %v, want a quiet positive value", s)
	}
}

func TestKarplusInstrumentRings(t *testing.T) {
	inst, err := NewInstrument(config.Instrument{Waveform: "karplus", Gain: 1, Damping: 0.996}, 44100)
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	gen, err := inst(Note{Frequency: 441, SampleRate: 44100})
	if err != nil {
		t.Fatalf("voice: %v", err)
	}
	var energy float64
	for i := 0; i < 1000; i++ {
		v := gen.Sample(float64(i) / 44100)
		energy += v * v
	}
	if energy == 0 {
		t.Fatal("plucked string is silent")
	}
}

func TestSamplerInstrumentReplaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pluck.wav")
	data := []float64{0.5, -0.5, 0.25, -0.25, 0}
	if err := WriteWAVFile(path, data, 8000, 16); err != nil {
		t.Fatalf("write: %v", err)
	}
	inst, err := NewInstrument(config.Instrument{Waveform: "sampler", Gain: 1, Sample: path, BasePitch: 440}, 8000)
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	gen, err := inst(Note{Frequency: 440, SampleRate: 8000})
	if err != nil {
		t.Fatalf("voice: %v", err)
	}
	for i, want := range data[:4] {
		if got := gen.Sample((float64(i) + 0.5) / 8000); math.Abs(got-(want+data[i+1])/2) > 1e-3 {
			t.Fatalf("frame %d = %v, want midpoint of %v and %v", i, got, want, data[i+1])
		}
	}
	if got := gen.Sample(1); got != 0 {
		t.Fatalf("past the end = %v, want 0", got)
	}
}

func TestTremoloInstrumentModulates(t *testing.T) {
	cfg := config.Instrument{
		Waveform: "sine",
		Gain:     1,
		Tremolo:  &config.Tremolo{Depth: 1, Rate: 5, Waveform: "square"},
	}
	inst, err := NewInstrument(cfg, 1000)
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	gen, err := inst(Note{Frequency: 250, SampleRate: 1000})
	if err != nil {
		t.Fatalf("voice: %v", err)
	}
	var peak float64
	for i := 0; i < 1000; i++ {
		peak = math.Max(peak, math.Abs(gen.Sample(float64(i)/1000)))
	}
	if peak == 0 || peak > 1+1e-9 {
		t.Fatalf("tremolo peak = %v, want in (0, 1]", peak)
	}
}

func TestInstrumentRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Instrument
	}{
		{"karplus damping", config.Instrument{Waveform: "karplus", Damping: 1.5}},
		{"unknown waveform", config.Instrument{Waveform: "theremin"}},
		{"missing sample", config.Instrument{Waveform: "sampler", Sample: filepath.Join(t.TempDir(), "none.wav"), BasePitch: 440}},
		{"tremolo waveform", config.Instrument{Waveform: "sine", Tremolo: &config.Tremolo{Depth: 0.5, Rate: 2, Waveform: "wobble"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewInstrument(tc.cfg, 44100); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestChipInstruments(t *testing.T) {
	cycle := filepath.Join(t.TempDir(), "cycle.wav")
	if err := WriteWAVFile(cycle, []float64{0, 0.5, 0, -0.5}, 44100, 16); err != nil {
		t.Fatalf("write cycle: %v", err)
	}
	cases := []config.Instrument{
		{Waveform: "pulse", Gain: 1, Duty: 0.25},
		{Waveform: "fm", Gain: 1, ModRatio: 3, ModIndex: 2},
		{Waveform: "wavetable", Gain: 1, Sample: cycle},
	}
	for _, cfg := range cases {
		t.Run(cfg.Waveform, func(t *testing.T) {
			inst, err := NewInstrument(cfg, 44100)
			if err != nil {
				t.Fatalf("new instrument: %v", err)
			}
			gen, err := inst(Note{Frequency: 441, SampleRate: 44100})
			if err != nil {
				t.Fatalf("voice: %v", err)
			}
			var peak float64
			for i := 0; i < 441; i++ {
				v := gen.Sample(float64(i) / 44100)
				if math.IsNaN(v) || math.Abs(v) > 1.5 {
					t.Fatalf("sample %d = %v", i, v)
				}
				peak = math.Max(peak, math.Abs(v))
			}
			if peak == 0 {
				t.Fatal("instrument is silent")
			}
		})
	}
}
