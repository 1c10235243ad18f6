package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.SampleRate != 44100 || cfg.BitDepth != 16 || cfg.ReferencePitch != 440 {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	src := `
sample_rate: 48000
mono: true
tracks: [1, 2]
instrument:
  waveform: sampler
  sample: piano.wav
  base_pitch: 261.63
  tremolo:
    depth: 0.3
    rate: 5
filters:
  - type: lowpass
    cutoff: 8000
    length: 101
  - type: bandreject
    low: 50
    high: 70
effects:
  - type: reverb
    params: [0.6, 0.2, 0.3]
`
	path := filepath.Join(dir, "render.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SampleRate != 48000 || !cfg.Mono || len(cfg.Tracks) != 2 {
		t.Fatalf("top level = %+v", cfg)
	}
	// Untouched fields keep their defaults.
	if cfg.BitDepth != 16 || cfg.Instrument.Attack != 0.01 || !cfg.Normalize {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Instrument.Sample != filepath.Join(dir, "piano.wav") {
		t.Fatalf("sample path = %q", cfg.Instrument.Sample)
	}
	if cfg.Instrument.Tremolo == nil || cfg.Instrument.Tremolo.Rate != 5 {
		t.Fatalf("tremolo = %+v", cfg.Instrument.Tremolo)
	}
	if len(cfg.Filters) != 2 || cfg.Filters[1].High != 70 {
		t.Fatalf("filters = %+v", cfg.Filters)
	}
	if len(cfg.Effects) != 1 || cfg.Effects[0].Params[2] != 0.3 {
		t.Fatalf("effects = %+v", cfg.Effects)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("sample_rat: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for misspelled field")
	}
}

func TestLoadMissingFileIsIOError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var ioe *errs.IOError
	if !errors.As(err, &ioe) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"bit depth", func(c *Config) { c.BitDepth = 12 }},
		{"reference pitch", func(c *Config) { c.ReferencePitch = -440 }},
		{"negative track", func(c *Config) { c.Tracks = []int{-1} }},
		{"waveform", func(c *Config) { c.Instrument.Waveform = "kazoo" }},
		{"karplus damping", func(c *Config) { c.Instrument.Waveform = "karplus"; c.Instrument.Damping = 1 }},
		{"sampler without file", func(c *Config) { c.Instrument.Waveform = "sampler" }},
		{"wavetable without file", func(c *Config) { c.Instrument.Waveform = "wavetable" }},
		{"pulse duty", func(c *Config) { c.Instrument.Waveform = "pulse"; c.Instrument.Duty = 1 }},
		{"fm index", func(c *Config) { c.Instrument.Waveform = "fm"; c.Instrument.ModIndex = -1 }},
		{"tremolo depth", func(c *Config) { c.Instrument.Tremolo = &Tremolo{Depth: 2} }},
		{"filter type", func(c *Config) { c.Filters = []Filter{{Type: "notch", Cutoff: 100}} }},
		{"filter even length", func(c *Config) { c.Filters = []Filter{{Type: "lowpass", Cutoff: 100, Length: 10}} }},
		{"inverted band", func(c *Config) { c.Filters = []Filter{{Type: "bandpass", Low: 500, High: 100}} }},
		{"effect type", func(c *Config) { c.Effects = []Effect{{Type: "flanger"}} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			var pe *errs.ParamError
			if err := cfg.Validate(); !errors.As(err, &pe) {
				t.Fatalf("expected ParamError, got %v", err)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Effects = []Effect{{Type: "delay", Params: []float64{250, 0.4}}}
	data, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Config
	if err := Decode(data, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.SampleRate != cfg.SampleRate || back.Instrument.Waveform != "square" || back.Effects[0].Params[0] != 250 {
		t.Fatalf("round trip = %+v", back)
	}
}

func TestResolvePath(t *testing.T) {
	got, err := ResolvePath("/base", "sub/x.wav")
	if err != nil || got != filepath.Join("/base", "sub/x.wav") {
		t.Fatalf("relative = %q, %v", got, err)
	}
	got, err = ResolvePath("/base", "/abs/x.wav")
	if err != nil || got != "/abs/x.wav" {
		t.Fatalf("absolute = %q, %v", got, err)
	}
}
