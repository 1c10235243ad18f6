// Package config loads render settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/cbegin/wavesynth-go/internal/errs"
	"github.com/cbegin/wavesynth-go/internal/lfo"
	"github.com/cbegin/wavesynth-go/internal/wave"
)

type Config struct {
	SampleRate     int        `yaml:"sample_rate"`
	BitDepth       int        `yaml:"bit_depth"`
	ReferencePitch float64    `yaml:"reference_pitch"`
	Mono           bool       `yaml:"mono"`
	Tracks         []int      `yaml:"tracks,omitempty"`
	Normalize      bool       `yaml:"normalize"`
	Instrument     Instrument `yaml:"instrument"`
	Filters        []Filter   `yaml:"filters,omitempty"`
	Effects        []Effect   `yaml:"effects,omitempty"`
}

// Instrument describes the generator built for every note.
type Instrument struct {
	// Waveform is a stateless waveform name (see wave.New) or one of
	// "karplus", "sampler", "wavetable" and "noise".
	Waveform string  `yaml:"waveform"`
	Attack   float64 `yaml:"attack"`
	Decay    float64 `yaml:"decay"`
	Gain     float64 `yaml:"gain"`
	// Velocity scales loudness by note velocity when set.
	Velocity bool `yaml:"velocity"`
	// Damping of the karplus string, in (0, 1).
	Damping float64 `yaml:"damping"`
	// Duty is the high fraction of a pulse period; zero means 0.125.
	Duty float64 `yaml:"duty,omitempty"`
	// ModRatio and ModIndex shape the fm voice; zero takes the defaults.
	ModRatio float64 `yaml:"mod_ratio,omitempty"`
	ModIndex float64 `yaml:"mod_index,omitempty"`
	// Sample is a WAV file played by the sampler at BasePitch, or the
	// single cycle looped by the wavetable.
	Sample    string   `yaml:"sample,omitempty"`
	BasePitch float64  `yaml:"base_pitch"`
	Seed      uint64   `yaml:"seed"`
	Tremolo   *Tremolo `yaml:"tremolo,omitempty"`
}

type Tremolo struct {
	Depth    float64 `yaml:"depth"`
	Rate     float64 `yaml:"rate"`
	Waveform string  `yaml:"waveform"`
}

// Filter is one FIR stage applied to the rendered signal.
type Filter struct {
	Type   string  `yaml:"type"` // lowpass, highpass, bandpass or bandreject
	Cutoff float64 `yaml:"cutoff,omitempty"`
	Low    float64 `yaml:"low,omitempty"`
	High   float64 `yaml:"high,omitempty"`
	// Length is the odd kernel length. Zero derives it from Transition,
	// the transition bandwidth as a fraction of the sample rate.
	Length     int     `yaml:"length,omitempty"`
	Transition float64 `yaml:"transition,omitempty"`
}

// Effect is one stage of the effect chain. Params are positional; missing
// trailing values take the effect's defaults.
type Effect struct {
	Type   string    `yaml:"type"`
	Params []float64 `yaml:"params,omitempty"`
}

const DefaultTransition = 0.01

func DefaultConfig() Config {
	return Config{
		SampleRate:     44100,
		BitDepth:       16,
		ReferencePitch: 440,
		Normalize:      true,
		Instrument: Instrument{
			Waveform:  "square",
			Attack:    0.01,
			Decay:     1.0,
			Gain:      1.0,
			Velocity:  true,
			Damping:   0.996,
			BasePitch: 440,
		},
	}
}

// Load reads a YAML file over DefaultConfig. A leading ~ in path is
// expanded, and a relative instrument sample path is resolved against the
// directory of the config file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	p, err := homedir.Expand(path)
	if err != nil {
		return cfg, errs.IO("expand config path", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return cfg, errs.IO("read config", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", p, err)
	}
	if cfg.Instrument.Sample != "" {
		cfg.Instrument.Sample, err = ResolvePath(filepath.Dir(p), cfg.Instrument.Sample)
		if err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// Decode unmarshals YAML into cfg, rejecting unknown fields. Fields absent
// from data keep their current values.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// ResolvePath expands ~ and makes a relative path relative to base.
func ResolvePath(base, path string) (string, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return "", errs.IO("expand path", err)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	return p, nil
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return errs.Param("sample_rate", "must be positive, got %d", c.SampleRate)
	}
	switch c.BitDepth {
	case 8, 16, 24, 32:
	default:
		return errs.Param("bit_depth", "must be 8, 16, 24 or 32, got %d", c.BitDepth)
	}
	if c.ReferencePitch <= 0 {
		return errs.Param("reference_pitch", "must be positive, got %v", c.ReferencePitch)
	}
	for _, t := range c.Tracks {
		if t < 0 {
			return errs.Param("tracks", "negative track index %d", t)
		}
	}
	if err := c.Instrument.validate(); err != nil {
		return err
	}
	for i, f := range c.Filters {
		if err := f.validate(); err != nil {
			return fmt.Errorf("filters[%d]: %w", i, err)
		}
	}
	for i, e := range c.Effects {
		if !KnownEffect(e.Type) {
			return fmt.Errorf("effects[%d]: %w", i, errs.Param("type", "unknown effect %q", e.Type))
		}
	}
	return nil
}

func (in Instrument) validate() error {
	if in.Attack < 0 || in.Decay < 0 {
		return errs.Param("instrument envelope", "attack and decay must not be negative")
	}
	switch strings.ToLower(in.Waveform) {
	case "karplus":
		if !(in.Damping > 0 && in.Damping < 1) {
			return errs.Param("instrument damping", "must be in (0, 1), got %v", in.Damping)
		}
	case "sampler":
		if in.Sample == "" {
			return errs.Param("instrument sample", "sampler needs a sample file")
		}
		if in.BasePitch <= 0 {
			return errs.Param("instrument base_pitch", "must be positive, got %v", in.BasePitch)
		}
	case "wavetable":
		if in.Sample == "" {
			return errs.Param("instrument sample", "wavetable needs a single-cycle sample file")
		}
	case "noise":
	default:
		if _, err := wave.New(in.Waveform, 1); err != nil {
			return errs.Param("instrument waveform", "%v", err)
		}
	}
	if in.Duty < 0 || in.Duty >= 1 {
		return errs.Param("instrument duty", "must be in [0, 1), got %v", in.Duty)
	}
	if in.ModRatio < 0 || in.ModIndex < 0 {
		return errs.Param("instrument fm", "ratio and index must not be negative")
	}
	if in.Tremolo != nil {
		if in.Tremolo.Depth < 0 || in.Tremolo.Depth > 1 {
			return errs.Param("tremolo depth", "must be in [0, 1], got %v", in.Tremolo.Depth)
		}
		if _, err := lfo.ParseWaveform(in.Tremolo.Waveform); err != nil {
			return errs.Param("tremolo waveform", "%v", err)
		}
	}
	return nil
}

func (f Filter) validate() error {
	switch strings.ToLower(f.Type) {
	case "lowpass", "highpass":
		if f.Cutoff <= 0 {
			return errs.Param("cutoff", "must be positive, got %v", f.Cutoff)
		}
	case "bandpass", "bandreject":
		if f.Low <= 0 || f.High <= f.Low {
			return errs.Param("band", "need 0 < low < high, got %v..%v", f.Low, f.High)
		}
	default:
		return errs.Param("type", "unknown filter %q", f.Type)
	}
	if f.Length != 0 && (f.Length < 0 || f.Length%2 == 0) {
		return errs.Param("length", "must be odd and positive, got %d", f.Length)
	}
	return nil
}

// KnownEffect reports whether name is an effect the chain builder accepts.
func KnownEffect(name string) bool {
	switch strings.ToLower(name) {
	case "delay", "echo", "reverb", "chorus", "dist", "distortion", "eq", "comp", "compressor", "fir", "allpass", "comb", "dcblock":
		return true
	}
	return false
}
