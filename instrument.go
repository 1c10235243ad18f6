package wavesynth

import (
	"strings"

	"github.com/cbegin/wavesynth-go/internal/config"
	"github.com/cbegin/wavesynth-go/internal/lfo"
	"github.com/cbegin/wavesynth-go/internal/sequencer"
	"github.com/cbegin/wavesynth-go/internal/wave"
)

// NewInstrument builds a per-note generator factory from an instrument
// description. A sampler's or wavetable's WAV file is loaded once, here,
// and shared read-only between notes.
func NewInstrument(cfg config.Instrument, sampleRate int) (Instrument, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Waveform))
	var sample []float64
	var sampleRateOfFile int
	if kind == "sampler" || kind == "wavetable" {
		var err error
		sample, sampleRateOfFile, err = ReadWAVFile(cfg.Sample)
		if err != nil {
			return nil, err
		}
	}
	var tremWave lfo.Waveform
	if cfg.Tremolo != nil {
		var err error
		if tremWave, err = lfo.ParseWaveform(cfg.Tremolo.Waveform); err != nil {
			return nil, err
		}
	}
	// Validate once up front so a bad description fails before rendering.
	if _, err := newVoice(kind, cfg, sample, sampleRateOfFile, sampleRate, 440, 0); err != nil {
		return nil, err
	}

	var seed uint64
	return func(n Note) (Generator, error) {
		seed++
		gen, err := newVoice(kind, cfg, sample, sampleRateOfFile, n.SampleRate, n.Frequency, cfg.Seed+seed)
		if err != nil {
			return nil, err
		}
		if cfg.Tremolo != nil && cfg.Tremolo.Depth > 0 {
			if gen, err = wave.NewTremolo(gen, cfg.Tremolo.Depth, cfg.Tremolo.Rate, tremWave, n.SampleRate); err != nil {
				return nil, err
			}
		}
		gain := cfg.Gain
		if cfg.Velocity {
			gain *= sequencer.Loudness(n.Velocity)
		}
		attack, decay := cfg.Attack, cfg.Decay
		return wave.Func(func(t float64) float64 {
			env := 1.0
			if attack > 0 || decay > 0 {
				env = wave.Envelope(t, attack, decay)
			}
			return gain * env * gen.Sample(t)
		}), nil
	}, nil
}

func newVoice(kind string, cfg config.Instrument, sample []float64, fileRate, sampleRate int, freq float64, seed uint64) (Generator, error) {
	switch kind {
	case "karplus":
		return wave.NewKarplusStrong(freq, sampleRate, cfg.Damping, seed)
	case "sampler":
		// The sampler steps through the file at its own rate.
		return wave.NewSampler(sample, fileRate, freq, cfg.BasePitch)
	case "wavetable":
		return wave.NewWavetable(sample, freq)
	case "pulse":
		duty := cfg.Duty
		if duty == 0 {
			duty = 0.125
		}
		return wave.Pulse{Frequency: freq, Duty: duty, SampleRate: sampleRate}, nil
	case "fm":
		fm := wave.DefaultFM(freq)
		if cfg.ModRatio > 0 {
			fm.ModMul = cfg.ModRatio
		}
		if cfg.ModIndex > 0 {
			fm.ModIndex = cfg.ModIndex
		}
		return fm, nil
	case "noise":
		return wave.NewNoise(seed), nil
	}
	return wave.New(kind, freq)
}
