package wavesynth

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/cbegin/wavesynth-go/internal/config"
	intfx "github.com/cbegin/wavesynth-go/internal/effects"
	"github.com/cbegin/wavesynth-go/internal/filter"
	"github.com/cbegin/wavesynth-go/internal/pcm"
)

// Pipeline post-processes a rendered signal: effects, then FIR filters,
// then optional peak normalization.
type Pipeline struct {
	SampleRate int
	Effects    []config.Effect
	Filters    []config.Filter
	Normalize  bool
	Logger     *slog.Logger
}

// NewPipeline takes the post-processing stages of cfg.
func NewPipeline(cfg config.Config) *Pipeline {
	return &Pipeline{
		SampleRate: cfg.SampleRate,
		Effects:    cfg.Effects,
		Filters:    cfg.Filters,
		Normalize:  cfg.Normalize,
	}
}

// Process returns a new, processed copy of samples of the same length.
func (p *Pipeline) Process(samples []float64) ([]float64, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	out := append([]float64(nil), samples...)

	chain, err := buildEffectChain(p.Effects, p.SampleRate)
	if err != nil {
		return nil, err
	}
	if chain != nil {
		intfx.ProcessBuffer(chain, out)
		log.Debug("applied effects", "count", chain.Len())
	}
	for i, f := range p.Filters {
		h, err := buildFilter(f, p.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, f.Type, err)
		}
		out = filter.Apply(out, h)
		log.Debug("applied filter", "type", f.Type, "taps", len(h))
	}
	if p.Normalize {
		peak := pcm.Peak(out)
		out = pcm.PeakNormalize(out)
		log.Debug("normalized", "peak", peak)
	}
	return out, nil
}

// buildFilter designs the kernel for one filter stage.
func buildFilter(f config.Filter, sampleRate int) ([]float64, error) {
	length := f.Length
	if length == 0 {
		band := f.Transition
		if band == 0 {
			band = config.DefaultTransition
		}
		var err error
		if length, err = filter.LengthForTransition(band); err != nil {
			return nil, err
		}
	}
	switch strings.ToLower(f.Type) {
	case "lowpass":
		return filter.LowPass(f.Cutoff, sampleRate, length)
	case "highpass":
		return filter.HighPass(f.Cutoff, sampleRate, length)
	case "bandpass":
		return filter.BandPass(f.Low, f.High, sampleRate, length)
	case "bandreject":
		return filter.BandReject(f.Low, f.High, sampleRate, length)
	}
	return nil, &ParamError{Param: "filter type", Msg: fmt.Sprintf("unknown filter %q", f.Type)}
}

// buildEffectChain builds an effect chain from the configured stages.
// Supports: delay, reverb, chorus, distortion, eq, compressor, fir,
// allpass, comb, dcblock. Returns nil when no effects are configured.
func buildEffectChain(effects []config.Effect, sampleRate int) (*intfx.Chain, error) {
	if len(effects) == 0 {
		return nil, nil
	}
	chain := intfx.NewChain()
	for i, e := range effects {
		eff, err := createEffect(strings.ToLower(strings.TrimSpace(e.Type)), e.Params, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("effect %d (%s): %w", i, e.Type, err)
		}
		chain.Add(eff)
	}
	return chain, nil
}

func createEffect(effectType string, params []float64, sampleRate int) (intfx.Effector, error) {
	getParam := func(idx int, def float64) float64 {
		if idx < len(params) {
			return params[idx]
		}
		return def
	}
	msToSamples := func(ms float64) int {
		return int(math.Round(ms * float64(sampleRate) / 1000))
	}
	switch effectType {
	case "delay", "echo":
		return intfx.NewEcho(sampleRate,
			getParam(0, 250), // delay ms
			getParam(1, 0.4), // feedback
			getParam(2, 0.3), // wet
		)
	case "reverb":
		return intfx.NewReverb(sampleRate,
			getParam(0, 0.5),  // room size
			getParam(1, 0.5),  // dampening
			getParam(2, 0.25), // wet
		)
	case "chorus":
		return intfx.NewChorus(sampleRate,
			getParam(0, 15),  // delay ms
			getParam(1, 0.3), // feedback
			getParam(2, 3),   // depth ms
			getParam(3, 1.5), // rate Hz
			getParam(4, 0.4), // wet
		)
	case "dist", "distortion":
		return intfx.NewDistortion(sampleRate,
			getParam(0, 4),    // pre gain
			getParam(1, 0.5),  // post gain
			getParam(2, 8000), // lpf cutoff
		), nil
	case "eq":
		return intfx.NewEQ3Band(sampleRate,
			getParam(0, 1.0),  // low gain
			getParam(1, 1.0),  // mid gain
			getParam(2, 1.0),  // high gain
			getParam(3, 300),  // low freq
			getParam(4, 3000), // high freq
		), nil
	case "comp", "compressor":
		return intfx.NewCompressor(sampleRate,
			getParam(0, -20), // threshold dB
			getParam(1, 4),   // ratio
			getParam(2, 5),   // attack ms
			getParam(3, 100), // release ms
			getParam(4, 6),   // makeup dB
		), nil
	case "fir":
		h, err := filter.LowPass(
			getParam(0, 8000), // cutoff Hz
			sampleRate,
			int(getParam(1, 101)), // taps
		)
		if err != nil {
			return nil, err
		}
		return intfx.NewFIR(h)
	case "allpass":
		return intfx.NewAllPass(
			msToSamples(getParam(0, 5)), // delay ms
			sampleRate,
			getParam(1, 0.5), // feedback
		)
	case "comb":
		return intfx.NewComb(
			msToSamples(getParam(0, 30)), // delay ms
			sampleRate,
			getParam(1, 0.5), // feedback
			getParam(2, 0.2), // dampening
		)
	case "dcblock":
		return intfx.NewDCBlock(getParam(0, 0.995)), nil // pole
	}
	return nil, &ParamError{Param: "effect type", Msg: fmt.Sprintf("unknown effect %q", effectType)}
}
