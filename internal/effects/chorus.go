package effects

import (
	"github.com/cbegin/wavesynth-go/internal/errs"
	"github.com/cbegin/wavesynth-go/internal/lfo"
)

// Chorus implements a modulated delay for chorus/flanger effects.
type Chorus struct {
	buf      []float64
	pos      int
	base     float64 // center delay in samples
	mod      *lfo.LFO
	feedback float64
	wet      float64
}

// NewChorus creates a chorus/flanger effect.
// delayMs: base delay time in ms (typically 5-30ms)
// feedback: feedback amount, clamped to [0, 0.9]
// depthMs: modulation depth in ms, at most delayMs
// rateHz: modulation rate in Hz (typically 0.1-5Hz)
// wet: wet/dry mix 0..1
func NewChorus(sampleRate int, delayMs, feedback, depthMs, rateHz, wet float64) (*Chorus, error) {
	if sampleRate <= 0 {
		return nil, errs.Param("sample rate", "must be positive, got %d", sampleRate)
	}
	if delayMs <= 0 || depthMs < 0 || depthMs > delayMs {
		return nil, errs.Param("chorus delay", "need 0 <= depth <= delay and delay > 0, got %vms/%vms", depthMs, delayMs)
	}
	base := delayMs * float64(sampleRate) / 1000
	depth := depthMs * float64(sampleRate) / 1000
	size := int(base+depth) + 2
	return &Chorus{
		buf:      make([]float64, size),
		base:     base,
		mod:      lfo.New(depth, rateHz, lfo.WaveSine, sampleRate),
		feedback: clamp(feedback, 0, 0.9),
		wet:      clamp(wet, 0, 1),
	}, nil
}

func (c *Chorus) Tick(x float64) float64 {
	size := len(c.buf)
	c.buf[c.pos] = x

	// Read with fractional delay
	readPos := float64(c.pos) - (c.base + c.mod.Sample())
	for readPos < 0 {
		readPos += float64(size)
	}
	idx := int(readPos) % size
	frac := readPos - float64(int(readPos))
	idx2 := (idx + 1) % size
	delayed := c.buf[idx]*(1-frac) + c.buf[idx2]*frac

	c.buf[c.pos] += delayed * c.feedback
	c.pos = (c.pos + 1) % size
	return x*(1-c.wet) + delayed*c.wet
}

func (c *Chorus) Reset() {
	clear(c.buf)
	c.pos = 0
	c.mod.Reset()
}
