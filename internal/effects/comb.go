package effects

import (
	"math"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

// Comb is a feedback comb filter with a one-pole low-pass in the feedback
// path. Output is the raw delayed signal.
type Comb struct {
	line             *DelayLine
	feedback         float64
	dampening        float64
	dampeningInverse float64
	state            float64
}

// NewComb creates a comb filter.
// feedback: recirculation gain, |feedback| < 1
// dampening: 0 leaves the feedback unfiltered, values toward 1 darken it
func NewComb(delaySamples, sampleRate int, feedback, dampening float64) (*Comb, error) {
	if err := checkFeedback(feedback); err != nil {
		return nil, err
	}
	if math.IsNaN(dampening) || dampening < 0 || dampening > 1 {
		return nil, errs.Param("dampening", "must be in [0, 1], got %v", dampening)
	}
	line, err := NewDelayLine(delaySamples, sampleRate)
	if err != nil {
		return nil, err
	}
	return &Comb{
		line:             line,
		feedback:         feedback,
		dampening:        dampening,
		dampeningInverse: 1 - dampening,
	}, nil
}

func (c *Comb) Tick(x float64) float64 {
	delayed := c.line.Read()
	c.state = delayed*c.dampeningInverse + c.state*c.dampening
	c.line.Write(x + c.state*c.feedback)
	return delayed
}

func (c *Comb) Reset() {
	c.line.Reset()
	c.state = 0
}
