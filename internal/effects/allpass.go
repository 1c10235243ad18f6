package effects

import (
	"math"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

// AllPass is a Schroeder all-pass section. Feedback must satisfy
// |feedback| < 1; 0.5 is a common choice.
type AllPass struct {
	line     *DelayLine
	feedback float64
}

func NewAllPass(delaySamples, sampleRate int, feedback float64) (*AllPass, error) {
	if err := checkFeedback(feedback); err != nil {
		return nil, err
	}
	line, err := NewDelayLine(delaySamples, sampleRate)
	if err != nil {
		return nil, err
	}
	return &AllPass{line: line, feedback: feedback}, nil
}

func (a *AllPass) Tick(x float64) float64 {
	delayed := a.line.Read()
	out := -a.feedback*x + delayed
	a.line.Write(x + a.feedback*out)
	return out
}

func (a *AllPass) Reset() { a.line.Reset() }

func checkFeedback(feedback float64) error {
	if math.IsNaN(feedback) || math.Abs(feedback) >= 1 {
		return errs.Param("feedback", "magnitude must be below 1, got %v", feedback)
	}
	return nil
}
