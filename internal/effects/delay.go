package effects

// Echo implements a feedback delay mixed with the dry signal.
type Echo struct {
	line     *DelayLine
	feedback float64
	wet      float64
}

// NewEcho creates an echo effect.
// delayMs: delay time in milliseconds
// feedback: feedback amount, |feedback| < 1
// wet: wet/dry mix 0..1
func NewEcho(sampleRate int, delayMs, feedback, wet float64) (*Echo, error) {
	if err := checkFeedback(feedback); err != nil {
		return nil, err
	}
	line, err := NewDelayLine(max(int(delayMs*float64(sampleRate)/1000.0), 1), sampleRate)
	if err != nil {
		return nil, err
	}
	return &Echo{line: line, feedback: feedback, wet: clamp(wet, 0, 1)}, nil
}

func (e *Echo) Tick(x float64) float64 {
	delayed := e.line.Read()
	e.line.Write(x + delayed*e.feedback)
	return x*(1-e.wet) + delayed*e.wet
}

func (e *Echo) Reset() { e.line.Reset() }
