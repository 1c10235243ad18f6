package sequencer

import (
	"iter"
	"math"

	"github.com/cbegin/wavesynth-go/internal/errs"
	"github.com/cbegin/wavesynth-go/internal/wave"
)

// Samples is a single-pass cursor evaluating a generator once per sample:
// sample i is gen.Sample(i / rate).
type Samples struct {
	gen    wave.Generator
	rate   int
	length int
	i      int
}

// NewSamples returns a cursor over floor(seconds*sampleRate) samples of gen.
func NewSamples(gen wave.Generator, seconds float64, sampleRate int) (*Samples, error) {
	if sampleRate <= 0 {
		return nil, errs.Param("sample rate", "must be positive, got %d", sampleRate)
	}
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return nil, errs.Param("duration", "must be a finite non-negative number of seconds, got %v", seconds)
	}
	return &Samples{
		gen:    gen,
		rate:   sampleRate,
		length: int(math.Floor(seconds * float64(sampleRate))),
	}, nil
}

func (s *Samples) Next() (float64, bool) {
	if s.i >= s.length {
		return 0, false
	}
	v := s.gen.Sample(float64(s.i) / float64(s.rate))
	s.i++
	return v, true
}

// Process fills dst and returns the number of samples written, which is
// less than len(dst) only once the cursor is exhausted.
func (s *Samples) Process(dst []float64) int {
	return process(s, dst)
}

// Len returns the total number of samples, consumed or not.
func (s *Samples) Len() int { return s.length }

func (s *Samples) SampleRate() int { return s.rate }

// All returns an iterator over the remaining samples.
func (s *Samples) All() iter.Seq[float64] {
	return all(s)
}

type cursor interface {
	Next() (float64, bool)
}

func process(c cursor, dst []float64) int {
	for n := range dst {
		v, ok := c.Next()
		if !ok {
			return n
		}
		dst[n] = v
	}
	return len(dst)
}

func all(c cursor) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for {
			v, ok := c.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
