// Package lfo provides a low-frequency oscillator stepped once per sample.
package lfo

import (
	"math"
	"strings"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

type Waveform int

const (
	WaveSaw Waveform = iota
	WaveSquare
	WaveTriangle
	WaveSine
)

// ParseWaveform maps a waveform name to its constant. The empty string
// selects WaveSine.
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "saw":
		return WaveSaw, nil
	case "square":
		return WaveSquare, nil
	case "triangle":
		return WaveTriangle, nil
	case "", "sine":
		return WaveSine, nil
	}
	return 0, errs.Param("lfo waveform", "unknown waveform %q", name)
}

// LFO produces a modulation value in [-depth, +depth] for each step.
// One instance is owned by one voice.
type LFO struct {
	depth      float64
	rateHz     float64
	waveform   Waveform
	sampleRate float64
	phase      float64 // current phase [0, 1)
}

func New(depth, rateHz float64, waveform Waveform, sampleRate int) *LFO {
	if waveform < WaveSaw || waveform > WaveSine {
		waveform = WaveSine
	}
	return &LFO{
		depth:      depth,
		rateHz:     rateHz,
		waveform:   waveform,
		sampleRate: float64(sampleRate),
	}
}

// Sample returns the value at the current phase and advances by one sample.
// Returns 0 if depth, rate or sample rate is zero.
func (l *LFO) Sample() float64 {
	if !l.Active() {
		return 0
	}
	var v float64
	switch l.waveform {
	case WaveSaw:
		v = 1.0 - 2.0*l.phase
	case WaveSquare:
		if l.phase < 0.5 {
			v = 1.0
		} else {
			v = -1.0
		}
	case WaveTriangle:
		if l.phase < 0.5 {
			v = 4.0*l.phase - 1.0
		} else {
			v = 3.0 - 4.0*l.phase
		}
	case WaveSine:
		v = math.Sin(2 * math.Pi * l.phase)
	}
	l.phase += l.rateHz / l.sampleRate
	l.phase -= math.Floor(l.phase)
	return v * l.depth
}

// Active returns true if the LFO has non-zero depth and rate.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0 && l.sampleRate > 0
}

func (l *LFO) Depth() float64 { return l.depth }

// Reset zeros the LFO phase.
func (l *LFO) Reset() {
	l.phase = 0
}
