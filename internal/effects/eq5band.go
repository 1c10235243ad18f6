package effects

import (
	"math"
	"sync/atomic"
)

// EQ5Band implements a 5-band equalizer with runtime-adjustable gains.
// Bands are split at 200Hz, 800Hz, 2.5kHz, and 8kHz.
// Gains are stored as float64 bit patterns so they can be changed while
// another goroutine is ticking the EQ.
type EQ5Band struct {
	gains  *[5]atomic.Uint64
	alphas [4]float64 // crossover filter coefficients
	lp     [4]float64 // lowpass state per crossover
}

var defaultCrossovers = [4]float64{200, 800, 2500, 8000}

// NewEQ5Band creates a 5-band EQ with all gains at unity.
func NewEQ5Band(sampleRate int) *EQ5Band {
	eq := &EQ5Band{gains: new([5]atomic.Uint64)}
	for i, freq := range defaultCrossovers {
		eq.alphas[i] = onePoleAlpha(freq, sampleRate)
	}
	for i := range eq.gains {
		eq.gains[i].Store(math.Float64bits(1.0))
	}
	return eq
}

// SetGain sets the gain for band (0-4). 1.0 = unity, 0.0 = silence, 2.0 = +6dB.
func (eq *EQ5Band) SetGain(band int, gain float64) {
	if band >= 0 && band < 5 {
		eq.gains[band].Store(math.Float64bits(gain))
	}
}

// Gain returns the current gain for band (0-4).
func (eq *EQ5Band) Gain(band int) float64 {
	if band >= 0 && band < 5 {
		return math.Float64frombits(eq.gains[band].Load())
	}
	return 1.0
}

func (eq *EQ5Band) Tick(x float64) float64 {
	// Split into 5 bands using 4 cascaded crossover filters; band 4 is
	// what remains above the last crossover.
	var out float64
	rem := x
	for i := 0; i < 4; i++ {
		eq.lp[i] += eq.alphas[i] * (rem - eq.lp[i])
		out += eq.lp[i] * eq.Gain(i)
		rem -= eq.lp[i]
	}
	return out + rem*eq.Gain(4)
}

// Fork returns an EQ with fresh filter state that shares eq's gains, so a
// SetGain on either is heard by both.
func (eq *EQ5Band) Fork() *EQ5Band {
	return &EQ5Band{gains: eq.gains, alphas: eq.alphas}
}

func (eq *EQ5Band) Reset() {
	eq.lp = [4]float64{}
}
