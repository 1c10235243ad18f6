package effects

import "math"

// Compressor implements basic dynamic range compression.
type Compressor struct {
	threshold float64
	ratio     float64
	attack    float64 // coefficient
	release   float64 // coefficient
	makeup    float64
	env       float64
}

// NewCompressor creates a compressor effect.
// thresholdDB: threshold in dB (e.g., -20)
// ratio: compression ratio (e.g., 4 for 4:1)
// attackMs: attack time in ms
// releaseMs: release time in ms
// makeupDB: makeup gain in dB
func NewCompressor(sampleRate int, thresholdDB, ratio, attackMs, releaseMs, makeupDB float64) *Compressor {
	sr := float64(sampleRate)
	if ratio < 1 {
		ratio = 1
	}
	return &Compressor{
		threshold: math.Pow(10, thresholdDB/20),
		ratio:     ratio,
		attack:    1.0 - math.Exp(-1.0/(attackMs*sr/1000.0)),
		release:   1.0 - math.Exp(-1.0/(releaseMs*sr/1000.0)),
		makeup:    math.Pow(10, makeupDB/20),
	}
}

func (c *Compressor) Tick(x float64) float64 {
	level := math.Abs(x)
	// Envelope follower
	if level > c.env {
		c.env += c.attack * (level - c.env)
	} else {
		c.env += c.release * (level - c.env)
	}
	return x * c.gain() * c.makeup
}

func (c *Compressor) gain() float64 {
	if c.env <= c.threshold || c.threshold <= 0 {
		return 1.0
	}
	// Reduce the excess above threshold by the ratio
	over := c.env / c.threshold
	return math.Pow(over, 1.0/c.ratio-1)
}

func (c *Compressor) Reset() {
	c.env = 0
}
