package effects

// Effector processes a mono signal one sample at a time.
type Effector interface {
	Tick(x float64) float64
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Tick(x float64) float64 {
	for _, e := range c.effects {
		x = e.Tick(x)
	}
	return x
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

// Len returns the number of effects in the chain.
func (c *Chain) Len() int {
	return len(c.effects)
}

// ProcessBuffer runs every sample of buf through e in place.
func ProcessBuffer(e Effector, buf []float64) {
	for i, x := range buf {
		buf[i] = e.Tick(x)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
