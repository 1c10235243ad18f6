package effects

// DCBlock is a one-pole high-pass that removes a constant offset.
type DCBlock struct {
	r       float64
	prevIn  float64
	prevOut float64
}

// NewDCBlock returns a blocker with pole r; 0.995 is a common choice.
func NewDCBlock(r float64) *DCBlock {
	return &DCBlock{r: clamp(r, 0, 0.9999)}
}

func (d *DCBlock) Tick(x float64) float64 {
	y := x - d.prevIn + d.r*d.prevOut
	d.prevIn = x
	d.prevOut = y
	return y
}

func (d *DCBlock) Reset() {
	d.prevIn, d.prevOut = 0, 0
}
