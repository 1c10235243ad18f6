package effects

// Reverb implements a Schroeder-style reverb with parallel comb filters
// feeding two series all-pass filters.
type Reverb struct {
	combs   [4]*Comb
	allpass [2]*AllPass
	wet     float64
}

// Comb and all-pass lengths in samples at 44.1 kHz.
var (
	reverbCombLens    = [4]int{1116, 1277, 1422, 1557}
	reverbAllPassLens = [2]int{556, 341}
)

// NewReverb creates a reverb effect.
// roomSize: 0..1 controls decay time
// dampening: 0..1 controls high-frequency loss in the tail
// wet: wet/dry mix 0..1
func NewReverb(sampleRate int, roomSize, dampening, wet float64) (*Reverb, error) {
	scale := float64(sampleRate) / 44100
	fb := 0.7 + clamp(roomSize, 0, 1)*0.28
	r := &Reverb{wet: clamp(wet, 0, 1)}
	for i, n := range reverbCombLens {
		c, err := NewComb(scaledLen(n, scale), sampleRate, fb, clamp(dampening, 0, 1))
		if err != nil {
			return nil, err
		}
		r.combs[i] = c
	}
	for i, n := range reverbAllPassLens {
		a, err := NewAllPass(scaledLen(n, scale), sampleRate, 0.5)
		if err != nil {
			return nil, err
		}
		r.allpass[i] = a
	}
	return r, nil
}

func (r *Reverb) Tick(x float64) float64 {
	var out float64
	for _, c := range r.combs {
		out += c.Tick(x)
	}
	out *= 0.25
	for _, a := range r.allpass {
		out = a.Tick(out)
	}
	return x*(1-r.wet) + out*r.wet
}

func (r *Reverb) Reset() {
	for _, c := range r.combs {
		c.Reset()
	}
	for _, a := range r.allpass {
		a.Reset()
	}
}

func scaledLen(n int, scale float64) int {
	return max(int(float64(n)*scale), 1)
}
