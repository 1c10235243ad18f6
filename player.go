package wavesynth

import (
	"errors"
	"sync"

	intaudio "github.com/cbegin/wavesynth-go/internal/audio"
	intfx "github.com/cbegin/wavesynth-go/internal/effects"
)

// PlaybackEvent carries playback events from Watch().
type PlaybackEvent struct {
	Kind int // EventPlaybackEnded or EventStopped
}

const (
	EventPlaybackEnded int = iota
	EventStopped
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	sampleTap func([]float64)
}

// WithSampleTap installs a callback invoked with each mono buffer handed to
// the audio driver, after volume and master EQ.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float64)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player plays rendered signals through the system audio device.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	audio      *intaudio.Player
	buffer     *intaudio.Buffer
	volume     float64
	sampleTap  func([]float64)
	masterEQ   *intfx.EQ5Band
	done       chan struct{}
	eventCh    chan PlaybackEvent
	eventChMu  sync.Mutex
}

// masteredSource runs a buffer through the master EQ and the sample tap.
type masteredSource struct {
	buf       *intaudio.Buffer
	masterEQ  *intfx.EQ5Band
	sampleTap func([]float64)
}

func (s *masteredSource) Process(dst []float64) int {
	n := s.buf.Process(dst)
	out := dst[:n]
	if s.masterEQ != nil {
		for i, x := range out {
			out[i] = s.masterEQ.Tick(x)
		}
	}
	if s.sampleTap != nil {
		s.sampleTap(out)
	}
	return n
}

// NewPlayer returns an idle player. The audio device is opened by the first
// Play call.
func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	var cfg playerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Player{
		sampleRate: sampleRate,
		volume:     1,
		sampleTap:  cfg.sampleTap,
		masterEQ:   intfx.NewEQ5Band(sampleRate),
	}, nil
}

// PlayGenerator renders seconds of gen and plays it.
func (p *Player) PlayGenerator(gen Generator, seconds float64) error {
	s, err := Render(gen, seconds, p.sampleRate)
	if err != nil {
		return err
	}
	samples, err := Collect(s)
	if err != nil {
		return err
	}
	return p.Play(samples)
}

// Play starts playback of samples, replacing any current playback.
func (p *Player) Play(samples []float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Signal any existing Wait() that the previous playback was replaced
	if p.done != nil {
		close(p.done)
	}
	done := make(chan struct{})
	p.done = done

	// The previous backend's audio thread must be gone before a new source
	// starts ticking.
	if p.audio != nil {
		_ = p.audio.Stop()
		p.audio = nil
		p.buffer = nil
	}
	src := p.newSource(samples)
	backend, err := intaudio.NewPlayer(p.sampleRate, src, func() {
		p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
		// Runs on the audio thread, which Stop may be waiting on under p.mu.
		go p.signalDone(done)
	})
	if err != nil {
		p.done = nil
		close(done)
		return err
	}
	p.audio = backend
	p.buffer = src.buf
	p.audio.Play()
	return nil
}

// newSource wraps samples for one playback. Each playback ticks its own
// fork of the master EQ, so band gains are shared but filter state is not.
func (p *Player) newSource(samples []float64) *masteredSource {
	buf := intaudio.NewBuffer(samples)
	buf.SetGain(p.volume)
	return &masteredSource{buf: buf, masterEQ: p.masterEQ.Fork(), sampleTap: p.sampleTap}
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

// signalDone closes done if it still belongs to the current playback.
func (p *Player) signalDone(done chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == done {
		p.done = nil
		close(done)
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

func (p *Player) Stop() error {
	p.mu.Lock()
	if p.audio == nil {
		p.mu.Unlock()
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	p.buffer = nil
	done := p.done
	p.done = nil
	p.mu.Unlock()
	p.sendEvent(PlaybackEvent{Kind: EventStopped})
	if done != nil {
		close(done)
	}
	return err
}

// Wait blocks until the current playback ends.
// Wait returns immediately if no playback is active or if it was stopped.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Watch returns a channel that receives playback events.
// The channel is buffered (cap 8). Only the most recent Watch() channel
// receives events; call Watch before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// SetMasterVolume sets runtime volume scalar. 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	if p.buffer != nil {
		p.buffer.SetGain(volume)
	}
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetEQBand sets the gain for a master EQ band (0-4). 1.0 = unity.
// Band frequencies: 0=<200Hz, 1=200-800Hz, 2=800-2.5kHz, 3=2.5-8kHz, 4=>8kHz.
// This takes effect immediately on the audio thread (lock-free).
func (p *Player) SetEQBand(band int, gain float64) {
	p.masterEQ.SetGain(band, gain)
}

// EQBand returns the current gain for a master EQ band (0-4).
func (p *Player) EQBand(band int) float64 {
	return p.masterEQ.Gain(band)
}

// IsPlaying reports whether the audio driver is currently playing.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	return a != nil && a.IsPlaying()
}

// PlaybackPosition returns the current output position of the audio driver
// in samples, i.e. what the listener actually hears right now. Returns 0 if
// not playing.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	pos := a.Position()
	return int64(pos.Seconds() * float64(p.sampleRate))
}
