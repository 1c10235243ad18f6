// Package audio plays finished sample buffers through the ebiten audio
// backend.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource fills dst with mono samples and returns how many it wrote.
// A short count marks the end of the source.
type SampleSource interface {
	Process(dst []float64) int
}

// Buffer is a SampleSource over an already rendered signal.
type Buffer struct {
	mu      sync.Mutex
	samples []float64
	pos     int
	gain    float64
}

func NewBuffer(samples []float64) *Buffer {
	return &Buffer{samples: samples, gain: 1}
}

func (b *Buffer) Process(dst []float64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := copy(dst, b.samples[b.pos:])
	for i := range n {
		dst[i] *= b.gain
	}
	b.pos += n
	return n
}

// SetGain scales samples not yet read.
func (b *Buffer) SetGain(gain float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gain = gain
}

// Remaining returns the number of samples not yet read.
func (b *Buffer) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples) - b.pos
}

// StreamReader adapts a mono SampleSource to the interleaved stereo
// float32 little-endian stream ebiten expects. It returns io.EOF once the
// source runs short.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float64
	done   bool
	onEOF  func()
}

func NewStreamReader(source SampleSource, onEOF func()) *StreamReader {
	return &StreamReader{source: source, onEOF: onEOF}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return 0, io.EOF
	}
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([]float64, frames)
	}
	r.buf = r.buf[:frames]
	got := r.source.Process(r.buf)
	for i := 0; i < got; i++ {
		u := math.Float32bits(float32(clamp(r.buf[i])))
		binary.LittleEndian.PutUint32(p[i*8:], u)
		binary.LittleEndian.PutUint32(p[i*8+4:], u)
	}
	n := got * 8
	if got < frames {
		r.done = true
		if r.onEOF != nil {
			r.onEOF()
		}
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer prepares source for playback. onEOF, if non-nil, is called on
// the audio thread once the source is exhausted.
func NewPlayer(sampleRate int, source SampleSource, onEOF func()) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source, onEOF)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns the current playback position (what the listener actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
