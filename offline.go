package wavesynth

import (
	"fmt"
	"os"

	"github.com/cbegin/wavesynth-go/internal/errs"
	"github.com/cbegin/wavesynth-go/internal/midi"
	"github.com/cbegin/wavesynth-go/internal/pcm"
	"github.com/cbegin/wavesynth-go/internal/sequencer"
	"github.com/cbegin/wavesynth-go/internal/wav"
	"github.com/cbegin/wavesynth-go/internal/wave"
)

type (
	Generator  = wave.Generator
	Song       = midi.Song
	Samples    = sequencer.Samples
	Sequencer  = sequencer.Sequencer
	Note       = sequencer.Note
	Instrument = sequencer.Instrument

	ParseError = errs.ParseError
	IOError    = errs.IOError
	ParamError = errs.ParamError
)

// Render returns a cursor over seconds of gen at sampleRate.
func Render(gen Generator, seconds float64, sampleRate int) (*Samples, error) {
	return sequencer.NewSamples(gen, seconds, sampleRate)
}

type RenderOption func(*sequencer.Options)

// WithMono enables last-note priority.
func WithMono(mono bool) RenderOption {
	return func(o *sequencer.Options) { o.Mono = mono }
}

// WithReferencePitch sets the frequency of MIDI note 69.
func WithReferencePitch(hz float64) RenderOption {
	return func(o *sequencer.Options) { o.ReferencePitch = hz }
}

// WithTracks restricts rendering to the given track indices.
func WithTracks(tracks ...int) RenderOption {
	return func(o *sequencer.Options) { o.Tracks = tracks }
}

func WithInstrument(inst Instrument) RenderOption {
	return func(o *sequencer.Options) { o.Instrument = inst }
}

// WithNormalize controls peak normalization of a MIDI render. It is on by
// default; turn it off to get the raw sum of the sounding notes, which
// exceeds [-1, 1] wherever loud notes overlap.
func WithNormalize(normalize bool) RenderOption {
	return func(o *sequencer.Options) { o.Normalize = normalize }
}

// RenderMIDI returns a cursor over song rendered at sampleRate. By default
// the output is peak normalized into [-1, 1].
func RenderMIDI(song *Song, sampleRate int, opts ...RenderOption) (*Sequencer, error) {
	o := sequencer.Options{Normalize: true}
	for _, opt := range opts {
		opt(&o)
	}
	return sequencer.New(song, sampleRate, o)
}

// ReadMIDIFile parses the Standard MIDI File at path.
func ReadMIDIFile(path string) (*Song, error) {
	return midi.ReadFile(path)
}

// RenderMIDIFile parses the MIDI file at path and renders all of its tracks
// with the default instrument, peak normalized into [-1, 1].
func RenderMIDIFile(path string, sampleRate int, mono bool, referencePitch float64) (*Sequencer, error) {
	song, err := ReadMIDIFile(path)
	if err != nil {
		return nil, err
	}
	return RenderMIDI(song, sampleRate, WithMono(mono), WithReferencePitch(referencePitch))
}

// Cursor is a single-pass sample sequence.
type Cursor interface {
	Next() (float64, bool)
	Len() int
}

// Collect drains c into a slice. If c can fail (as a MIDI sequencer can),
// its error is returned alongside the samples produced before it.
func Collect(c Cursor) ([]float64, error) {
	out := make([]float64, 0, c.Len())
	for {
		v, ok := c.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	if e, ok := c.(interface{ Err() error }); ok {
		return out, e.Err()
	}
	return out, nil
}

// EncodeWAV quantizes mono samples and frames them as a WAV file.
func EncodeWAV(samples []float64, sampleRate, bitDepth int) ([]byte, error) {
	q, err := pcm.QuantizeInts(samples, bitDepth)
	if err != nil {
		return nil, err
	}
	return wav.EncodeBytes(sampleRate, bitDepth, 1, q)
}

// WriteWAVFile quantizes mono samples and writes them to path.
func WriteWAVFile(path string, samples []float64, sampleRate, bitDepth int) error {
	q, err := pcm.QuantizeInts(samples, bitDepth)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.IO("create wav", err)
	}
	if err := wav.Encode(f, sampleRate, bitDepth, 1, q); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return errs.IO("close wav", f.Close())
}

// WritePCMFile quantizes mono samples and writes them to path as raw
// little-endian PCM with no header.
func WritePCMFile(path string, samples []float64, bitDepth int) error {
	q, err := pcm.QuantizeInts(samples, bitDepth)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.IO("create pcm", err)
	}
	if err := wav.WritePCM(f, bitDepth, q); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return errs.IO("close pcm", f.Close())
}

// ReadWAVFile decodes the WAV file at path into samples in [-1, 1] and its
// sample rate. Multi-channel files are mixed down to mono.
func ReadWAVFile(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errs.IO("open wav", err)
	}
	defer f.Close()
	w, err := wav.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	samples, err := w.Samples()
	if err != nil {
		return nil, 0, err
	}
	if w.NumChannels > 1 {
		samples = mixdown(samples, w.NumChannels)
	}
	return samples, w.SampleRate, nil
}

func mixdown(interleaved []float64, channels int) []float64 {
	out := make([]float64, len(interleaved)/channels)
	for i := range out {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// GeneratorFunc adapts a plain function of time to a Generator.
type GeneratorFunc = wave.Func

// Waveform returns a stateless generator by name: sine, square, sawtooth,
// triangle, tangent, bell, organ or silence.
func Waveform(name string, frequency float64) (Generator, error) {
	return wave.New(name, frequency)
}
