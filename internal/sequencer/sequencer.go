// Package sequencer turns generators and parsed MIDI songs into lazy,
// single-pass sample sequences.
package sequencer

import (
	"iter"
	"log/slog"
	"math"
	"slices"

	"github.com/cbegin/wavesynth-go/internal/errs"
	"github.com/cbegin/wavesynth-go/internal/midi"
	"github.com/cbegin/wavesynth-go/internal/music"
	"github.com/cbegin/wavesynth-go/internal/pcm"
	"github.com/cbegin/wavesynth-go/internal/wave"
)

// Note describes a note being started.
type Note struct {
	Track      int
	Channel    uint8
	Key        int
	Velocity   int
	Frequency  float64
	SampleRate int
}

// Instrument creates the generator for one note. It is called once per
// NoteOn and the returned generator is owned by that note alone.
type Instrument func(n Note) (wave.Generator, error)

const (
	defaultAttack = 0.01
	defaultDecay  = 1.0
)

// DefaultInstrument is a square wave with velocity-scaled loudness on a
// linear attack/decay envelope.
func DefaultInstrument(n Note) (wave.Generator, error) {
	if n.Frequency <= 0 {
		return nil, errs.Param("frequency", "must be positive, got %v", n.Frequency)
	}
	sq := wave.Square{Frequency: n.Frequency}
	loud := Loudness(n.Velocity)
	return wave.Func(func(t float64) float64 {
		return loud * sq.Sample(t) * wave.Envelope(t, defaultAttack, defaultDecay)
	}), nil
}

// Loudness maps a MIDI velocity onto a 60 dB amplitude range; velocity 127
// is unity gain.
func Loudness(velocity int) float64 {
	return math.Exp(6.908*float64(velocity)/127) / 1000
}

type Options struct {
	Instrument Instrument // nil = DefaultInstrument
	// ReferencePitch is the frequency of MIDI note 69; zero means 440 Hz.
	ReferencePitch float64
	// Mono gives last-note priority: every NoteOn first releases all
	// sounding notes.
	Mono bool
	// Tracks selects the track indices to render; empty renders all.
	Tracks []int
	// Normalize renders the whole song on the first Next and scales it to
	// a peak of 1, keeping the sum of overlapping notes within [-1, 1].
	Normalize bool
	Logger    *slog.Logger
}

type scheduled struct {
	sample int
	track  int
	event  midi.Event
}

type voice struct {
	gen     wave.Generator
	onset   int
	track   int
	channel uint8
	key     int
}

// Sequencer mixes the notes of a song into one sample stream. Before sample
// i is produced every note event mapped to a sample index <= i is applied;
// the output is the sum of all sounding notes, each evaluated at the time
// elapsed since its onset. The sequence ends at the song's last tick.
type Sequencer struct {
	rate       int
	refPitch   float64
	mono       bool
	normalize  bool
	instrument Instrument
	log        *slog.Logger

	rendered []float64 // normalized song, filled by the first Next
	ready    bool
	pos      int

	schedule []scheduled
	next     int
	voices   []voice
	i        int
	length   int
	err      error

	started   int
	peakVoice int
}

func New(song *midi.Song, sampleRate int, opts Options) (*Sequencer, error) {
	if sampleRate <= 0 {
		return nil, errs.Param("sample rate", "must be positive, got %d", sampleRate)
	}
	if opts.ReferencePitch < 0 || math.IsNaN(opts.ReferencePitch) {
		return nil, errs.Param("reference pitch", "must be positive, got %v", opts.ReferencePitch)
	}
	tracks := opts.Tracks
	if len(tracks) == 0 {
		for i := range song.Tracks {
			tracks = append(tracks, i)
		}
	}
	for _, ti := range tracks {
		if ti < 0 || ti >= len(song.Tracks) {
			return nil, errs.Param("track", "index %d out of range [0, %d)", ti, len(song.Tracks))
		}
	}
	s := &Sequencer{
		rate:       sampleRate,
		refPitch:   opts.ReferencePitch,
		mono:       opts.Mono,
		normalize:  opts.Normalize,
		instrument: opts.Instrument,
		log:        opts.Logger,
	}
	if s.refPitch == 0 {
		s.refPitch = music.A4
	}
	if s.instrument == nil {
		s.instrument = DefaultInstrument
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	tempo := midi.NewTempoMap(song)
	for _, ti := range tracks {
		for _, ev := range song.Tracks[ti].Events {
			if ev.IsNoteOn() || ev.IsNoteOff() {
				s.schedule = append(s.schedule, scheduled{
					sample: tempo.SampleIndex(ev.Time, sampleRate),
					track:  ti,
					event:  ev,
				})
			}
		}
	}
	// Tracks were appended in selection order, so a stable sort keeps
	// simultaneous events in track then file order.
	slices.SortStableFunc(s.schedule, func(a, b scheduled) int { return a.sample - b.sample })
	s.length = tempo.SampleIndex(song.MaxTime, sampleRate)

	s.log.Debug("sequencer ready",
		"tracks", len(tracks),
		"note_events", len(s.schedule),
		"samples", s.length,
		"seconds", float64(s.length)/float64(sampleRate),
		"mono", s.mono,
		"normalize", s.normalize)
	return s, nil
}

// Next returns the next sample, or false once the song has ended or an
// instrument failed. With Normalize set, an instrument failure anywhere in
// the song ends the sequence before the first sample.
func (s *Sequencer) Next() (float64, bool) {
	if !s.normalize {
		return s.step()
	}
	if !s.ready {
		if err := s.render(); err != nil {
			return 0, false
		}
	}
	if s.pos >= len(s.rendered) {
		return 0, false
	}
	v := s.rendered[s.pos]
	s.pos++
	return v, true
}

func (s *Sequencer) render() error {
	raw := make([]float64, 0, s.length)
	for {
		v, ok := s.step()
		if !ok {
			break
		}
		raw = append(raw, v)
	}
	if s.err != nil {
		return s.err
	}
	s.log.Debug("normalized song", "peak", pcm.Peak(raw))
	s.rendered = pcm.PeakNormalize(raw)
	s.ready = true
	return nil
}

// step mixes the next raw sample.
func (s *Sequencer) step() (float64, bool) {
	if s.err != nil || s.i >= s.length {
		return 0, false
	}
	for s.next < len(s.schedule) && s.schedule[s.next].sample <= s.i {
		if err := s.apply(s.schedule[s.next]); err != nil {
			s.err = err
			s.log.Debug("sequencer stopped", "sample", s.i, "error", err)
			return 0, false
		}
		s.next++
	}
	var out float64
	for _, v := range s.voices {
		out += v.gen.Sample(float64(s.i-v.onset) / float64(s.rate))
	}
	s.i++
	if s.i == s.length {
		s.log.Debug("sequence finished", "notes", s.started, "peak_voices", s.peakVoice)
	}
	return out, true
}

func (s *Sequencer) apply(sc scheduled) error {
	ev := sc.event
	if ev.IsNoteOff() {
		idx := slices.IndexFunc(s.voices, func(v voice) bool {
			return v.track == sc.track && v.channel == ev.Channel && v.key == ev.Value1
		})
		if idx >= 0 {
			s.voices = slices.Delete(s.voices, idx, idx+1)
		}
		return nil
	}
	if s.mono {
		s.voices = s.voices[:0]
	}
	gen, err := s.instrument(Note{
		Track:      sc.track,
		Channel:    ev.Channel,
		Key:        ev.Value1,
		Velocity:   ev.Value2,
		Frequency:  music.NoteMIDI(s.refPitch, ev.Value1),
		SampleRate: s.rate,
	})
	if err != nil {
		return err
	}
	s.voices = append(s.voices, voice{
		gen:     gen,
		onset:   s.i,
		track:   sc.track,
		channel: ev.Channel,
		key:     ev.Value1,
	})
	s.started++
	s.peakVoice = max(s.peakVoice, len(s.voices))
	return nil
}

// Process fills dst and returns the number of samples written. A short
// count means the sequence ended; check Err to tell why.
func (s *Sequencer) Process(dst []float64) int {
	return process(s, dst)
}

// Len returns the total length of the song in samples.
func (s *Sequencer) Len() int { return s.length }

func (s *Sequencer) SampleRate() int { return s.rate }

// All returns an iterator over the remaining samples.
func (s *Sequencer) All() iter.Seq[float64] {
	return all(s)
}

// Err returns the instrument error that stopped the sequence, if any.
func (s *Sequencer) Err() error { return s.err }
