// Package wav frames integer PCM in a RIFF/WAVE container.
package wav

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/cbegin/wavesynth-go/internal/errs"
	"github.com/cbegin/wavesynth-go/internal/pcm"
)

const formatPCM = 1

// Wave is a decoded PCM container. PCM holds interleaved signed samples at
// BitsPerSample resolution; 8-bit data is converted from its unsigned wire
// form.
type Wave struct {
	AudioFormat   int
	NumChannels   int
	SampleRate    int
	ByteRate      int
	BlockAlign    int
	BitsPerSample int
	PCM           []int
}

// Samples returns the PCM scaled into [-1, 1].
func (w *Wave) Samples() ([]float64, error) {
	return pcm.UnquantizeInts(w.PCM, w.BitsPerSample)
}

// Frames returns the number of sample frames.
func (w *Wave) Frames() int {
	if w.NumChannels == 0 {
		return 0
	}
	return len(w.PCM) / w.NumChannels
}

func (w *Wave) Seconds() float64 {
	if w.SampleRate == 0 {
		return 0
	}
	return float64(w.Frames()) / float64(w.SampleRate)
}

func checkFormat(sampleRate, bitDepth, channels, n int) error {
	if sampleRate <= 0 {
		return errs.Param("sample rate", "must be positive, got %d", sampleRate)
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return errs.Param("bit depth", "must be 8, 16, 24 or 32, got %d", bitDepth)
	}
	if channels < 1 {
		return errs.Param("channels", "must be at least 1, got %d", channels)
	}
	if n%channels != 0 {
		return errs.Param("pcm", "%d samples do not divide into %d channels", n, channels)
	}
	return nil
}

// Encode writes a PCM WAVE file. The header sizes are patched on completion,
// which is why w must be seekable.
func Encode(w io.WriteSeeker, sampleRate, bitDepth, channels int, samples []int) error {
	if err := checkFormat(sampleRate, bitDepth, channels, len(samples)); err != nil {
		return err
	}
	data := samples
	if bitDepth == 8 {
		data = make([]int, len(samples))
		for i, s := range samples {
			data[i] = s + 128
		}
	}
	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return errs.IO("encode wav", err)
	}
	return errs.IO("encode wav", enc.Close())
}

// EncodeBytes is Encode into memory.
func EncodeBytes(sampleRate, bitDepth, channels int, samples []int) ([]byte, error) {
	var sb seekBuffer
	if err := Encode(&sb, sampleRate, bitDepth, channels, samples); err != nil {
		return nil, err
	}
	return sb.buf, nil
}

// Decode reads a PCM WAVE file. A stream that is not a valid WAVE file or
// whose PCM data cannot be read is a *errs.ParseError.
func Decode(r io.ReadSeeker) (*Wave, error) {
	d := wav.NewDecoder(r)
	d.ReadInfo()
	if err := d.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.Parse(-1, "read wav header: %v", err)
	}
	if !d.IsValidFile() {
		return nil, errs.Parse(-1, "not a valid wav file")
	}
	if d.WavAudioFormat != formatPCM {
		return nil, errs.Parse(-1, "unsupported wav format %d, want PCM", d.WavAudioFormat)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, errs.Parse(-1, "read wav data: %v", err)
	}
	w := &Wave{
		AudioFormat:   int(d.WavAudioFormat),
		NumChannels:   int(d.NumChans),
		SampleRate:    int(d.SampleRate),
		ByteRate:      int(d.AvgBytesPerSec),
		BitsPerSample: int(d.BitDepth),
		PCM:           buf.Data,
	}
	w.BlockAlign = w.NumChannels * ((w.BitsPerSample + 7) / 8)
	if w.BitsPerSample == 8 {
		for i := range w.PCM {
			w.PCM[i] -= 128
		}
	}
	return w, nil
}

// seekBuffer is an in-memory io.WriteSeeker.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	if end := s.pos + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	n := copy(s.buf[s.pos:], p)
	s.pos += n
	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.pos) + offset
	case io.SeekEnd:
		abs = int64(len(s.buf)) + offset
	default:
		return 0, errors.Errorf("seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.New("seek: negative position")
	}
	s.pos = int(abs)
	return abs, nil
}
