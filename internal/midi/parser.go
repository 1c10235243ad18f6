package midi

import (
	"bytes"
	"encoding/binary"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

var (
	headerID = []byte("MThd")
	trackID  = []byte("MTrk")
)

const chunkHeaderLen = 8

// ReadFile opens and parses the Standard MIDI File at path.
func ReadFile(path string) (*Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.IO("open midi file", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a Standard MIDI File. It fails with *errs.ParseError on
// malformed structure and *errs.IOError when r itself fails; no partial
// song is returned.
func Read(r io.ReadSeeker) (*Song, error) {
	p := &parser{r: r}
	song, ntracks, err := p.header()
	if err != nil {
		return nil, err
	}
	for len(song.Tracks) < ntracks {
		id, length, err := p.chunkHeader()
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(id, trackID) {
			slog.Debug("skipping midi chunk", "id", string(id), "offset", p.off-chunkHeaderLen, "length", length)
			if err := p.skip(int64(length)); err != nil {
				return nil, err
			}
			continue
		}
		base := p.off
		data, err := p.chunk(length)
		if err != nil {
			return nil, err
		}
		track, err := decodeTrack(data, base)
		if err != nil {
			return nil, err
		}
		song.Tracks = append(song.Tracks, track)
		song.MaxTime = max(song.MaxTime, track.MaxTime)
	}
	song.BPM = firstTempo(song.Tracks)
	return song, nil
}

type parser struct {
	r   io.ReadSeeker
	off int64
}

func (p *parser) header() (*Song, int, error) {
	id, length, err := p.chunkHeader()
	if err != nil {
		return nil, 0, err
	}
	if !bytes.Equal(id, headerID) {
		return nil, 0, errs.Parse(0, "bad header magic %q", id)
	}
	if length < 6 {
		return nil, 0, errs.Parse(4, "header length %d, want at least 6", length)
	}
	start := p.off
	data, err := p.chunk(length)
	if err != nil {
		return nil, 0, err
	}
	format := int(binary.BigEndian.Uint16(data[0:2]))
	ntracks := int(binary.BigEndian.Uint16(data[2:4]))
	division, err := parseDivision(binary.BigEndian.Uint16(data[4:6]), start+4)
	if err != nil {
		return nil, 0, err
	}
	if format > 2 {
		return nil, 0, errs.Parse(start, "unknown format %d", format)
	}
	return &Song{
		Format:   format,
		Division: division,
		Tracks:   make([]Track, 0, ntracks),
		BPM:      DefaultBPM,
	}, ntracks, nil
}

func parseDivision(raw uint16, off int64) (TimeDivision, error) {
	if raw&0x8000 == 0 {
		if raw == 0 {
			return TimeDivision{}, errs.Parse(off, "zero ticks per quarter note")
		}
		return TimeDivision{TicksPerQuarter: int(raw)}, nil
	}
	fps := -int(int8(raw >> 8))
	tpf := int(raw & 0xFF)
	switch fps {
	case 24, 25, 29, 30:
	default:
		return TimeDivision{}, errs.Parse(off, "unsupported smpte rate %d fps", fps)
	}
	if tpf == 0 {
		return TimeDivision{}, errs.Parse(off, "zero ticks per smpte frame")
	}
	return TimeDivision{FramesPerSecond: fps, TicksPerFrame: tpf}, nil
}

func (p *parser) chunkHeader() ([]byte, uint32, error) {
	var buf [chunkHeaderLen]byte
	if err := p.read(buf[:]); err != nil {
		return nil, 0, err
	}
	return buf[:4], binary.BigEndian.Uint32(buf[4:]), nil
}

// chunk reads the declared length of chunk data in full. The buffer grows
// with the bytes actually present, so a forged length cannot force a huge
// allocation.
func (p *parser) chunk(length uint32) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, p.r, int64(length))
	start := p.off
	p.off += n
	switch {
	case err == nil:
		return buf.Bytes(), nil
	case errors.Is(err, io.EOF):
		return nil, errs.Parse(start, "truncated chunk: need %d bytes, %d available", length, n)
	}
	return nil, errs.IO("read midi", err)
}

func (p *parser) read(buf []byte) error {
	n, err := io.ReadFull(p.r, buf)
	start := p.off
	p.off += int64(n)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return errs.Parse(start, "truncated chunk: need %d bytes, %d available", len(buf), n)
	}
	return errs.IO("read midi", err)
}

func (p *parser) skip(n int64) error {
	if _, err := p.r.Seek(n, io.SeekCurrent); err != nil {
		return errs.IO("seek midi", err)
	}
	p.off += n
	return nil
}

func firstTempo(tracks []Track) float64 {
	for _, t := range tracks {
		for _, e := range t.Events {
			if e.Kind == KindMeta && e.Meta == Tempo && e.Value1 > 0 {
				return 60e6 / float64(e.Value1)
			}
		}
	}
	return DefaultBPM
}

// trackDecoder walks the bytes of one MTrk chunk. base is the file offset of
// data[0], used for error positions.
type trackDecoder struct {
	data    []byte
	pos     int
	base    int64
	time    int
	running byte
}

func decodeTrack(data []byte, base int64) (Track, error) {
	d := &trackDecoder{data: data, base: base}
	var track Track
	for {
		if d.pos >= len(d.data) {
			return Track{}, d.errorf("track ends without end-of-track event")
		}
		ev, err := d.next()
		if err != nil {
			return Track{}, err
		}
		track.Events = append(track.Events, ev)
		track.MaxTime = ev.Time
		if ev.Kind == KindMeta && ev.Meta == EndOfTrack {
			if d.pos != len(d.data) {
				return Track{}, d.errorf("%d bytes after end-of-track event", len(d.data)-d.pos)
			}
			return track, nil
		}
	}
}

func (d *trackDecoder) errorf(format string, args ...any) error {
	return errs.Parse(d.base+int64(d.pos), format, args...)
}

func (d *trackDecoder) vlq() (int, error) {
	v, n, err := decodeVLQ(d.data[d.pos:])
	if err != nil {
		return 0, d.errorf("%v", err)
	}
	d.pos += n
	return int(v), nil
}

func (d *trackDecoder) take(n int) ([]byte, error) {
	if n > len(d.data)-d.pos {
		return nil, d.errorf("event needs %d bytes, %d left in chunk", n, len(d.data)-d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *trackDecoder) next() (Event, error) {
	delta, err := d.vlq()
	if err != nil {
		return Event{}, err
	}
	d.time += delta
	if d.pos >= len(d.data) {
		return Event{}, d.errorf("missing status byte")
	}
	status := d.data[d.pos]
	if status < 0x80 {
		if d.running == 0 {
			return Event{}, d.errorf("data byte %#02x without running status", status)
		}
		status = d.running
	} else {
		d.pos++
	}

	switch {
	case status < 0xF0:
		d.running = status
		return d.voice(status)
	case status == 0xFF:
		d.running = 0
		return d.meta()
	case status == 0xF0 || status == 0xF7:
		d.running = 0
		return d.sysex(SystemType(status & 0x0F))
	}
	return d.system(status)
}

func (d *trackDecoder) voice(status byte) (Event, error) {
	vt := VoiceType(status >> 4)
	data, err := d.take(vt.dataLen())
	if err != nil {
		return Event{}, err
	}
	for _, b := range data {
		if b >= 0x80 {
			return Event{}, errs.Parse(d.base+int64(d.pos-len(data)), "status byte %#02x inside %s data", b, vt)
		}
	}
	ev := Event{Time: d.time, Kind: KindVoice, Voice: vt, Channel: status & 0x0F, Value1: int(data[0])}
	if len(data) == 2 {
		ev.Value2 = int(data[1])
	}
	return ev, nil
}

func (d *trackDecoder) meta() (Event, error) {
	tb, err := d.take(1)
	if err != nil {
		return Event{}, err
	}
	start := d.pos
	length, err := d.vlq()
	if err != nil {
		return Event{}, err
	}
	data, err := d.take(length)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Time: d.time, Kind: KindMeta, Meta: MetaType(tb[0]), Data: data}
	switch ev.Meta {
	case Tempo:
		if length != 3 {
			return Event{}, errs.Parse(d.base+int64(start), "tempo event length %d, want 3", length)
		}
		ev.Value1 = int(data[0])<<16 | int(data[1])<<8 | int(data[2])
		if ev.Value1 == 0 {
			return Event{}, errs.Parse(d.base+int64(start), "zero tempo")
		}
	case TimeSignature:
		if length >= 2 {
			ev.Value1, ev.Value2 = int(data[0]), int(data[1])
		}
	case KeySignature:
		if length >= 2 {
			ev.Value1, ev.Value2 = int(int8(data[0])), int(data[1])
		}
	case SequenceNumber:
		if length == 2 {
			ev.Value1 = int(binary.BigEndian.Uint16(data))
		}
	case ChannelPrefix:
		if length == 1 {
			ev.Value1 = int(data[0])
		}
	}
	return ev, nil
}

func (d *trackDecoder) sysex(st SystemType) (Event, error) {
	length, err := d.vlq()
	if err != nil {
		return Event{}, err
	}
	data, err := d.take(length)
	if err != nil {
		return Event{}, err
	}
	return Event{Time: d.time, Kind: KindSystem, System: st, Data: data}, nil
}

// systemDataLen gives the data length of the fixed-size system messages.
var systemDataLen = map[SystemType]int{
	TimeCodeQuarterFrame: 1,
	SongPositionPointer:  2,
	SongSelect:           1,
	TuneRequest:          0,
	TimingClock:          0,
	Start:                0,
	Continue:             0,
	Stop:                 0,
	ActiveSensing:        0,
}

func (d *trackDecoder) system(status byte) (Event, error) {
	st := SystemType(status & 0x0F)
	n, ok := systemDataLen[st]
	if !ok {
		return Event{}, errs.Parse(d.base+int64(d.pos-1), "undefined status byte %#02x", status)
	}
	// System common messages cancel running status; real-time ones do not.
	if status < 0xF8 {
		d.running = 0
	}
	data, err := d.take(n)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Time: d.time, Kind: KindSystem, System: st, Data: data}
	switch n {
	case 1:
		ev.Value1 = int(data[0])
	case 2:
		ev.Value1 = int(data[0]) | int(data[1])<<7
	}
	return ev, nil
}
