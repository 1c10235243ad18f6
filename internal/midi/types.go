// Package midi reads Standard MIDI Files into a song of time-ordered event
// tracks and maps their tick timestamps onto seconds and sample offsets.
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Kind selects which of an Event's sub-kinds is meaningful.
type Kind uint8

const (
	KindVoice Kind = iota
	KindSystem
	KindMeta
)

func (k Kind) String() string {
	switch k {
	case KindVoice:
		return "voice"
	case KindSystem:
		return "system"
	case KindMeta:
		return "meta"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// VoiceType is the high nibble of a channel voice status byte.
type VoiceType uint8

const (
	NoteOff               VoiceType = 0x8
	NoteOn                VoiceType = 0x9
	PolyphonicKeyPressure VoiceType = 0xA
	ControlChange         VoiceType = 0xB
	ProgramChange         VoiceType = 0xC
	ChannelPressure       VoiceType = 0xD
	PitchBendChange       VoiceType = 0xE
)

var voiceNames = map[VoiceType]string{
	NoteOff:               "NoteOff",
	NoteOn:                "NoteOn",
	PolyphonicKeyPressure: "PolyphonicKeyPressure",
	ControlChange:         "ControlChange",
	ProgramChange:         "ProgramChange",
	ChannelPressure:       "ChannelPressure",
	PitchBendChange:       "PitchBendChange",
}

func (v VoiceType) String() string {
	if s, ok := voiceNames[v]; ok {
		return s
	}
	return fmt.Sprintf("voice(%#x)", uint8(v))
}

// dataLen is the number of data bytes following the status byte.
func (v VoiceType) dataLen() int {
	if v == ProgramChange || v == ChannelPressure {
		return 1
	}
	return 2
}

// SystemType is the low nibble of a 0xF_ status byte.
type SystemType uint8

const (
	SystemExclusive      SystemType = 0x0
	TimeCodeQuarterFrame SystemType = 0x1
	SongPositionPointer  SystemType = 0x2
	SongSelect           SystemType = 0x3
	TuneRequest          SystemType = 0x6
	EndOfSystemExclusive SystemType = 0x7
	TimingClock          SystemType = 0x8
	Start                SystemType = 0xA
	Continue             SystemType = 0xB
	Stop                 SystemType = 0xC
	ActiveSensing        SystemType = 0xE
	Reset                SystemType = 0xF
)

var systemNames = map[SystemType]string{
	SystemExclusive:      "SystemExclusive",
	TimeCodeQuarterFrame: "TimeCodeQuarterFrame",
	SongPositionPointer:  "SongPositionPointer",
	SongSelect:           "SongSelect",
	TuneRequest:          "TuneRequest",
	EndOfSystemExclusive: "EndOfSystemExclusive",
	TimingClock:          "TimingClock",
	Start:                "Start",
	Continue:             "Continue",
	Stop:                 "Stop",
	ActiveSensing:        "ActiveSensing",
	Reset:                "Reset",
}

func (s SystemType) String() string {
	if n, ok := systemNames[s]; ok {
		return n
	}
	return fmt.Sprintf("system(%#x)", uint8(s))
}

// MetaType is the type byte following 0xFF in a track chunk.
type MetaType uint8

const (
	SequenceNumber    MetaType = 0x00
	Text              MetaType = 0x01
	Copyright         MetaType = 0x02
	TrackName         MetaType = 0x03
	InstrumentName    MetaType = 0x04
	Lyric             MetaType = 0x05
	Marker            MetaType = 0x06
	CuePoint          MetaType = 0x07
	ChannelPrefix     MetaType = 0x20
	EndOfTrack        MetaType = 0x2F
	Tempo             MetaType = 0x51
	SMPTEOffset       MetaType = 0x54
	TimeSignature     MetaType = 0x58
	KeySignature      MetaType = 0x59
	SequencerSpecific MetaType = 0x7F
)

var metaNames = map[MetaType]string{
	SequenceNumber:    "SequenceNumber",
	Text:              "Text",
	Copyright:         "Copyright",
	TrackName:         "TrackName",
	InstrumentName:    "InstrumentName",
	Lyric:             "Lyric",
	Marker:            "Marker",
	CuePoint:          "CuePoint",
	ChannelPrefix:     "ChannelPrefix",
	EndOfTrack:        "EndOfTrack",
	Tempo:             "Tempo",
	SMPTEOffset:       "SMPTEOffset",
	TimeSignature:     "TimeSignature",
	KeySignature:      "KeySignature",
	SequencerSpecific: "SequencerSpecific",
}

func (m MetaType) String() string {
	if n, ok := metaNames[m]; ok {
		return n
	}
	return fmt.Sprintf("meta(%#x)", uint8(m))
}

// Event is one timestamped track event. Kind selects which of Voice, System
// and Meta applies. Voice events carry Channel, Value1 and Value2 (the raw
// data bytes). Meta and system exclusive events carry their payload in
// Data; Tempo additionally has Value1 set to microseconds per quarter note,
// TimeSignature has Value1 = numerator and Value2 = denominator exponent,
// and KeySignature has Value1 = sharps (negative for flats) and Value2 = 1
// for minor keys.
type Event struct {
	Time    int // absolute ticks
	Kind    Kind
	Voice   VoiceType
	System  SystemType
	Meta    MetaType
	Channel uint8
	Value1  int
	Value2  int
	Data    []byte
}

// IsNoteOn reports whether e starts a note. A NoteOn with velocity 0 is a
// NoteOff.
func (e Event) IsNoteOn() bool {
	return e.Kind == KindVoice && e.Voice == NoteOn && e.Value2 > 0
}

// IsNoteOff reports whether e ends a note.
func (e Event) IsNoteOff() bool {
	return e.Kind == KindVoice && (e.Voice == NoteOff || (e.Voice == NoteOn && e.Value2 == 0))
}

// Message returns the wire form of a voice event, or nil for meta and
// system events.
func (e Event) Message() gomidi.Message {
	if e.Kind != KindVoice {
		return nil
	}
	msg := gomidi.Message{byte(e.Voice)<<4 | e.Channel&0x0F, byte(e.Value1)}
	if e.Voice.dataLen() == 2 {
		msg = append(msg, byte(e.Value2))
	}
	return msg
}

func (e Event) String() string {
	switch e.Kind {
	case KindVoice:
		return fmt.Sprintf("@%d %s", e.Time, e.Message().String())
	case KindSystem:
		return fmt.Sprintf("@%d %s len=%d", e.Time, e.System, len(e.Data))
	case KindMeta:
		switch e.Meta {
		case Tempo:
			return fmt.Sprintf("@%d Tempo %dus/qn (%.2f bpm)", e.Time, e.Value1, 60e6/float64(e.Value1))
		case TimeSignature:
			return fmt.Sprintf("@%d TimeSignature %d/%d", e.Time, e.Value1, 1<<e.Value2)
		case Text, Copyright, TrackName, InstrumentName, Lyric, Marker, CuePoint:
			return fmt.Sprintf("@%d %s %q", e.Time, e.Meta, e.Data)
		}
		return fmt.Sprintf("@%d %s len=%d", e.Time, e.Meta, len(e.Data))
	}
	return fmt.Sprintf("@%d %s", e.Time, e.Kind)
}

// TimeDivision is the header's time unit: either ticks per quarter note or,
// for SMPTE timing, frames per second and ticks per frame.
type TimeDivision struct {
	TicksPerQuarter int
	FramesPerSecond int // 24, 25, 29 (drop-frame 29.97) or 30; zero for metrical timing
	TicksPerFrame   int
}

func (d TimeDivision) IsSMPTE() bool { return d.FramesPerSecond != 0 }

// ticksPerSecond is only meaningful for SMPTE divisions.
func (d TimeDivision) ticksPerSecond() float64 {
	fps := float64(d.FramesPerSecond)
	if d.FramesPerSecond == 29 {
		fps = 29.97
	}
	return fps * float64(d.TicksPerFrame)
}

func (d TimeDivision) String() string {
	if d.IsSMPTE() {
		return fmt.Sprintf("smpte %dfps x %d", d.FramesPerSecond, d.TicksPerFrame)
	}
	return fmt.Sprintf("%d ticks/qn", d.TicksPerQuarter)
}

// Track is one MTrk chunk. Its last event is always EndOfTrack.
type Track struct {
	Events  []Event
	MaxTime int
}

// Song is a parsed Standard MIDI File.
type Song struct {
	Format   int
	Division TimeDivision
	Tracks   []Track
	// BPM is the tempo of the first Tempo event found (tracks in order),
	// or 120 when the file has none.
	BPM     float64
	MaxTime int
}

// DefaultBPM is assumed until a Tempo event says otherwise.
const DefaultBPM = 120

const defaultTempo = 500000 // microseconds per quarter note at 120 bpm
