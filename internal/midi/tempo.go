package midi

import (
	"math"
	"slices"
	"sort"
)

type tempoSegment struct {
	tick    int
	tempo   int     // microseconds per quarter note
	seconds float64 // elapsed time at tick
}

// TempoMap converts ticks to wall-clock time. Tempo events from every track
// are merged into one global map; before the first one 120 bpm applies.
// SMPTE divisions have a fixed tick duration and ignore tempo events.
type TempoMap struct {
	division TimeDivision
	segments []tempoSegment
}

func NewTempoMap(song *Song) *TempoMap {
	m := &TempoMap{
		division: song.Division,
		segments: []tempoSegment{{tempo: defaultTempo}},
	}
	if song.Division.IsSMPTE() {
		return m
	}
	var changes []Event
	for _, t := range song.Tracks {
		for _, e := range t.Events {
			if e.Kind == KindMeta && e.Meta == Tempo {
				changes = append(changes, e)
			}
		}
	}
	slices.SortStableFunc(changes, func(a, b Event) int { return a.Time - b.Time })
	for _, e := range changes {
		last := &m.segments[len(m.segments)-1]
		if e.Time == last.tick {
			last.tempo = e.Value1
			continue
		}
		m.segments = append(m.segments, tempoSegment{
			tick:    e.Time,
			tempo:   e.Value1,
			seconds: last.seconds + m.span(e.Time-last.tick, last.tempo),
		})
	}
	return m
}

func (m *TempoMap) span(ticks, tempo int) float64 {
	return float64(ticks) * float64(tempo) / 1e6 / float64(m.division.TicksPerQuarter)
}

func (m *TempoMap) segment(tick int) tempoSegment {
	i := sort.Search(len(m.segments), func(i int) bool { return m.segments[i].tick > tick })
	if i == 0 {
		return m.segments[0]
	}
	return m.segments[i-1]
}

// Seconds returns the time of tick since the start of the song.
func (m *TempoMap) Seconds(tick int) float64 {
	if m.division.IsSMPTE() {
		return float64(tick) / m.division.ticksPerSecond()
	}
	s := m.segment(tick)
	return s.seconds + m.span(tick-s.tick, s.tempo)
}

// SampleIndex returns the sample offset of tick at sampleRate, rounded to
// the nearest sample.
func (m *TempoMap) SampleIndex(tick, sampleRate int) int {
	return int(math.Round(m.Seconds(tick) * float64(sampleRate)))
}

// BPMAt returns the tempo in effect at tick.
func (m *TempoMap) BPMAt(tick int) float64 {
	if m.division.IsSMPTE() {
		return DefaultBPM
	}
	return 60e6 / float64(m.segment(tick).tempo)
}
