package sequencer

import (
	"testing"

	"github.com/cbegin/wavesynth-go/internal/midi"
)

func BenchmarkSequencerProcess(b *testing.B) {
	var events []midi.Event
	for i, key := range []int{60, 62, 64, 65, 67, 69, 71, 72} {
		events = append(events, noteOn(i*120, key, 100), noteOff(i*120+240, key))
	}
	events = append(events, endOfTrack(8*120+240))
	sng := song(track(events...))
	buf := make([]float64, 2048)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seq, err := New(sng, 48000, Options{})
		if err != nil {
			b.Fatalf("new: %v", err)
		}
		seq.Process(buf)
	}
}
