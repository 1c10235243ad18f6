package wavesynth

import (
	"math"
	"testing"

	intaudio "github.com/cbegin/wavesynth-go/internal/audio"
	intfx "github.com/cbegin/wavesynth-go/internal/effects"
)

func TestPlayerMasterVolumeRuntimeAPI(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if got := pl.MasterVolume(); got != 1 {
		t.Fatalf("default master volume = %v, want 1", got)
	}
	pl.SetMasterVolume(0.35)
	if got := pl.MasterVolume(); got != 0.35 {
		t.Fatalf("master volume = %v, want 0.35", got)
	}
	pl.SetMasterVolume(-2)
	if got := pl.MasterVolume(); got != 0 {
		t.Fatalf("master volume should clamp to 0, got %v", got)
	}
}

func TestPlayerEQBandRuntimeAPI(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if got := pl.EQBand(3); got != 1 {
		t.Fatalf("default band gain = %v, want 1", got)
	}
	pl.SetEQBand(3, 0.5)
	if got := pl.EQBand(3); got != 0.5 {
		t.Fatalf("band gain = %v, want 0.5", got)
	}
	if pl.IsPlaying() {
		t.Fatal("idle player reports playing")
	}
	if got := pl.PlaybackPosition(); got != 0 {
		t.Fatalf("idle position = %d, want 0", got)
	}
	if err := pl.Stop(); err != nil {
		t.Fatalf("stop idle player: %v", err)
	}
	pl.Wait()
}

func TestNewPlayerRejectsBadRate(t *testing.T) {
	if _, err := NewPlayer(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestMasteredSourceAppliesGainAndTap(t *testing.T) {
	buf := intaudio.NewBuffer([]float64{1, 1, 1})
	buf.SetGain(0.5)
	var tapped []float64
	src := &masteredSource{
		buf:       buf,
		masterEQ:  intfx.NewEQ5Band(48000),
		sampleTap: func(s []float64) { tapped = append(tapped, s...) },
	}
	dst := make([]float64, 4)
	if n := src.Process(dst); n != 3 {
		t.Fatalf("processed %d samples, want 3", n)
	}
	for i, v := range dst[:3] {
		if math.Abs(v-0.5) > 1e-12 {
			t.Fatalf("sample %d = %v, want 0.5", i, v)
		}
	}
	if len(tapped) != 3 {
		t.Fatalf("tap saw %d samples, want 3", len(tapped))
	}
}

func TestPlayerWatchChannel(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	ch := pl.Watch()
	pl.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	select {
	case ev := <-ch:
		if ev.Kind != EventPlaybackEnded {
			t.Fatalf("event kind = %d, want %d", ev.Kind, EventPlaybackEnded)
		}
	default:
		t.Fatal("no event delivered")
	}
}

func TestPlayerSourcesForkMasterEQ(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	pl.SetMasterVolume(0.5)
	first := pl.newSource([]float64{1, 1})
	second := pl.newSource([]float64{1, 1})
	if first.masterEQ == pl.masterEQ || first.masterEQ == second.masterEQ {
		t.Fatal("playbacks share master EQ filter state")
	}
	pl.SetEQBand(2, 0.1)
	if got := second.masterEQ.Gain(2); got != 0.1 {
		t.Fatalf("playback band gain = %v, want 0.1", got)
	}
	dst := make([]float64, 2)
	first.Process(dst)
	if dst[0] == 0 || dst[0] > 0.5+1e-12 {
		t.Fatalf("first sample = %v, want volume-scaled output", dst[0])
	}
}
