package music

import (
	"math"
	"testing"
)

func TestNoteMIDI(t *testing.T) {
	tests := []struct {
		note int
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6255653005986},
	}
	for _, tt := range tests {
		if got := NoteMIDI(A4, tt.note); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NoteMIDI(%d) = %v, want %v", tt.note, got, tt.want)
		}
	}
}

func TestNoteOctaves(t *testing.T) {
	if got := Note(A4, 0, 5); math.Abs(got-880) > 1e-9 {
		t.Errorf("A5 = %v, want 880", got)
	}
	if got := Note(A4, 3, 4); math.Abs(got-NoteMIDI(A4, 72)) > 1e-9 {
		t.Errorf("C5 = %v, want %v", got, NoteMIDI(A4, 72))
	}
}
