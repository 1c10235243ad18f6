// Package music converts between note numbers and equal-tempered
// frequencies.
package music

import "math"

// A4 is the conventional reference pitch in Hz.
const A4 = 440.0

// MIDI note number of A4.
const midiA4 = 69

// Note returns the frequency of the note semitones above (or below, if
// negative) A in the given octave, where octave 4 holds the reference pitch.
func Note(reference float64, semitones, octave int) float64 {
	return reference * math.Pow(2, float64(semitones+12*(octave-4))/12)
}

// NoteMIDI returns the frequency of a MIDI note number relative to the
// reference pitch of note 69.
func NoteMIDI(reference float64, note int) float64 {
	return reference * math.Pow(2, float64(note-midiA4)/12)
}
