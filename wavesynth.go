// Package wavesynth renders audio from waveform generators and Standard MIDI
// Files, shapes it with FIR filters and effects, and writes it as WAV.
//
// A code-driven render evaluates one generator per sample:
//
//	gen, _ := wavesynth.Waveform("sine", 440)
//	s, _ := wavesynth.Render(gen, 1, 44100)
//	samples, _ := wavesynth.Collect(s)
//	_ = wavesynth.WriteWAVFile("sine.wav", samples, 44100, 16)
//
// A MIDI render mixes one generator instance per sounding note:
//
//	seq, err := wavesynth.RenderMIDIFile("song.mid", 44100, false, 440)
package wavesynth
