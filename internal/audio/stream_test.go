package audio

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
)

func TestStreamReaderDuplicatesMonoToStereo(t *testing.T) {
	var ended bool
	r := NewStreamReader(NewBuffer([]float64{0.5, -0.25, 2}), func() { ended = true })
	p := make([]byte, 4*8)
	n, err := r.Read(p)
	if err != io.EOF {
		t.Fatalf("err = %v, want EOF", err)
	}
	if n != 3*8 {
		t.Fatalf("n = %d, want 24", n)
	}
	want := []float32{0.5, 0.5, -0.25, -0.25, 1, 1}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if got != w {
			t.Fatalf("value %d = %v, want %v", i, got, w)
		}
	}
	if !ended {
		t.Fatal("onEOF not called")
	}
	if n, err := r.Read(p); n != 0 || err != io.EOF {
		t.Fatalf("read after end = %d, %v", n, err)
	}
}

func TestBufferGainAndRemaining(t *testing.T) {
	b := NewBuffer([]float64{1, 1, 1, 1})
	dst := make([]float64, 2)
	b.Process(dst)
	b.SetGain(0.5)
	if b.Remaining() != 2 {
		t.Fatalf("remaining = %d, want 2", b.Remaining())
	}
	if n := b.Process(dst); n != 2 || dst[0] != 0.5 {
		t.Fatalf("n = %d dst = %v", n, dst)
	}
	if n := b.Process(dst); n != 0 {
		t.Fatalf("exhausted buffer returned %d", n)
	}
}
