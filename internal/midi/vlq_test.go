package midi

import (
	"bytes"
	"testing"
)

func TestDecodeVLQ(t *testing.T) {
	tests := []struct {
		in   []byte
		want uint32
		n    int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x40}, 0x40, 1},
		{[]byte{0x7F, 0x80}, 0x7F, 1},
		{[]byte{0x81, 0x00}, 0x80, 2},
		{[]byte{0xC0, 0x00}, 0x2000, 2},
		{[]byte{0xFF, 0x7F}, 0x3FFF, 2},
		{[]byte{0x81, 0x80, 0x00}, 0x4000, 3},
		{[]byte{0xFF, 0xFF, 0xFF, 0x7F}, 0x0FFFFFFF, 4},
	}
	for _, tt := range tests {
		got, n, err := decodeVLQ(tt.in)
		if err != nil {
			t.Fatalf("decode % X: %v", tt.in, err)
		}
		if got != tt.want || n != tt.n {
			t.Errorf("decode % X = %#x (%d bytes), want %#x (%d bytes)", tt.in, got, n, tt.want, tt.n)
		}
		if enc := appendVLQ(nil, tt.want); !bytes.Equal(enc, tt.in[:tt.n]) {
			t.Errorf("encode %#x = % X, want % X", tt.want, enc, tt.in[:tt.n])
		}
	}
}

func TestDecodeVLQErrors(t *testing.T) {
	if _, _, err := decodeVLQ([]byte{0x81}); err != errVLQTruncated {
		t.Errorf("truncated: got %v", err)
	}
	if _, _, err := decodeVLQ(nil); err != errVLQTruncated {
		t.Errorf("empty: got %v", err)
	}
	if _, _, err := decodeVLQ([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F}); err != errVLQTooLong {
		t.Errorf("too long: got %v", err)
	}
}

// appendVLQ appends the variable-length encoding of v, which must fit in
// 28 bits.
func appendVLQ(dst []byte, v uint32) []byte {
	var tmp [maxVLQBytes]byte
	n := len(tmp) - 1
	tmp[n] = byte(v & 0x7F)
	for v >>= 7; v > 0 && n > 0; v >>= 7 {
		n--
		tmp[n] = byte(v&0x7F) | 0x80
	}
	return append(dst, tmp[n:]...)
}
