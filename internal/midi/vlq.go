package midi

import "github.com/pkg/errors"

const maxVLQBytes = 4

var (
	errVLQTooLong   = errors.New("variable-length quantity longer than 4 bytes")
	errVLQTruncated = errors.New("variable-length quantity truncated")
)

// decodeVLQ decodes a variable-length quantity from the start of b and
// returns the value and the number of bytes consumed.
func decodeVLQ(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < maxVLQBytes; i++ {
		if i >= len(b) {
			return 0, i, errVLQTruncated
		}
		v = v<<7 | uint32(b[i]&0x7F)
		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, maxVLQBytes, errVLQTooLong
}
