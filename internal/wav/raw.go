package wav

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/cbegin/wavesynth-go/internal/errs"
)

// WritePCM writes samples as headerless little-endian PCM at bitDepth.
// 8-bit samples are written unsigned, as in a WAVE data chunk; wider
// samples are two's complement.
func WritePCM(w io.Writer, bitDepth int, samples []int) error {
	if err := checkFormat(1, bitDepth, 1, len(samples)); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	var err error
	switch bitDepth {
	case 8:
		data := make([]uint8, len(samples))
		for i, s := range samples {
			data[i] = uint8(s + 128)
		}
		err = binary.Write(bw, binary.LittleEndian, data)
	case 16:
		data := make([]int16, len(samples))
		for i, s := range samples {
			data[i] = int16(s)
		}
		err = binary.Write(bw, binary.LittleEndian, data)
	case 24:
		var frame [3]byte
		for _, s := range samples {
			frame[0], frame[1], frame[2] = byte(s), byte(s>>8), byte(s>>16)
			if _, err = bw.Write(frame[:]); err != nil {
				break
			}
		}
	case 32:
		data := make([]int32, len(samples))
		for i, s := range samples {
			data[i] = int32(s)
		}
		err = binary.Write(bw, binary.LittleEndian, data)
	}
	if err != nil {
		return errs.IO("write pcm", err)
	}
	return errs.IO("write pcm", bw.Flush())
}
