package uart

import (
	"errors"
	"fmt"
)

// FrameError describes a frame whose start or stop bit had the wrong level.
type FrameError struct {
	Index int
	Start bool
	Stop  bool
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d framing error: start=%d, stop=%d",
		e.Index, bitValue(e.Start), bitValue(e.Stop))
}

func bitValue(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Encode returns the line levels of one frame carrying b.
func Encode(b byte) []bool {
	bits := make([]bool, 0, FrameBits)
	bits = append(bits, false)
	for i := 0; i < DataBits; i++ {
		bits = append(bits, (b>>i)&1 == 1)
	}
	return append(bits, true)
}

// EncodeAll returns the frames for bs back to back.
func EncodeAll(bs []byte) []bool {
	bits := make([]bool, 0, len(bs)*FrameBits)
	for _, b := range bs {
		bits = append(bits, Encode(b)...)
	}
	return bits
}

// DecodeFrames splits bits into consecutive frames and returns the data of
// every well-formed frame. A trailing partial frame is ignored. Malformed
// frames are skipped and reported as *FrameError values joined into err.
func DecodeFrames(bits []bool) ([]byte, error) {
	var (
		out  []byte
		errs []error
	)

	for i := 0; i+FrameBits <= len(bits); i += FrameBits {
		frame := bits[i : i+FrameBits]
		start, stop := frame[0], frame[FrameBits-1]
		if start || !stop {
			errs = append(errs, &FrameError{Index: i / FrameBits, Start: start, Stop: stop})
			continue
		}

		var b byte
		for j := 0; j < DataBits; j++ {
			if frame[1+j] {
				b |= 1 << j
			}
		}
		out = append(out, b)
	}

	return out, errors.Join(errs...)
}
