package uart

// Receiver decodes UART frames from a serial line sampled on oversample
// ticks. The start edge is detected on any clock cycle; every later sample
// is taken once per bit, near mid-bit.
type Receiver struct {
	phase    Phase
	bit      uint8
	samples  uint8
	shift    byte
	prevLine bool

	data         byte
	valid        bool
	framingError bool
	glitch       bool
}

// NewReceiver returns a receiver in its reset state. The previous line
// sample resets high, so a line held low through reset reads as an edge.
func NewReceiver() Receiver {
	return Receiver{prevLine: true}
}

// Step advances the receiver by one clock cycle. line is the input level
// for this cycle; tick is the oversample pulse registered on the previous
// cycle.
func (r Receiver) Step(line, tick bool) Receiver {
	r.valid = false
	r.framingError = false
	r.glitch = false

	switch r.phase {
	case PhaseIdle:
		if r.prevLine && !line {
			r.phase = PhaseStart
			r.samples = 0
			r.shift = 0
		}
	case PhaseStart:
		if tick {
			r.samples++
			if r.samples == HalfBit {
				r.samples = 0
				if line {
					r.glitch = true
					r.phase = PhaseIdle
				} else {
					r.phase = PhaseData
					r.bit = 0
				}
			}
		}
	case PhaseData:
		if tick {
			r.samples++
			if r.samples == SamplesPerBit {
				r.samples = 0
				if line {
					r.shift |= 1 << r.bit
				}
				if r.bit == DataBits-1 {
					r.phase = PhaseStop
				} else {
					r.bit++
				}
			}
		}
	case PhaseStop:
		if tick {
			r.samples++
			if r.samples == SamplesPerBit {
				r.samples = 0
				r.bit = 0
				r.phase = PhaseIdle
				if line {
					r.data = r.shift
					r.valid = true
				} else {
					r.framingError = true
				}
			}
		}
	}

	r.prevLine = line
	return r
}

// Phase returns the current receive phase.
func (r Receiver) Phase() Phase { return r.phase }

// BitIndex returns the data bit being received while in PhaseData.
func (r Receiver) BitIndex() uint8 { return r.bit }

// Data returns the last published byte.
func (r Receiver) Data() byte { return r.data }

// Valid reports whether a byte was published on the last edge.
func (r Receiver) Valid() bool { return r.valid }

// FramingError reports whether the last edge sampled a low stop bit.
func (r Receiver) FramingError() bool { return r.framingError }

// Glitch reports whether the last edge rejected a start bit that did not
// persist to mid-bit.
func (r Receiver) Glitch() bool { return r.glitch }
