package uart

// Transmitter serializes a reply buffer onto the output line, one bit per
// baud tick. Every bit, including the first start bit, spans exactly one
// baud period: an accepted request arms the transmitter and the start bit
// begins on the next baud tick.
type Transmitter struct {
	phase Phase
	bit   uint8
	index int
	line  bool
	done  bool
}

// NewTransmitter returns an idle transmitter driving the line high.
func NewTransmitter() Transmitter {
	return Transmitter{line: true}
}

// Step advances the transmitter by one clock cycle. accept requests a new
// reply and is ignored unless the transmitter is idle. tick is the baud
// pulse registered on the previous cycle. reply is read, never written.
func (t Transmitter) Step(accept, tick bool, reply []byte) Transmitter {
	t.done = false

	switch t.phase {
	case PhaseIdle:
		t.line = true
		if accept && len(reply) > 0 {
			t.phase = PhaseArmed
			t.index = 0
		}
	case PhaseArmed:
		if tick {
			t.phase = PhaseStart
			t.line = false
		}
	case PhaseStart:
		if tick {
			t.phase = PhaseData
			t.bit = 0
			t.line = reply[t.index]&1 == 1
		}
	case PhaseData:
		if tick {
			if t.bit == DataBits-1 {
				t.phase = PhaseStop
				t.line = true
			} else {
				t.bit++
				t.line = (reply[t.index]>>t.bit)&1 == 1
			}
		}
	case PhaseStop:
		if tick {
			t.line = true
			if t.index+1 < len(reply) {
				t.index++
				t.phase = PhaseStart
				t.line = false
			} else {
				t.index = 0
				t.phase = PhaseIdle
				t.done = true
			}
		}
	}

	return t
}

// Phase returns the current transmit phase.
func (t Transmitter) Phase() Phase { return t.phase }

// Idle reports whether the transmitter can accept a new reply.
func (t Transmitter) Idle() bool { return t.phase == PhaseIdle }

// Active reports whether the transmitter owns the output line.
func (t Transmitter) Active() bool { return t.phase != PhaseIdle }

// Line returns the level the transmitter drives.
func (t Transmitter) Line() bool { return t.line }

// ByteIndex returns the index into the reply buffer of the byte in flight.
func (t Transmitter) ByteIndex() int { return t.index }

// BitIndex returns the data bit on the line while in PhaseData.
func (t Transmitter) BitIndex() uint8 { return t.bit }

// Done reports whether the final stop bit completed on the last edge.
func (t Transmitter) Done() bool { return t.done }
