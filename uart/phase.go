// Package uart provides the receive and transmit framers of the responder.
//
// Both framers are value types advanced once per clock edge. Frames are
// 1 start bit (low), 8 data bits least-significant first, 1 stop bit (high),
// no parity.
package uart

// Phase is the state of a framer's bit-level state machine.
type Phase uint8

// Framer phases. PhaseArmed is only used by the transmitter.
const (
	PhaseIdle Phase = iota
	PhaseStart
	PhaseData
	PhaseStop
	PhaseArmed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStart:
		return "start"
	case PhaseData:
		return "data"
	case PhaseStop:
		return "stop"
	case PhaseArmed:
		return "armed"
	default:
		return "unknown"
	}
}

const (
	// DataBits is the number of data bits per frame.
	DataBits = 8

	// FrameBits is the total number of bits per frame.
	FrameBits = DataBits + 2

	// SamplesPerBit is the number of oversample ticks per bit period.
	SamplesPerBit = 8

	// HalfBit is the number of oversample ticks from the start edge to the
	// start-bit sample point.
	HalfBit = SamplesPerBit / 2
)
