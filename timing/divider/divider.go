// Package divider provides the free-running tick dividers that derive the
// oversample and baud rates from the reference clock.
package divider

import "fmt"

const (
	// OversampleDivisor is the number of reference clock cycles between
	// oversample ticks (50 MHz / 651 ≈ 76.8 kHz).
	OversampleDivisor uint32 = 651

	// OversampleRate is the number of oversample ticks per UART bit.
	OversampleRate uint32 = 8

	// BaudDivisor is the number of reference clock cycles in one UART bit
	// period (≈9600 baud at 50 MHz).
	BaudDivisor = OversampleDivisor * OversampleRate
)

// Divider is a counter that emits a one-cycle pulse every Divisor cycles.
// It is a value type; Step returns the register contents after the next
// clock edge.
type Divider struct {
	divisor uint32
	count   uint32
	pulse   bool
}

// New creates a divider in its reset state. The divisor must be at least 2,
// since a pulse needs one cycle to clear the counter.
func New(divisor uint32) Divider {
	if divisor < 2 {
		panic(fmt.Sprintf("divider: divisor must be >= 2, got %d", divisor))
	}
	return Divider{divisor: divisor}
}

// NewOversample creates the receive-side oversample divider.
func NewOversample() Divider {
	return New(OversampleDivisor)
}

// NewBaud creates the bit-period divider used by the transmitter.
func NewBaud() Divider {
	return New(BaudDivisor)
}

// Step advances the divider by one clock cycle.
func (d Divider) Step() Divider {
	if d.count == d.divisor-1 {
		d.count = 0
		d.pulse = true
		return d
	}
	d.count++
	d.pulse = false
	return d
}

// Reset returns the divider with its counter cleared and no pulse.
func (d Divider) Reset() Divider {
	d.count = 0
	d.pulse = false
	return d
}

// Pulse reports whether the divider emitted a tick on the last edge.
func (d Divider) Pulse() bool { return d.pulse }

// Count returns the current counter value, in [0, Divisor-1].
func (d Divider) Count() uint32 { return d.count }

// Divisor returns the configured divisor.
func (d Divider) Divisor() uint32 { return d.divisor }
