package harness

import (
	"go.uber.org/zap"

	"github.com/sarchlab/marcopolo/responder"
	"github.com/sarchlab/marcopolo/uart"
)

// Signal selects one responder output.
type Signal uint8

// Observable outputs.
const (
	SignalTX Signal = iota
	SignalOversampleTick
	SignalBaudTick
	SignalTrigger
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case SignalTX:
		return "tx"
	case SignalOversampleTick:
		return "oversample_tick"
	case SignalBaudTick:
		return "baud_tick"
	case SignalTrigger:
		return "trigger"
	default:
		return "unknown"
	}
}

// Level returns the level of s in out.
func (s Signal) Level(out responder.Outputs) bool {
	switch s {
	case SignalTX:
		return out.TX
	case SignalOversampleTick:
		return out.OversampleTick
	case SignalBaudTick:
		return out.BaudTick
	case SignalTrigger:
		return out.Trigger
	default:
		return false
	}
}

// PulseCounter counts rising edges of one output.
type PulseCounter struct {
	signal Signal
	prev   bool
	count  uint64
	first  uint64
	last   uint64
}

// NewPulseCounter creates a counter for signal.
func NewPulseCounter(signal Signal) *PulseCounter {
	return &PulseCounter{signal: signal}
}

// Observe implements Probe.
func (c *PulseCounter) Observe(cycle uint64, out responder.Outputs) {
	level := c.signal.Level(out)
	if level && !c.prev {
		c.count++
		if c.count == 1 {
			c.first = cycle
		}
		c.last = cycle
	}
	c.prev = level
}

// Count returns the number of rising edges seen.
func (c *PulseCounter) Count() uint64 { return c.count }

// First returns the cycle of the first rising edge, or 0 if none.
func (c *PulseCounter) First() uint64 { return c.first }

// Last returns the cycle of the latest rising edge, or 0 if none.
func (c *PulseCounter) Last() uint64 { return c.last }

// LineMonitor receives UART frames from the transmit line the way a
// logic-analyser script would: on a low level it records the start bit,
// waits a fixed offset, then samples every bit period.
type LineMonitor struct {
	bitCycles uint64
	offset    uint64
	expected  int
	logger    *zap.Logger

	bits       []bool
	inFrame    bool
	frameStart uint64
	nextSample uint64
	sampled    int
}

// NewLineMonitor creates a monitor that stops after expected bits.
func NewLineMonitor(config *Config, expected int, logger *zap.Logger) *LineMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineMonitor{
		bitCycles: config.BitCycles,
		offset:    config.MonitorOffset,
		expected:  expected,
		logger:    logger,
	}
}

// Observe implements Probe.
func (m *LineMonitor) Observe(cycle uint64, out responder.Outputs) {
	if m.Done() {
		return
	}

	if !m.inFrame {
		if out.TX {
			return
		}
		m.inFrame = true
		m.frameStart = cycle
		m.sampled = 0
		m.nextSample = cycle + m.offset + m.bitCycles
		m.bits = append(m.bits, false)
		m.logger.Debug("start bit", zap.Int("bit", len(m.bits)-1), zap.Uint64("cycle", cycle))
		return
	}

	if cycle != m.nextSample {
		return
	}

	m.bits = append(m.bits, out.TX)
	m.sampled++
	m.nextSample += m.bitCycles
	if m.sampled == uart.FrameBits-1 {
		m.inFrame = false
		m.logger.Debug("stop bit",
			zap.Int("bit", len(m.bits)-1),
			zap.Bool("level", out.TX),
			zap.Uint64("frame_cycles", cycle-m.frameStart))
	}
}

// Done reports whether the expected number of bits has been collected.
func (m *LineMonitor) Done() bool {
	return len(m.bits) >= m.expected
}

// Bits returns the collected line samples.
func (m *LineMonitor) Bits() []bool {
	return m.bits
}

// Bytes decodes the collected samples into frames.
func (m *LineMonitor) Bytes() ([]byte, error) {
	return uart.DecodeFrames(m.bits)
}
