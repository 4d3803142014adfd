package responder

import (
	"go.uber.org/zap"
)

// Statistics holds event counts since the last reset.
type Statistics struct {
	// Cycles is the number of enabled clock edges out of reset.
	Cycles uint64
	// OversampleTicks is the number of oversample pulses.
	OversampleTicks uint64
	// BaudTicks is the number of baud pulses.
	BaudTicks uint64
	// BytesReceived is the number of correctly framed bytes.
	BytesReceived uint64
	// Glitches is the number of rejected start bits.
	Glitches uint64
	// FramingErrors is the number of bytes discarded for a low stop bit.
	FramingErrors uint64
	// Triggers is the number of command matches.
	Triggers uint64
	// TriggersDropped is the number of matches ignored while replying.
	TriggersDropped uint64
	// Replies is the number of completed replies.
	Replies uint64
}

// Option is a functional option for configuring the Responder.
type Option func(*Responder)

// WithLogger sets the logger used for per-event debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Responder) {
		r.logger = logger
	}
}

// WithState starts the responder from s instead of the reset state.
func WithState(s State) Option {
	return func(r *Responder) {
		r.state = s
	}
}

// Responder is a cycle-accurate model of the MARCO/POLO responder.
type Responder struct {
	state  State
	stats  Statistics
	logger *zap.Logger
}

// New creates a responder in its reset state.
func New(opts ...Option) *Responder {
	r := &Responder{
		state:  NewState(),
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Tick advances the responder by one clock edge and returns the outputs
// registered on that edge.
func (r *Responder) Tick(in Inputs) Outputs {
	prev := r.state
	r.state = prev.Next(in)

	if !in.ResetN {
		r.stats = Statistics{}
		return r.state.Outputs()
	}
	if !in.Enable {
		return r.state.Outputs()
	}

	r.record(prev)
	return r.state.Outputs()
}

func (r *Responder) record(prev State) {
	s := r.state
	r.stats.Cycles++

	if s.Oversample.Pulse() {
		r.stats.OversampleTicks++
	}
	if s.Baud.Pulse() {
		r.stats.BaudTicks++
	}
	if s.RX.Valid() {
		r.stats.BytesReceived++
		r.logger.Debug("byte received",
			zap.Uint64("cycle", r.stats.Cycles),
			zap.Uint8("data", s.RX.Data()))
	}
	if s.RX.Glitch() {
		r.stats.Glitches++
		r.logger.Debug("start bit rejected", zap.Uint64("cycle", r.stats.Cycles))
	}
	if s.RX.FramingError() {
		r.stats.FramingErrors++
		r.logger.Debug("framing error", zap.Uint64("cycle", r.stats.Cycles))
	}
	if s.Match.Triggered() {
		r.stats.Triggers++
		r.logger.Debug("command matched", zap.Uint64("cycle", r.stats.Cycles))
	}
	if prev.TriggerDropped() {
		r.stats.TriggersDropped++
		r.logger.Debug("trigger dropped, reply in progress",
			zap.Uint64("cycle", r.stats.Cycles),
			zap.Int("byte_index", prev.TX.ByteIndex()))
	}
	if s.TX.Done() {
		r.stats.Replies++
		r.logger.Debug("reply sent", zap.Uint64("cycle", r.stats.Cycles))
	}
}

// RunCycles applies in for the given number of cycles and returns the
// outputs of the last one.
func (r *Responder) RunCycles(cycles uint64, in Inputs) Outputs {
	out := r.state.Outputs()
	for i := uint64(0); i < cycles; i++ {
		out = r.Tick(in)
	}
	return out
}

// Reset forces the reset state, as if reset were held for one edge.
func (r *Responder) Reset() {
	r.state = NewState()
	r.stats = Statistics{}
}

// State returns a copy of the current registers.
func (r *Responder) State() State {
	return r.state
}

// Outputs returns the outputs registered on the last edge.
func (r *Responder) Outputs() Outputs {
	return r.state.Outputs()
}

// Stats returns event counts since the last reset.
func (r *Responder) Stats() Statistics {
	return r.stats
}
