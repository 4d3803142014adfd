// Package harness provides the verification bench for the responder: a
// line driver, probes that watch the outputs, and the acceptance
// scenarios.
package harness

import (
	"context"

	"go.uber.org/zap"

	"github.com/sarchlab/marcopolo/responder"
	"github.com/sarchlab/marcopolo/uart"
)

// ctxCheckInterval is how many cycles pass between context checks.
const ctxCheckInterval = 4096

// Probe observes the responder outputs after every clock edge.
type Probe interface {
	Observe(cycle uint64, out responder.Outputs)
}

// Bench drives one responder instance. It is not safe for concurrent use.
type Bench struct {
	ctx    context.Context
	config *Config
	logger *zap.Logger

	dut    *responder.Responder
	in     responder.Inputs
	out    responder.Outputs
	cycle  uint64
	probes []Probe
}

// NewBench creates a bench around a fresh responder. The bench holds
// reset low until Reset is called.
func NewBench(ctx context.Context, config *Config, logger *zap.Logger) *Bench {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bench{
		ctx:    ctx,
		config: config,
		logger: logger,
		dut:    responder.New(responder.WithLogger(logger)),
		in:     responder.Inputs{ResetN: false, Enable: true, RX: true},
	}
}

// AddProbe registers p to observe every following cycle.
func (b *Bench) AddProbe(p Probe) {
	b.probes = append(b.probes, p)
}

// SetRX sets the level driven on the receive line.
func (b *Bench) SetRX(level bool) {
	b.in.RX = level
}

// SetEnable sets the enable pin.
func (b *Bench) SetEnable(enable bool) {
	b.in.Enable = enable
}

// Clock advances the responder by the given number of cycles with the
// current inputs.
func (b *Bench) Clock(cycles uint64) error {
	for i := uint64(0); i < cycles; i++ {
		if b.cycle%ctxCheckInterval == 0 {
			if err := b.ctx.Err(); err != nil {
				return err
			}
		}
		b.out = b.dut.Tick(b.in)
		b.cycle++
		for _, p := range b.probes {
			p.Observe(b.cycle, b.out)
		}
	}
	return nil
}

// ClockUntil advances until done returns true or limit cycles pass.
// It reports whether done became true.
func (b *Bench) ClockUntil(limit uint64, done func() bool) (bool, error) {
	for i := uint64(0); i < limit; i++ {
		if done() {
			return true, nil
		}
		if err := b.Clock(1); err != nil {
			return false, err
		}
	}
	return done(), nil
}

// Reset holds reset low for the configured number of cycles, then
// releases it.
func (b *Bench) Reset() error {
	b.in.ResetN = false
	if err := b.Clock(b.config.ResetCycles); err != nil {
		return err
	}
	b.in.ResetN = true
	b.logger.Info("reset released", zap.Float64("time_ns", b.Timestamp()))
	return nil
}

// SendByte drives one UART frame followed by the configured idle gap.
func (b *Bench) SendByte(data byte) error {
	for _, level := range uart.Encode(data) {
		b.in.RX = level
		if err := b.Clock(b.config.BitCycles); err != nil {
			return err
		}
	}

	b.in.RX = true
	if err := b.Clock(b.config.BitCycles * b.config.GapBits); err != nil {
		return err
	}

	b.logger.Debug("sent byte",
		zap.String("char", string(rune(data))),
		zap.Float64("time_ns", b.Timestamp()))
	return nil
}

// SendBytes sends every byte of data.
func (b *Bench) SendBytes(data []byte) error {
	for _, d := range data {
		if err := b.SendByte(d); err != nil {
			return err
		}
	}
	return nil
}

// Cycle returns the number of cycles clocked so far.
func (b *Bench) Cycle() uint64 {
	return b.cycle
}

// Timestamp returns the simulated time in nanoseconds.
func (b *Bench) Timestamp() float64 {
	return float64(b.cycle) * 1e9 / float64(b.config.ClockFreq())
}

// Outputs returns the outputs of the last cycle.
func (b *Bench) Outputs() responder.Outputs {
	return b.out
}

// Stats returns the responder statistics.
func (b *Bench) Stats() responder.Statistics {
	return b.dut.Stats()
}
