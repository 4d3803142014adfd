package harness

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/sarchlab/marcopolo/emu"
	"github.com/sarchlab/marcopolo/responder"
	"github.com/sarchlab/marcopolo/uart"
)

// Scenario is one check run against a fresh bench.
type Scenario struct {
	// Name identifies the scenario on the command line.
	Name string

	// Description explains what the scenario checks.
	Description string

	// Run drives the bench and returns a short detail line, or an error if
	// the check failed.
	Run func(b *Bench) (string, error)
}

// Scenarios returns every built-in scenario in run order.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name:        "oversample-tick",
			Description: "oversample divider pulses on uo_out[1]",
			Run: func(b *Bench) (string, error) {
				return checkTicks(b, SignalOversampleTick, b.config.OversampleWindow)
			},
		},
		{
			Name:        "baud-tick",
			Description: "baud divider pulses on uo_out[2]",
			Run: func(b *Bench) (string, error) {
				return checkTicks(b, SignalBaudTick, b.config.BaudWindow)
			},
		},
		{
			Name:        "idle",
			Description: "idle line after reset produces no events",
			Run:         checkIdle,
		},
		{
			Name:        "marco",
			Description: "MARCO on rx is answered with \\n\\rPOLO!\\n\\r on tx",
			Run:         checkMarco,
		},
		{
			Name:        "marcx",
			Description: "MARCX on rx never triggers",
			Run:         checkMarcx,
		},
		{
			Name:        "busy",
			Description: "a second MARCO during the reply is dropped",
			Run:         checkBusy,
		},
	}
}

// ScenarioNames returns the names of the built-in scenarios.
func ScenarioNames() []string {
	all := Scenarios()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return names
}

// LookupScenario finds a built-in scenario by name.
func LookupScenario(name string) (Scenario, bool) {
	for _, s := range Scenarios() {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// checkTicks resets with the receive line held low
// and counts pulses on signal.
func checkTicks(b *Bench, signal Signal, window uint64) (string, error) {
	b.SetRX(false)
	if err := b.Reset(); err != nil {
		return "", err
	}

	counter := NewPulseCounter(signal)
	b.AddProbe(counter)

	start := b.Cycle()
	if _, err := b.ClockUntil(window, func() bool {
		return counter.Count() >= b.config.MinTicks
	}); err != nil {
		return "", err
	}

	if counter.Count() < b.config.MinTicks {
		return "", fmt.Errorf("expected %d %s pulses, got %d",
			b.config.MinTicks, signal, counter.Count())
	}

	b.logger.Info("ticks seen",
		zap.Stringer("signal", signal),
		zap.Uint64("count", counter.Count()),
		zap.Uint64("first_cycle", counter.First()-start),
		zap.Uint64("last_cycle", counter.Last()-start))

	return fmt.Sprintf("%d %s pulses by cycle %d", counter.Count(), signal, counter.Last()-start), nil
}

func checkIdle(b *Bench) (string, error) {
	b.SetRX(true)
	if err := b.Reset(); err != nil {
		return "", err
	}

	low := NewPulseCounter(SignalTX)
	trigger := NewPulseCounter(SignalTrigger)
	b.AddProbe(trigger)
	b.AddProbe(lowWatch{low})

	if err := b.Clock(b.config.IdleBits * b.config.BitCycles); err != nil {
		return "", err
	}

	stats := b.Stats()
	switch {
	case stats.BytesReceived != 0:
		return "", fmt.Errorf("idle line produced %d bytes", stats.BytesReceived)
	case stats.FramingErrors != 0:
		return "", fmt.Errorf("idle line produced %d framing errors", stats.FramingErrors)
	case trigger.Count() != 0:
		return "", fmt.Errorf("idle line produced %d triggers", trigger.Count())
	case low.Count() != 0:
		return "", fmt.Errorf("tx left idle level %d times", low.Count())
	}

	return fmt.Sprintf("quiet for %d cycles", b.Cycle()), nil
}

// lowWatch counts falling edges of a line by inverting it.
type lowWatch struct {
	c *PulseCounter
}

func (w lowWatch) Observe(cycle uint64, out responder.Outputs) {
	out.TX = !out.TX
	w.c.Observe(cycle, out)
}

// startIdle resets with the line high and idles before stimulus.
func startIdle(b *Bench) error {
	b.SetRX(true)
	if err := b.Reset(); err != nil {
		return err
	}
	return b.Clock(b.config.IdleCycles)
}

func replyBits() int {
	return len(responder.Reply) * uart.FrameBits
}

// awaitReply waits for the monitor to collect a full reply and decodes it.
func awaitReply(b *Bench, monitor *LineMonitor) ([]byte, error) {
	limit := uint64(replyBits()+2*uart.FrameBits) * b.config.BitCycles
	ok, err := b.ClockUntil(limit, monitor.Done)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("reply incomplete: %d of %d bits", len(monitor.Bits()), replyBits())
	}

	got, err := monitor.Bytes()
	if err != nil {
		b.logger.Warn("framing errors on tx", zap.Error(err))
	}
	return got, nil
}

func checkMarco(b *Bench) (string, error) {
	if err := startIdle(b); err != nil {
		return "", err
	}

	monitor := NewLineMonitor(b.config, replyBits(), b.logger)
	trigger := NewPulseCounter(SignalTrigger)
	b.AddProbe(monitor)
	b.AddProbe(trigger)

	command := responder.Command[:]
	if err := b.SendBytes(command[:len(command)-1]); err != nil {
		return "", err
	}

	// The last stop bit starts after its start and data bits.
	lastStop := b.Cycle() + uint64(uart.FrameBits-1)*b.config.BitCycles
	if err := b.SendByte(command[len(command)-1]); err != nil {
		return "", err
	}

	if _, err := b.ClockUntil(b.config.TriggerTimeout, func() bool {
		return trigger.Count() > 0
	}); err != nil {
		return "", err
	}
	if trigger.Count() == 0 {
		return "", fmt.Errorf("trigger match never happened")
	}
	if bound := lastStop + b.config.BitCycles*3/2; trigger.First() > bound {
		return "", fmt.Errorf("trigger at cycle %d, later than cycle %d", trigger.First(), bound)
	}
	b.logger.Info("trigger matched",
		zap.Uint64("cycle", trigger.First()),
		zap.Float64("time_ns", float64(trigger.First())*1e9/float64(b.config.ClockFreq())))

	got, err := awaitReply(b, monitor)
	if err != nil {
		return "", err
	}

	want := emu.NewEmulator().Run(command)
	if !bytes.Equal(got, want) {
		return "", fmt.Errorf("expected %q, got %q", want, got)
	}

	return fmt.Sprintf("received %q", got), nil
}

func checkMarcx(b *Bench) (string, error) {
	if err := startIdle(b); err != nil {
		return "", err
	}

	trigger := NewPulseCounter(SignalTrigger)
	baud := NewPulseCounter(SignalBaudTick)
	b.AddProbe(trigger)
	b.AddProbe(baud)

	if err := b.SendBytes([]byte("MARCX")); err != nil {
		return "", err
	}

	if _, err := b.ClockUntil(b.config.NoTriggerBaudTicks*b.config.BitCycles, func() bool {
		return baud.Count() >= b.config.NoTriggerBaudTicks || trigger.Count() > 0
	}); err != nil {
		return "", err
	}

	if trigger.Count() != 0 {
		return "", fmt.Errorf("unexpected trigger at cycle %d", trigger.First())
	}
	if got := b.Stats().BytesReceived; got != 5 {
		return "", fmt.Errorf("expected 5 bytes received, got %d", got)
	}

	return fmt.Sprintf("no trigger in %d baud ticks", baud.Count()), nil
}

func checkBusy(b *Bench) (string, error) {
	if err := startIdle(b); err != nil {
		return "", err
	}

	monitor := NewLineMonitor(b.config, replyBits(), b.logger)
	low := NewPulseCounter(SignalTX)
	b.AddProbe(monitor)
	b.AddProbe(lowWatch{low})

	command := responder.Command[:]
	stimulus := append(bytes.Clone(command), command...)
	if err := b.SendBytes(stimulus); err != nil {
		return "", err
	}

	got, err := awaitReply(b, monitor)
	if err != nil {
		return "", err
	}

	// Watch a little longer for a second reply.
	startsAfterReply := low.Count()
	if err := b.Clock(2 * uint64(uart.FrameBits) * b.config.BitCycles); err != nil {
		return "", err
	}
	if low.Count() != startsAfterReply {
		return "", fmt.Errorf("tx activity after the reply completed")
	}

	want := emu.NewEmulator().FeedAll(stimulus)
	if !bytes.Equal(got, want) {
		return "", fmt.Errorf("expected %q, got %q", want, got)
	}

	stats := b.Stats()
	if stats.Triggers != 2 || stats.TriggersDropped != 1 || stats.Replies != 1 {
		return "", fmt.Errorf("expected 2 triggers, 1 dropped, 1 reply; got %d, %d, %d",
			stats.Triggers, stats.TriggersDropped, stats.Replies)
	}

	return fmt.Sprintf("received %q once, %d trigger dropped", got, stats.TriggersDropped), nil
}
