// Package responder provides the MARCO/POLO controller: it wires the tick
// dividers, receiver, matcher and transmitter into one synchronous state
// record advanced once per clock edge.
package responder

import (
	"github.com/sarchlab/marcopolo/timing/divider"
	"github.com/sarchlab/marcopolo/uart"
)

// State holds every register of the responder. The zero value is not
// usable; NewState returns the reset value.
type State struct {
	Oversample divider.Divider
	Baud       divider.Divider
	RX         uart.Receiver
	Match      Matcher
	TX         uart.Transmitter
}

// NewState returns the state forced by reset: counters cleared, every phase
// machine idle, the command window empty.
func NewState() State {
	return State{
		Oversample: divider.NewOversample(),
		Baud:       divider.NewBaud(),
		RX:         uart.NewReceiver(),
		Match:      Matcher{},
		TX:         uart.NewTransmitter(),
	}
}

// Next returns the state after one clock edge with inputs in.
//
// Every component reads s, the previous edge's registers, and the results
// commit together, so each stage sees its upstream one cycle late.
func (s State) Next(in Inputs) State {
	if !in.ResetN {
		return NewState()
	}
	if !in.Enable {
		return s
	}

	return State{
		Oversample: s.Oversample.Step(),
		Baud:       s.Baud.Step(),
		RX:         s.RX.Step(in.RX, s.Oversample.Pulse()),
		Match:      s.Match.Step(s.RX.Valid(), s.RX.Data()),
		TX:         s.TX.Step(s.acceptsTrigger(), s.Baud.Pulse(), Reply),
	}
}

// acceptsTrigger gates the matcher's trigger: a command recognized while
// a reply is in progress is dropped.
func (s State) acceptsTrigger() bool {
	return s.Match.Triggered() && s.TX.Idle()
}

// TriggerDropped reports whether the trigger registered in s is being
// ignored because the transmitter is busy.
func (s State) TriggerDropped() bool {
	return s.Match.Triggered() && !s.TX.Idle()
}

// Outputs returns the boundary outputs registered in s.
func (s State) Outputs() Outputs {
	return Outputs{
		TX:             s.txLine(),
		OversampleTick: s.Oversample.Pulse(),
		BaudTick:       s.Baud.Pulse(),
		Trigger:        s.Match.Triggered(),
	}
}

// txLine multiplexes the output line: the transmitter drives it while
// active, otherwise it idles high.
func (s State) txLine() bool {
	if s.TX.Active() {
		return s.TX.Line()
	}
	return true
}
