// Package emu provides functional, untimed emulation of the responder.
//
// The emulator works on whole bytes: it has no dividers or framers, only
// the command window and the drop-while-busy policy. It serves as the
// reference the cycle-accurate model is checked against.
package emu

import (
	"bytes"
	"io"

	"github.com/sarchlab/marcopolo/responder"
)

// FeedResult is the outcome of feeding one byte.
type FeedResult struct {
	// Matched is true if the byte completed the command.
	Matched bool

	// Dropped is true if the command matched while a reply was pending.
	Dropped bool

	// Reply holds the bytes transmitted in response, if any.
	Reply []byte
}

// Emulator is a byte-level model of the responder.
type Emulator struct {
	window []byte
	busy   bool
	out    io.Writer

	bytesFed uint64
	replies  uint64
	dropped  uint64
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithOutput sets the writer that receives reply bytes.
func WithOutput(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.out = w
	}
}

// WithBusy starts the emulator with a reply already in progress.
func WithBusy() EmulatorOption {
	return func(e *Emulator) {
		e.busy = true
	}
}

// NewEmulator creates an idle emulator with an empty command window.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		window: make([]byte, 0, responder.CommandLen),
		out:    io.Discard,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Feed processes one received byte. A match while idle starts a reply,
// which stays pending until Complete is called.
func (e *Emulator) Feed(b byte) FeedResult {
	e.bytesFed++

	if len(e.window) == responder.CommandLen {
		e.window = append(e.window[:0], e.window[1:]...)
	}
	e.window = append(e.window, b)

	if !bytes.Equal(e.window, responder.Command[:]) {
		return FeedResult{}
	}
	e.window = e.window[:0]

	if e.busy {
		e.dropped++
		return FeedResult{Matched: true, Dropped: true}
	}

	e.busy = true
	e.replies++
	reply := bytes.Clone(responder.Reply)
	_, _ = e.out.Write(reply)

	return FeedResult{Matched: true, Reply: reply}
}

// FeedAll feeds every byte of data and returns the concatenated replies.
func (e *Emulator) FeedAll(data []byte) []byte {
	var out []byte
	for _, b := range data {
		out = append(out, e.Feed(b).Reply...)
	}
	return out
}

// Run feeds data treating each reply as complete before the next byte.
// This is the behaviour of a host that waits for the reply before sending
// again.
func (e *Emulator) Run(data []byte) []byte {
	var out []byte
	for _, b := range data {
		res := e.Feed(b)
		if res.Reply != nil {
			out = append(out, res.Reply...)
			e.Complete()
		}
	}
	return out
}

// Complete marks the pending reply as fully transmitted.
func (e *Emulator) Complete() {
	e.busy = false
}

// Busy reports whether a reply is pending.
func (e *Emulator) Busy() bool {
	return e.busy
}

// Window returns a copy of the buffered bytes, oldest first.
func (e *Emulator) Window() []byte {
	return bytes.Clone(e.window)
}

// Replies returns the number of replies started.
func (e *Emulator) Replies() uint64 {
	return e.replies
}

// Dropped returns the number of matches ignored while busy.
func (e *Emulator) Dropped() uint64 {
	return e.dropped
}

// BytesFed returns the number of bytes processed.
func (e *Emulator) BytesFed() uint64 {
	return e.bytesFed
}

// Reset clears the window and any pending reply.
func (e *Emulator) Reset() {
	e.window = e.window[:0]
	e.busy = false
	e.bytesFed = 0
	e.replies = 0
	e.dropped = 0
}
