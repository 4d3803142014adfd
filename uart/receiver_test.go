package uart_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/marcopolo/timing/divider"
	"github.com/sarchlab/marcopolo/uart"
)

// rxRig clocks a receiver from a free-running oversample divider.
type rxRig struct {
	os    divider.Divider
	rx    uart.Receiver
	bytes []byte
	errs  int
	glits int

	lastValid   bool
	doubleValid bool
}

func newRxRig() *rxRig {
	return &rxRig{os: divider.NewOversample(), rx: uart.NewReceiver()}
}

func (r *rxRig) hold(line bool, cycles int) {
	for i := 0; i < cycles; i++ {
		tick := r.os.Pulse()
		r.os = r.os.Step()
		r.rx = r.rx.Step(line, tick)
		if r.rx.Valid() {
			r.bytes = append(r.bytes, r.rx.Data())
			if r.lastValid {
				r.doubleValid = true
			}
		}
		r.lastValid = r.rx.Valid()
		if r.rx.FramingError() {
			r.errs++
		}
		if r.rx.Glitch() {
			r.glits++
		}
	}
}

func (r *rxRig) send(bits []bool) {
	for _, b := range bits {
		r.hold(b, int(divider.BaudDivisor))
	}
}

var _ = Describe("Receiver", func() {
	var rig *rxRig

	BeforeEach(func() {
		rig = newRxRig()
	})

	It("should start idle", func() {
		Expect(rig.rx.Phase()).To(Equal(uart.PhaseIdle))
		Expect(rig.rx.Valid()).To(BeFalse())
	})

	It("should stay quiet on an idle line", func() {
		rig.hold(true, 20*int(divider.BaudDivisor))
		Expect(rig.bytes).To(BeEmpty())
		Expect(rig.errs).To(BeZero())
		Expect(rig.glits).To(BeZero())
		Expect(rig.rx.Phase()).To(Equal(uart.PhaseIdle))
	})

	It("should enter start on a falling edge", func() {
		rig.hold(true, 10)
		rig.hold(false, 1)
		Expect(rig.rx.Phase()).To(Equal(uart.PhaseStart))
	})

	DescribeTable("round-trip of a single byte",
		func(b byte) {
			rig.hold(true, 1000)
			rig.send(uart.Encode(b))
			rig.hold(true, 2*int(divider.BaudDivisor))
			Expect(rig.bytes).To(Equal([]byte{b}))
			Expect(rig.errs).To(BeZero())
		},
		Entry("M", byte('M')),
		Entry("zero", byte(0x00)),
		Entry("all ones", byte(0xFF)),
		Entry("alternating", byte(0x55)),
		Entry("alternating inverse", byte(0xAA)),
		Entry("newline", byte('\n')),
	)

	It("should publish the byte with a one-cycle valid pulse", func() {
		rig.hold(true, 100)
		rig.send(uart.Encode('A'))
		rig.hold(true, 2*int(divider.BaudDivisor))
		Expect(rig.bytes).To(Equal([]byte{'A'}))
		Expect(rig.doubleValid).To(BeFalse())
		Expect(rig.rx.Valid()).To(BeFalse())
		Expect(rig.rx.Data()).To(Equal(byte('A')))
	})

	It("should receive back-to-back frames", func() {
		rig.hold(true, 500)
		rig.send(uart.EncodeAll([]byte("MARCO")))
		rig.hold(true, int(divider.BaudDivisor))
		Expect(string(rig.bytes)).To(Equal("MARCO"))
	})

	It("should receive frames regardless of oversample phase", func() {
		for offset := 0; offset < int(divider.OversampleDivisor); offset += 97 {
			r := newRxRig()
			r.hold(true, 50+offset)
			r.send(uart.Encode(0xA5))
			r.hold(true, int(divider.BaudDivisor))
			Expect(r.bytes).To(Equal([]byte{0xA5}), "offset %d", offset)
		}
	})

	It("should reject a start glitch without publishing", func() {
		rig.hold(true, 100)
		rig.hold(false, 200)
		rig.hold(true, 4*int(divider.BaudDivisor))
		Expect(rig.glits).To(Equal(1))
		Expect(rig.bytes).To(BeEmpty())
		Expect(rig.errs).To(BeZero())
		Expect(rig.rx.Phase()).To(Equal(uart.PhaseIdle))
	})

	It("should flag a low stop bit as a framing error and discard the byte", func() {
		bits := uart.Encode('Z')
		bits[uart.FrameBits-1] = false
		rig.hold(true, 100)
		rig.send(bits)
		rig.hold(true, 2*int(divider.BaudDivisor))
		Expect(rig.errs).To(Equal(1))
		Expect(rig.bytes).To(BeEmpty())
		Expect(rig.rx.Phase()).To(Equal(uart.PhaseIdle))
	})

	It("should recover after a framing error", func() {
		bad := uart.Encode('Z')
		bad[uart.FrameBits-1] = false
		rig.hold(true, 100)
		rig.send(bad)
		rig.hold(true, 2*int(divider.BaudDivisor))
		rig.send(uart.Encode('Y'))
		rig.hold(true, 2*int(divider.BaudDivisor))
		Expect(rig.bytes).To(Equal([]byte{'Y'}))
	})

	It("should treat a line held low through reset as one bad frame", func() {
		rig.hold(false, 12*int(divider.BaudDivisor))
		Expect(rig.errs).To(Equal(1))
		Expect(rig.bytes).To(BeEmpty())
		Expect(rig.rx.Phase()).To(Equal(uart.PhaseIdle))
	})
})
