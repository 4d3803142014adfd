package divider_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/marcopolo/timing/divider"
)

// pulseCycles steps d for n cycles and returns the 1-based cycles that pulsed.
func pulseCycles(d divider.Divider, n int) []int {
	var cycles []int
	for i := 1; i <= n; i++ {
		d = d.Step()
		if d.Pulse() {
			cycles = append(cycles, i)
		}
	}
	return cycles
}

var _ = Describe("Divider", func() {
	It("should reject divisors below 2", func() {
		Expect(func() { divider.New(1) }).To(Panic())
		Expect(func() { divider.New(0) }).To(Panic())
		Expect(func() { divider.New(2) }).NotTo(Panic())
	})

	It("should start with no pulse and a cleared counter", func() {
		d := divider.New(4)
		Expect(d.Pulse()).To(BeFalse())
		Expect(d.Count()).To(Equal(uint32(0)))
		Expect(d.Divisor()).To(Equal(uint32(4)))
	})

	It("should pulse on the Nth cycle after reset", func() {
		Expect(pulseCycles(divider.New(4), 12)).To(Equal([]int{4, 8, 12}))
	})

	It("should hold the pulse for exactly one cycle", func() {
		d := divider.New(3)
		d = d.Step().Step().Step()
		Expect(d.Pulse()).To(BeTrue())
		d = d.Step()
		Expect(d.Pulse()).To(BeFalse())
	})

	It("should alternate with the minimum divisor", func() {
		Expect(pulseCycles(divider.New(2), 6)).To(Equal([]int{2, 4, 6}))
	})

	It("should keep the counter within range", func() {
		d := divider.New(5)
		for i := 0; i < 23; i++ {
			d = d.Step()
			Expect(d.Count()).To(BeNumerically("<", uint32(5)))
		}
	})

	It("should clear the counter and pulse on reset", func() {
		d := divider.New(3).Step().Step().Step()
		Expect(d.Pulse()).To(BeTrue())
		d = d.Reset()
		Expect(d.Pulse()).To(BeFalse())
		Expect(d.Count()).To(Equal(uint32(0)))
		Expect(pulseCycles(d, 3)).To(Equal([]int{3}))
	})

	Describe("nominal divisors", func() {
		It("should keep the baud divisor at 8x the oversample divisor", func() {
			Expect(divider.OversampleDivisor).To(Equal(uint32(651)))
			Expect(divider.BaudDivisor).To(Equal(uint32(5208)))
			Expect(divider.NewBaud().Divisor()).To(Equal(divider.BaudDivisor))
			Expect(divider.NewOversample().Divisor()).To(Equal(divider.OversampleDivisor))
		})

		It("should space oversample pulses evenly with no drift", func() {
			const periods = 20
			cycles := pulseCycles(divider.NewOversample(), periods*int(divider.OversampleDivisor))
			Expect(cycles).To(HaveLen(periods))
			for i, c := range cycles {
				Expect(c).To(Equal((i + 1) * int(divider.OversampleDivisor)))
			}
		})

		It("should pulse the baud divider once per bit period", func() {
			cycles := pulseCycles(divider.NewBaud(), 3*int(divider.BaudDivisor))
			Expect(cycles).To(Equal([]int{5208, 10416, 15624}))
		})
	})
})
