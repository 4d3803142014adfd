package harness_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/marcopolo/harness"
	"github.com/sarchlab/marcopolo/responder"
)

// recorder keeps every observed output.
type recorder struct {
	outs []responder.Outputs
}

func (r *recorder) Observe(_ uint64, out responder.Outputs) {
	r.outs = append(r.outs, out)
}

var _ = Describe("Bench", func() {
	var (
		config *harness.Config
		b      *harness.Bench
	)

	BeforeEach(func() {
		config = harness.DefaultConfig()
		b = harness.NewBench(context.Background(), config, nil)
	})

	It("should hold reset for the configured cycles", func() {
		Expect(b.Reset()).To(Succeed())
		Expect(b.Cycle()).To(Equal(config.ResetCycles))
		Expect(b.Stats().Cycles).To(BeZero())
	})

	It("should time a byte as one frame plus the gap", func() {
		Expect(b.Reset()).To(Succeed())
		start := b.Cycle()
		Expect(b.SendByte('M')).To(Succeed())
		Expect(b.Cycle() - start).To(Equal(12 * config.BitCycles))
		Expect(b.Stats().BytesReceived).To(Equal(uint64(1)))
	})

	It("should report simulated time from the clock frequency", func() {
		Expect(b.Clock(50)).To(Succeed())
		Expect(b.Timestamp()).To(BeNumerically("~", 1000.0, 1e-6))
	})

	It("should feed every cycle to probes", func() {
		rec := &recorder{}
		b.AddProbe(rec)
		Expect(b.Reset()).To(Succeed())
		Expect(b.Clock(700)).To(Succeed())
		Expect(rec.outs).To(HaveLen(int(config.ResetCycles) + 700))
		Expect(b.Outputs()).To(Equal(rec.outs[len(rec.outs)-1]))

		ticks := 0
		for _, o := range rec.outs {
			if o.OversampleTick {
				ticks++
			}
			Expect(o.TX).To(BeTrue())
		}
		Expect(ticks).To(Equal(1))
	})

	It("should freeze the responder while disabled", func() {
		Expect(b.Reset()).To(Succeed())
		Expect(b.Clock(100)).To(Succeed())
		b.SetEnable(false)
		Expect(b.Clock(1000)).To(Succeed())
		Expect(b.Stats().Cycles).To(Equal(uint64(100)))
	})

	It("should stop when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		b = harness.NewBench(ctx, config, nil)
		cancel()
		Expect(b.Clock(10)).To(MatchError(context.Canceled))
	})

	It("should give up waiting after the limit", func() {
		ok, err := b.ClockUntil(10, func() bool { return false })
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(b.Cycle()).To(Equal(uint64(10)))
	})
})
