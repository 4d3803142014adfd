package responder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/marcopolo/responder"
)

func feed(m responder.Matcher, s string) (responder.Matcher, int) {
	triggers := 0
	for i := 0; i < len(s); i++ {
		m = m.Step(true, s[i])
		if m.Triggered() {
			triggers++
		}
	}
	return m, triggers
}

var _ = Describe("Matcher", func() {
	It("should trigger on the command", func() {
		m, n := feed(responder.Matcher{}, "MARCO")
		Expect(n).To(Equal(1))
		Expect(m.Triggered()).To(BeTrue())
		Expect(m.Window()).To(BeEmpty())
	})

	It("should hold the trigger for one cycle", func() {
		m, _ := feed(responder.Matcher{}, "MARCO")
		m = m.Step(false, 0)
		Expect(m.Triggered()).To(BeFalse())
	})

	It("should ignore bytes without a valid pulse", func() {
		m := responder.Matcher{}
		for i := 0; i < 5; i++ {
			m = m.Step(false, 'X')
		}
		Expect(m.Window()).To(BeEmpty())
	})

	It("should evict the oldest byte", func() {
		m, _ := feed(responder.Matcher{}, "abcdefg")
		Expect(string(m.Window())).To(Equal("cdefg"))
	})

	It("should find the command after leading noise", func() {
		_, n := feed(responder.Matcher{}, "xyzMARCO")
		Expect(n).To(Equal(1))
	})

	It("should not trigger on a near miss", func() {
		_, n := feed(responder.Matcher{}, "MARCX")
		Expect(n).To(BeZero())
	})

	DescribeTable("non-matching streams",
		func(s string) {
			_, n := feed(responder.Matcher{}, s)
			Expect(n).To(BeZero())
		},
		Entry("lowercase", "marco"),
		Entry("shifted", "ARCOM"),
		Entry("prefix only", "MARC"),
		Entry("repeated prefix", "MARCMARCMARC"),
		Entry("interleaved", "MAxRCO"),
	)

	It("should clear the window so trailing bytes cannot re-match", func() {
		m, n := feed(responder.Matcher{}, "MARCO")
		Expect(n).To(Equal(1))
		m, n = feed(m, "ARCO")
		Expect(n).To(BeZero())
		Expect(string(m.Window())).To(Equal("ARCO"))
	})

	It("should trigger again on a fresh command", func() {
		_, n := feed(responder.Matcher{}, "MARCOMARCO")
		Expect(n).To(Equal(2))
	})

	It("should expose the fixed command and reply", func() {
		Expect(string(responder.Command[:])).To(Equal("MARCO"))
		Expect(responder.Reply).To(Equal([]byte{0x0A, 0x0D, 'P', 'O', 'L', 'O', '!', 0x0A, 0x0D}))
	})
})
