package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armv6m/insts"
)

var _ = Describe("Conditions", func() {
	It("should round-trip every code from 0 to 14", func() {
		for code := uint8(0); code <= 14; code++ {
			cond, err := insts.ConditionFromCode(code)
			Expect(err).NotTo(HaveOccurred())
			Expect(uint8(cond)).To(Equal(code))
		}
	})

	It("should decode code 14 as the unconditional sentinel", func() {
		cond, err := insts.ConditionFromCode(14)
		Expect(err).NotTo(HaveOccurred())
		Expect(cond).To(Equal(insts.CondNone))
	})

	It("should reject code 15", func() {
		_, err := insts.ConditionFromCode(15)
		Expect(err).To(MatchError(insts.ErrInvalidCondition))
	})
})
