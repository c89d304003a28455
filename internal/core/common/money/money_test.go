package money_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coparently/coparently/internal/core/common/money"
)

var _ = Describe("ParseDecimalToCents", func() {
	It("parses whole and fractional amounts", func() {
		Expect(money.ParseDecimalToCents("50")).To(Equal(int64(5000)))
		Expect(money.ParseDecimalToCents("50.5")).To(Equal(int64(5050)))
		Expect(money.ParseDecimalToCents("50.55")).To(Equal(int64(5055)))
	})

	It("accepts a comma as decimal separator", func() {
		Expect(money.ParseDecimalToCents("12,34")).To(Equal(int64(1234)))
	})

	It("rounds the third decimal half up", func() {
		Expect(money.ParseDecimalToCents("1.005")).To(Equal(int64(101)))
		Expect(money.ParseDecimalToCents("1.004")).To(Equal(int64(100)))
	})

	It("rejects zero, negatives and malformed input", func() {
		for _, input := range []string{"", "0", "0.00", "-5", "+5", "1.2.3", "abc", "1a.00"} {
			_, err := money.ParseDecimalToCents(input)
			Expect(err).To(HaveOccurred(), "input %q", input)
		}
	})
})

var _ = Describe("FormatCents", func() {
	It("renders two decimals with zero padding", func() {
		Expect(money.FormatCents(5000)).To(Equal("50.00"))
		Expect(money.FormatCents(5005)).To(Equal("50.05"))
		Expect(money.FormatCents(3)).To(Equal("0.03"))
	})

	It("keeps the sign on negative amounts", func() {
		Expect(money.FormatCents(-1234)).To(Equal("-12.34"))
	})
})
