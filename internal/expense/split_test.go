package expense_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coparently/coparently/internal/expense"
)

var _ = Describe("ShareFor", func() {
	const (
		payerID    = "parent-a"
		coParentID = "parent-b"
		strangerID = "parent-z"
	)

	newExpense := func(amountCents int64, method string) *expense.Expense {
		return &expense.Expense{
			ID:          "exp-1",
			AmountCents: amountCents,
			PaidBy:      payerID,
			SplitMethod: method,
		}
	}

	Context("with a 50/50 split", func() {
		It("splits an even amount equally", func() {
			e := newExpense(10000, expense.SplitMethodFiftyFifty)

			Expect(expense.ShareFor(e, payerID)).To(Equal(int64(5000)))
			Expect(expense.ShareFor(e, coParentID)).To(Equal(int64(5000)))
		})

		It("gives the odd cent to the payer", func() {
			e := newExpense(10001, expense.SplitMethodFiftyFifty)

			Expect(expense.ShareFor(e, payerID)).To(Equal(int64(5001)))
			Expect(expense.ShareFor(e, coParentID)).To(Equal(int64(5000)))
		})

		It("always sums both shares to the total", func() {
			for _, amount := range []int64{1, 2, 3, 99, 100, 101, 9999, 10001, 123457} {
				e := newExpense(amount, expense.SplitMethodFiftyFifty)
				sum := expense.ShareFor(e, payerID) + expense.ShareFor(e, coParentID)
				Expect(sum).To(Equal(amount), "amount %d", amount)
			}
		})
	})

	Context("with no split", func() {
		It("assigns the full amount to the payer", func() {
			e := newExpense(7500, expense.SplitMethodNone)

			Expect(expense.ShareFor(e, payerID)).To(Equal(int64(7500)))
			Expect(expense.ShareFor(e, coParentID)).To(BeZero())
		})
	})

	Context("with custom amounts", func() {
		It("uses the amounts as given without checking their sum", func() {
			e := newExpense(10000, expense.SplitMethodCustom)
			e.SplitAmounts = map[string]int64{payerID: 3000, coParentID: 4000}

			Expect(expense.ShareFor(e, payerID)).To(Equal(int64(3000)))
			Expect(expense.ShareFor(e, coParentID)).To(Equal(int64(4000)))
		})

		It("prefers amounts over percentages when both are present", func() {
			e := newExpense(10000, expense.SplitMethodCustom)
			e.SplitAmounts = map[string]int64{coParentID: 2500}
			e.SplitPercentages = map[string]float64{coParentID: 80}

			Expect(expense.ShareFor(e, coParentID)).To(Equal(int64(2500)))
		})

		It("returns zero for a party absent from the amounts map", func() {
			e := newExpense(10000, expense.SplitMethodCustom)
			e.SplitAmounts = map[string]int64{coParentID: 4000}

			Expect(expense.ShareFor(e, strangerID)).To(BeZero())
		})
	})

	Context("with custom percentages", func() {
		It("rounds half up", func() {
			e := newExpense(10001, expense.SplitMethodCustom)
			e.SplitPercentages = map[string]float64{payerID: 50, coParentID: 50}

			// 10001 * 0.5 = 5000.5 rounds to 5001 for both parties
			Expect(expense.ShareFor(e, payerID)).To(Equal(int64(5001)))
			Expect(expense.ShareFor(e, coParentID)).To(Equal(int64(5001)))
		})

		It("returns zero for a party absent from the percentages map", func() {
			e := newExpense(10000, expense.SplitMethodCustom)
			e.SplitPercentages = map[string]float64{payerID: 100}

			Expect(expense.ShareFor(e, coParentID)).To(BeZero())
		})
	})

	Context("with a custom split but no maps at all", func() {
		It("degrades to the payer bearing the full amount", func() {
			e := newExpense(6400, expense.SplitMethodCustom)

			Expect(expense.ShareFor(e, payerID)).To(Equal(int64(6400)))
			Expect(expense.ShareFor(e, coParentID)).To(BeZero())
		})
	})
})

var _ = Describe("OwedToUser", func() {
	const (
		payerID    = "parent-a"
		coParentID = "parent-b"
	)

	It("sums the co-parent's share over the user's expenses only", func() {
		mine := &expense.Expense{
			AmountCents: 10000, PaidBy: payerID, SplitMethod: expense.SplitMethodFiftyFifty,
		}
		theirs := &expense.Expense{
			AmountCents: 8000, PaidBy: coParentID, SplitMethod: expense.SplitMethodFiftyFifty,
		}
		unsplit := &expense.Expense{
			AmountCents: 3000, PaidBy: payerID, SplitMethod: expense.SplitMethodNone,
		}

		total := expense.OwedToUser([]*expense.Expense{mine, theirs, unsplit}, payerID, coParentID)
		Expect(total).To(Equal(int64(5000)))
	})

	It("returns zero for an empty list", func() {
		Expect(expense.OwedToUser(nil, payerID, coParentID)).To(BeZero())
	})
})
