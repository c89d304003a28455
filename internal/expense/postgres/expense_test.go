package postgres_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/coparently/coparently/internal"
	"github.com/coparently/coparently/internal/expense"
	"github.com/coparently/coparently/internal/expense/postgres"
)

func openTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())

	err = db.Exec(`CREATE TABLE expenses (
		id TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		category TEXT,
		expense_date TIMESTAMP,
		amount_cents BIGINT NOT NULL,
		paid_by TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		split_method TEXT NOT NULL DEFAULT 'none',
		split_percentages TEXT,
		split_amounts TEXT,
		notes TEXT,
		dispute_notes TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`).Error
	Expect(err).NotTo(HaveOccurred())

	err = db.Exec(`CREATE TABLE expense_children (
		expense_id TEXT NOT NULL,
		child_id TEXT NOT NULL,
		PRIMARY KEY (expense_id, child_id)
	)`).Error
	Expect(err).NotTo(HaveOccurred())

	return db
}

var _ = Describe("ExpenseRepository", func() {
	var (
		db   *gorm.DB
		repo expense.Repository
		ctx  context.Context
	)

	newExpense := func(id, description string) *expense.Expense {
		now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
		return &expense.Expense{
			ID:          id,
			Description: description,
			Category:    "medical",
			ExpenseDate: now,
			AmountCents: 10000,
			PaidBy:      "parent-a",
			Status:      expense.StatusPending,
			SplitMethod: expense.SplitMethodFiftyFifty,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	BeforeEach(func() {
		db = openTestDB()
		repo = postgres.NewExpenseRepository(db)
		ctx = context.Background()
	})

	Describe("Create and GetByID", func() {
		It("round-trips an expense with its child associations", func() {
			exp := newExpense("expense-1", "Dentist visit")
			exp.ChildIDs = []string{"child-1", "child-2"}
			exp.SplitPercentages = map[string]float64{"parent-a": 60, "parent-b": 40}

			Expect(repo.Create(ctx, exp)).To(Succeed())

			got, err := repo.GetByID(ctx, "expense-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Description).To(Equal("Dentist visit"))
			Expect(got.AmountCents).To(Equal(int64(10000)))
			Expect(got.SplitPercentages).To(HaveKeyWithValue("parent-b", 40.0))
			Expect(got.ChildIDs).To(ConsistOf("child-1", "child-2"))
		})

		It("maps a missing id to the not-found sentinel", func() {
			_, err := repo.GetByID(ctx, "expense-missing")
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
		})
	})

	Describe("UpdateStatus", func() {
		It("writes the status and leaves the dispute note alone without one", func() {
			Expect(repo.Create(ctx, newExpense("expense-1", "Soccer camp"))).To(Succeed())

			Expect(repo.UpdateStatus(ctx, "expense-1", expense.StatusApproved, nil)).To(Succeed())

			got, err := repo.GetByID(ctx, "expense-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(expense.StatusApproved))
			Expect(got.DisputeNotes).To(BeEmpty())
		})

		It("records the dispute note when supplied", func() {
			Expect(repo.Create(ctx, newExpense("expense-1", "Soccer camp"))).To(Succeed())

			note := "Receipt does not match the amount"
			Expect(repo.UpdateStatus(ctx, "expense-1", expense.StatusDisputed, &note)).To(Succeed())

			got, err := repo.GetByID(ctx, "expense-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(expense.StatusDisputed))
			Expect(got.DisputeNotes).To(Equal(note))
		})

		It("maps zero affected rows to not found", func() {
			err := repo.UpdateStatus(ctx, "expense-missing", expense.StatusApproved, nil)
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the child associations together with the expense", func() {
			exp := newExpense("expense-1", "School shoes")
			exp.ChildIDs = []string{"child-1"}
			Expect(repo.Create(ctx, exp)).To(Succeed())

			Expect(repo.Delete(ctx, "expense-1")).To(Succeed())

			_, err := repo.GetByID(ctx, "expense-1")
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))

			var count int64
			Expect(db.Table("expense_children").
				Where("expense_id = ?", "expense-1").
				Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})

		It("maps a missing expense to not found", func() {
			err := repo.Delete(ctx, "expense-missing")
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
		})
	})

	Describe("ListForParties", func() {
		It("matches the search filter regardless of case", func() {
			first := newExpense("expense-1", "Dentist visit")
			second := newExpense("expense-2", "Soccer camp")
			Expect(repo.Create(ctx, first)).To(Succeed())
			Expect(repo.Create(ctx, second)).To(Succeed())

			rows, err := repo.ListForParties(ctx, []string{"parent-a"}, expense.QueryParams{
				Search: "DENTIST",
				Limit:  50,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].ID).To(Equal("expense-1"))
		})

		It("filters by status", func() {
			first := newExpense("expense-1", "Dentist visit")
			second := newExpense("expense-2", "Soccer camp")
			second.Status = expense.StatusApproved
			Expect(repo.Create(ctx, first)).To(Succeed())
			Expect(repo.Create(ctx, second)).To(Succeed())

			rows, err := repo.ListForParties(ctx, []string{"parent-a"}, expense.QueryParams{
				Status: expense.StatusApproved,
				Limit:  50,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].ID).To(Equal("expense-2"))
		})
	})
})
