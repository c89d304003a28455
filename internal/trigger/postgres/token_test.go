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
	triggerDatamodel "github.com/coparently/coparently/internal/core/datamodel/trigger"
	"github.com/coparently/coparently/internal/trigger"
	"github.com/coparently/coparently/internal/trigger/postgres"
)

func openTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())

	err = db.Exec(`CREATE TABLE action_tokens (
		token TEXT PRIMARY KEY,
		expense_id TEXT NOT NULL,
		sent_to TEXT,
		created_at TIMESTAMP NOT NULL
	)`).Error
	Expect(err).NotTo(HaveOccurred())

	return db
}

var _ = Describe("TokenRepository", func() {
	var (
		repo trigger.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		repo = postgres.NewTokenRepository(openTestDB())
		ctx = context.Background()
	})

	It("round-trips a stored token", func() {
		err := repo.Insert(ctx, &triggerDatamodel.ActionToken{
			Token:     "aabbccddeeff00112233445566778899",
			ExpenseID: "expense-1",
			SentTo:    "jordan@example.com",
			CreatedAt: time.Now(),
		})
		Expect(err).NotTo(HaveOccurred())

		row, err := repo.GetByToken(ctx, "aabbccddeeff00112233445566778899")
		Expect(err).NotTo(HaveOccurred())
		Expect(row.ExpenseID).To(Equal("expense-1"))
		Expect(row.SentTo).To(Equal("jordan@example.com"))
	})

	It("maps a missing token to the not-found sentinel", func() {
		_, err := repo.GetByToken(ctx, "no-such-token")
		Expect(err).To(MatchError(internal.ErrTokenNotFound))
	})
})
