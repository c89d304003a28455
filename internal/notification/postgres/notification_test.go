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
	notificationDatamodel "github.com/coparently/coparently/internal/core/datamodel/notification"
	"github.com/coparently/coparently/internal/notification"
	"github.com/coparently/coparently/internal/notification/postgres"
)

func openTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())

	err = db.Exec(`CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		related_id TEXT,
		read_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`).Error
	Expect(err).NotTo(HaveOccurred())

	return db
}

var _ = Describe("NotificationRepository", func() {
	var (
		repo notification.Repository
		ctx  context.Context
	)

	insert := func(id, userID string, createdAt time.Time) {
		err := repo.Insert(ctx, &notificationDatamodel.Notification{
			ID:        id,
			UserID:    userID,
			Type:      notificationDatamodel.TypeExpenseApproved,
			Message:   "School supplies was approved",
			RelatedID: "expense-1",
			CreatedAt: createdAt,
		})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		repo = postgres.NewNotificationRepository(openTestDB())
		ctx = context.Background()
	})

	Describe("ListByUser", func() {
		It("returns only the user's notifications, newest first", func() {
			base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			insert("n-1", "parent-a", base)
			insert("n-2", "parent-a", base.Add(time.Hour))
			insert("n-3", "parent-b", base)

			rows, err := repo.ListByUser(ctx, "parent-a", false, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].ID).To(Equal("n-2"))
			Expect(rows[1].ID).To(Equal("n-1"))
		})

		It("filters to unread when asked", func() {
			base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			insert("n-1", "parent-a", base)
			insert("n-2", "parent-a", base.Add(time.Hour))

			Expect(repo.MarkRead(ctx, "n-1", "parent-a")).To(Succeed())

			rows, err := repo.ListByUser(ctx, "parent-a", true, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].ID).To(Equal("n-2"))
		})

		It("applies limit and offset", func() {
			base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			insert("n-1", "parent-a", base)
			insert("n-2", "parent-a", base.Add(time.Hour))
			insert("n-3", "parent-a", base.Add(2*time.Hour))

			rows, err := repo.ListByUser(ctx, "parent-a", false, 1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].ID).To(Equal("n-2"))
		})
	})

	Describe("MarkRead", func() {
		It("stamps the notification", func() {
			insert("n-1", "parent-a", time.Now())

			Expect(repo.MarkRead(ctx, "n-1", "parent-a")).To(Succeed())

			rows, err := repo.ListByUser(ctx, "parent-a", false, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows[0].ReadAt).NotTo(BeNil())
		})

		It("fails when the notification belongs to someone else", func() {
			insert("n-1", "parent-a", time.Now())

			err := repo.MarkRead(ctx, "n-1", "parent-b")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotificationNotFound))
		})

		It("fails for an unknown id", func() {
			err := repo.MarkRead(ctx, "n-missing", "parent-a")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotificationNotFound))
		})
	})
})
