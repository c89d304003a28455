package notification_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	notificationDatamodel "github.com/coparently/coparently/internal/core/datamodel/notification"
	"github.com/coparently/coparently/internal/core/events"
	"github.com/coparently/coparently/internal/notification"
)

type mockNotificationRepository struct {
	notifications []*notificationDatamodel.Notification
}

func (m *mockNotificationRepository) Insert(ctx context.Context, n *notificationDatamodel.Notification) error {
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*notificationDatamodel.Notification, error) {
	var result []*notificationDatamodel.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		result = append(result, n)
	}
	return result, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	now := time.Now()
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			n.ReadAt = &now
		}
	}
	return nil
}

var _ = Describe("NotificationService", func() {
	const (
		payerID    = "parent-a"
		coParentID = "parent-b"
		expenseID  = "exp-1"
	)

	var (
		service *notification.Service
		repo    *mockNotificationRepository
		bus     *events.EventBus
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = &mockNotificationRepository{}
		bus = events.NewEventBus(logger)
		service = notification.NewService(repo, logger)
		service.RegisterEventHandlers(bus)
	})

	It("notifies the payer when their expense is approved", func() {
		event := events.NewExpenseApprovedEvent(expenseID, "School books", payerID, coParentID, coParentID, 5000)

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())

		Expect(repo.notifications).To(HaveLen(1))
		Expect(repo.notifications[0].UserID).To(Equal(payerID))
		Expect(repo.notifications[0].Type).To(Equal(notificationDatamodel.TypeExpenseApproved))
		Expect(repo.notifications[0].RelatedID).To(Equal(expenseID))
	})

	It("notifies the payer when the co-parent disputes", func() {
		event := events.NewExpenseDisputedEvent(expenseID, "School books", payerID, coParentID, "Receipt missing")

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())

		Expect(repo.notifications).To(HaveLen(1))
		Expect(repo.notifications[0].UserID).To(Equal(payerID))
	})

	It("stays quiet on a self-dispute", func() {
		event := events.NewExpenseDisputedEvent(expenseID, "School books", payerID, payerID, "never mind")

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())

		Expect(repo.notifications).To(BeEmpty())
	})

	It("notifies the counterpart when an expense is shared", func() {
		event := events.NewExpenseSharedEvent(expenseID, "School books", payerID, coParentID)

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())

		Expect(repo.notifications).To(HaveLen(1))
		Expect(repo.notifications[0].UserID).To(Equal(coParentID))
		Expect(repo.notifications[0].Type).To(Equal(notificationDatamodel.TypeExpenseShared))
	})

	It("filters unread notifications", func() {
		approved := events.NewExpenseApprovedEvent(expenseID, "School books", payerID, coParentID, coParentID, 5000)
		paid := events.NewExpensePaidEvent(expenseID, "School books", payerID, payerID)
		Expect(bus.PublishSync(context.Background(), approved)).To(Succeed())
		Expect(bus.PublishSync(context.Background(), paid)).To(Succeed())

		Expect(service.MarkRead(context.Background(), repo.notifications[0].ID, payerID)).To(Succeed())

		unread, err := service.ListForUser(context.Background(), payerID, true, 0, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(unread).To(HaveLen(1))
	})
})
