package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	notificationDatamodel "github.com/coparently/coparently/internal/core/datamodel/notification"
	"github.com/coparently/coparently/internal/core/events"
)

type Repository interface {
	Insert(ctx context.Context, n *notificationDatamodel.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*notificationDatamodel.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// Service fans expense lifecycle events out into per-user notifications.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RegisterEventHandlers subscribes the service to the expense lifecycle
// events it turns into notifications.
func (s *Service) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeExpenseApproved, s.handleExpenseApproved)
	bus.Subscribe(events.EventTypeExpenseDisputed, s.handleExpenseDisputed)
	bus.Subscribe(events.EventTypeExpensePaid, s.handleExpensePaid)
	bus.Subscribe(events.EventTypeExpenseShared, s.handleExpenseShared)
}

func (s *Service) handleExpenseApproved(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ExpenseApprovedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	text := fmt.Sprintf("Your expense %q was approved.", e.Description)
	return s.notify(ctx, e.PayerID, notificationDatamodel.TypeExpenseApproved, text, e.ExpenseID)
}

func (s *Service) handleExpenseDisputed(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ExpenseDisputedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	// The payer hears about disputes raised by anyone else; a self-dispute
	// needs no notification.
	if e.ActorID == e.PayerID {
		return nil
	}
	text := fmt.Sprintf("Your expense %q was disputed: %s", e.Description, e.Note)
	return s.notify(ctx, e.PayerID, notificationDatamodel.TypeExpenseDisputed, text, e.ExpenseID)
}

func (s *Service) handleExpensePaid(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ExpensePaidEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	text := fmt.Sprintf("The expense %q was marked as paid.", e.Description)
	return s.notify(ctx, e.PayerID, notificationDatamodel.TypeExpensePaid, text, e.ExpenseID)
}

func (s *Service) handleExpenseShared(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ExpenseSharedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	text := fmt.Sprintf("An expense %q was shared with you for review.", e.Description)
	return s.notify(ctx, e.CounterpartID, notificationDatamodel.TypeExpenseShared, text, e.ExpenseID)
}

func (s *Service) notify(ctx context.Context, userID, notifType, text, relatedID string) error {
	n := &notificationDatamodel.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      notifType,
		Message:   text,
		RelatedID: relatedID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return err
	}
	s.logger.Debug("notification created",
		"user_id", userID, "type", notifType, "related_id", relatedID)
	return nil
}

// ListForUser returns the user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*notificationDatamodel.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}
