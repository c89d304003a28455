package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coparently/coparently/internal/core/common/money"
	messageDatamodel "github.com/coparently/coparently/internal/core/datamodel/message"
	"github.com/coparently/coparently/internal/expense"
	"github.com/coparently/coparently/internal/metrics"
)

type Repository interface {
	Insert(ctx context.Context, msg *messageDatamodel.Message) error
	ListBetween(ctx context.Context, userA, userB string, limit, offset int) ([]*messageDatamodel.Message, error)
}

// CoParentResolver looks up the other account in the family circle.
type CoParentResolver interface {
	CoParentOf(ctx context.Context, parentID string) (string, error)
}

// Bridge turns expense lifecycle moments into messages in the co-parent
// conversation. It implements expense.CounterpartNotifier.
type Bridge struct {
	repo     Repository
	resolver CoParentResolver
	logger   *slog.Logger
}

func NewBridge(repo Repository, resolver CoParentResolver, logger *slog.Logger) *Bridge {
	return &Bridge{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
	}
}

// NotifyCounterpart posts a message about the expense to the party opposite
// the actor. When the payer disputes their own expense there is no one to
// tell, so the notice is skipped and reported as success.
func (b *Bridge) NotifyCounterpart(ctx context.Context, e *expense.Expense, actor expense.Actor, kind expense.NoticeKind, text string) error {
	if kind == expense.NoticeDispute && !actor.IsSystem() && e.IsPayer(actor.UserID()) {
		b.logger.Debug("dispute notice skipped for self-dispute",
			"expense_id", e.ID, "actor", actor.String())
		return nil
	}

	receiverID, senderID, err := b.parties(ctx, e, actor)
	if err != nil {
		return err
	}

	if text == "" {
		text = defaultText(e, kind)
	}

	attachmentType := messageDatamodel.AttachmentTypeExpenseReference
	msg := &messageDatamodel.Message{
		ID:             uuid.New().String(),
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           text,
		AttachmentType: &attachmentType,
		AttachmentRef:  &e.ID,
		CreatedAt:      time.Now(),
	}
	if err := b.repo.Insert(ctx, msg); err != nil {
		return err
	}

	metrics.NoticesTotal.WithLabelValues(string(kind)).Inc()
	b.logger.Info("counterpart notice delivered",
		"expense_id", e.ID, "kind", string(kind), "receiver_id", receiverID)
	return nil
}

// ListConversation returns messages exchanged between the user and their
// co-parent, newest first.
func (b *Bridge) ListConversation(ctx context.Context, userID string, limit, offset int) ([]*messageDatamodel.Message, error) {
	coParentID, err := b.resolver.CoParentOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return b.repo.ListBetween(ctx, userID, coParentID, limit, offset)
}

// parties resolves who the message goes to. The receiver is the party
// opposite the actor: the co-parent when the payer acts, the payer when the
// co-parent or the system acts.
func (b *Bridge) parties(ctx context.Context, e *expense.Expense, actor expense.Actor) (receiverID, senderID string, err error) {
	coParentID, err := b.resolver.CoParentOf(ctx, e.PaidBy)
	if err != nil {
		return "", "", err
	}
	if !actor.IsSystem() && e.IsPayer(actor.UserID()) {
		return coParentID, e.PaidBy, nil
	}
	return e.PaidBy, coParentID, nil
}

func defaultText(e *expense.Expense, kind expense.NoticeKind) string {
	amount := money.FormatCents(e.AmountCents)
	switch kind {
	case expense.NoticeDispute:
		return fmt.Sprintf("The expense %q (%s) has been disputed.", e.Description, amount)
	case expense.NoticeShare:
		return fmt.Sprintf("An expense was shared with you: %q (%s).", e.Description, amount)
	default:
		return fmt.Sprintf("Update on expense %q (%s).", e.Description, amount)
	}
}
