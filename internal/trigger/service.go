package trigger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coparently/coparently/internal"
	"github.com/coparently/coparently/internal/core/common/money"
	triggerDatamodel "github.com/coparently/coparently/internal/core/datamodel/trigger"
	"github.com/coparently/coparently/internal/core/events"
	"github.com/coparently/coparently/internal/expense"
	"github.com/coparently/coparently/internal/metrics"
)

const (
	ActionApprove = "approve"
	ActionClarify = "clarify"

	clarifyNote = "Clarification requested via shared link."
)

type Repository interface {
	Insert(ctx context.Context, token *triggerDatamodel.ActionToken) error
	GetByToken(ctx context.Context, token string) (*triggerDatamodel.ActionToken, error)
}

// ExpenseService is the slice of the expense lifecycle the trigger needs.
type ExpenseService interface {
	GetExpense(ctx context.Context, id, requesterID string) (*expense.Expense, error)
	Approve(ctx context.Context, id string, actor expense.Actor) (*expense.Expense, error)
	Dispute(ctx context.Context, id string, actor expense.Actor, note string) (*expense.Expense, error)
}

type CoParentResolver interface {
	CoParentOf(ctx context.Context, parentID string) (string, error)
}

// ParentLookup resolves the share email's recipient address.
type ParentLookup interface {
	ParentEmail(ctx context.Context, parentID string) (string, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type CounterpartNotifier interface {
	NotifyCounterpart(ctx context.Context, e *expense.Expense, actor expense.Actor, kind expense.NoticeKind, text string) error
}

type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

// ActionResult reports what a token-addressed action did.
type ActionResult struct {
	ExpenseID string `json:"expense_id"`
	Action    string `json:"action"`
	Status    string `json:"status"`
}

// Service handles expense shares and the token-addressed actions they
// enable. A token stays valid as long as its expense is pending; acting on
// it twice fails because the expense has already left pending.
type Service struct {
	repo     Repository
	expenses ExpenseService
	resolver CoParentResolver
	parents  ParentLookup
	mailer   Mailer
	notifier CounterpartNotifier
	bus      EventPublisher
	baseURL  string
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	expenses ExpenseService,
	resolver CoParentResolver,
	parents ParentLookup,
	mailer Mailer,
	notifier CounterpartNotifier,
	bus EventPublisher,
	baseURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		expenses: expenses,
		resolver: resolver,
		parents:  parents,
		mailer:   mailer,
		notifier: notifier,
		bus:      bus,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// HandleAction resolves the token and applies the requested action as the
// system actor. An unknown token is not found; a token whose expense has
// left pending is already processed.
func (s *Service) HandleAction(ctx context.Context, token, action string) (*ActionResult, error) {
	record, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, internal.ErrTokenNotFound) {
			metrics.TriggerActionsTotal.WithLabelValues(action, "not_found").Inc()
		}
		return nil, err
	}

	var exp *expense.Expense
	switch action {
	case ActionApprove:
		exp, err = s.expenses.Approve(ctx, record.ExpenseID, expense.SystemActor())
	case ActionClarify:
		exp, err = s.expenses.Dispute(ctx, record.ExpenseID, expense.SystemActor(), clarifyNote)
	default:
		metrics.TriggerActionsTotal.WithLabelValues(action, "error").Inc()
		return nil, internal.NewValidationError(
			fmt.Sprintf("unknown action %q", action), internal.ErrCodeInvalidTriggerToken)
	}

	if err != nil {
		if errors.Is(err, internal.ErrAlreadyProcessed) {
			metrics.TriggerActionsTotal.WithLabelValues(action, "already_processed").Inc()
		} else {
			metrics.TriggerActionsTotal.WithLabelValues(action, "error").Inc()
		}
		return nil, err
	}

	metrics.TriggerActionsTotal.WithLabelValues(action, "ok").Inc()
	s.logger.Info("token action applied",
		"expense_id", exp.ID, "action", action, "status", string(exp.Status))

	return &ActionResult{
		ExpenseID: exp.ID,
		Action:    action,
		Status:    string(exp.Status),
	}, nil
}

// Share emails the co-parent an approve/clarify link pair for the expense
// and posts a share notice into the conversation. Only the payer may share.
func (s *Service) Share(ctx context.Context, expenseID, userID string) (*triggerDatamodel.ActionToken, error) {
	exp, err := s.expenses.GetExpense(ctx, expenseID, userID)
	if err != nil {
		return nil, err
	}
	if !exp.IsPayer(userID) {
		return nil, internal.ErrNotExpenseOwner
	}

	coParentID, err := s.resolver.CoParentOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	token := &triggerDatamodel.ActionToken{
		Token:     newToken(),
		ExpenseID: exp.ID,
		SentTo:    coParentID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Insert(ctx, token); err != nil {
		return nil, err
	}

	s.sendShareMail(ctx, exp, coParentID, token.Token)

	actor := expense.UserActor(userID)
	if err := s.notifier.NotifyCounterpart(ctx, exp, actor, expense.NoticeShare, ""); err != nil {
		s.logger.Error("share notice not delivered",
			"error", err, "expense_id", exp.ID)
	}

	event := events.NewExpenseSharedEvent(exp.ID, exp.Description, exp.PaidBy, coParentID)
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.logger.Error("share event handling failed",
			"error", err, "expense_id", exp.ID)
	}

	s.logger.Info("expense shared", "expense_id", exp.ID, "sent_to", coParentID)
	return token, nil
}

// sendShareMail is best effort; a mail failure never undoes the share.
func (s *Service) sendShareMail(ctx context.Context, exp *expense.Expense, coParentID, token string) {
	email, err := s.parents.ParentEmail(ctx, coParentID)
	if err != nil {
		s.logger.Error("share mail skipped, recipient lookup failed",
			"error", err, "expense_id", exp.ID, "co_parent_id", coParentID)
		return
	}

	subject := fmt.Sprintf("Expense shared with you: %s", exp.Description)
	body := fmt.Sprintf(
		"An expense needs your review.\n\n"+
			"%s\nAmount: %s\n\n"+
			"Approve: %s/api/v1/actions/%s?action=%s\n"+
			"Request clarification: %s/api/v1/actions/%s?action=%s\n",
		exp.Description, money.FormatCents(exp.AmountCents),
		s.baseURL, token, ActionApprove,
		s.baseURL, token, ActionClarify,
	)

	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		s.logger.Error("share mail not sent",
			"error", err, "expense_id", exp.ID, "to", email)
	}
}

func newToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return hex.EncodeToString(buf)
}
