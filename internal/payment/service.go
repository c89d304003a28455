package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	paymentDatamodel "github.com/coparently/coparently/internal/core/datamodel/payment"
	"github.com/coparently/coparently/internal/core/events"
)

type Repository interface {
	Insert(ctx context.Context, o *paymentDatamodel.Obligation) error
	ListByExpense(ctx context.Context, expenseID string) ([]*paymentDatamodel.Obligation, error)
	ListForUser(ctx context.Context, userID string, status string) ([]*paymentDatamodel.Obligation, error)
	SettleByExpense(ctx context.Context, expenseID string, settledAt time.Time) error
}

// Service keeps the ledger of who owes whom. Obligations are created when an
// expense is approved and settled when it is marked paid.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeExpenseApproved, s.handleExpenseApproved)
	bus.Subscribe(events.EventTypeExpensePaid, s.handleExpensePaid)
}

// handleExpenseApproved opens an obligation for the counterpart's share.
// A zero share, e.g. an unsplit expense, opens nothing.
func (s *Service) handleExpenseApproved(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ExpenseApprovedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	if e.CounterpartCents <= 0 || e.CounterpartID == "" {
		s.logger.Debug("no obligation opened", "expense_id", e.ExpenseID)
		return nil
	}

	o := &paymentDatamodel.Obligation{
		ID:          uuid.New().String(),
		ExpenseID:   e.ExpenseID,
		DebtorID:    e.CounterpartID,
		CreditorID:  e.PayerID,
		AmountCents: e.CounterpartCents,
		Status:      paymentDatamodel.ObligationStatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Insert(ctx, o); err != nil {
		return err
	}

	s.logger.Info("payment obligation opened",
		"expense_id", e.ExpenseID,
		"debtor_id", e.CounterpartID,
		"amount_cents", e.CounterpartCents)
	return nil
}

func (s *Service) handleExpensePaid(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ExpensePaidEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	if err := s.repo.SettleByExpense(ctx, e.ExpenseID, time.Now()); err != nil {
		return err
	}
	s.logger.Info("payment obligations settled", "expense_id", e.ExpenseID)
	return nil
}

// ListForUser returns obligations where the user is debtor or creditor,
// optionally filtered by status.
func (s *Service) ListForUser(ctx context.Context, userID, status string) ([]*paymentDatamodel.Obligation, error) {
	return s.repo.ListForUser(ctx, userID, status)
}

func (s *Service) ListForExpense(ctx context.Context, expenseID string) ([]*paymentDatamodel.Obligation, error) {
	return s.repo.ListByExpense(ctx, expenseID)
}
