package expense

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coparently/coparently/internal"
	auditDatamodel "github.com/coparently/coparently/internal/core/datamodel/audit"
	"github.com/coparently/coparently/internal/core/events"
	"github.com/coparently/coparently/internal/metrics"
)

// Repository defines the data access methods for expenses. Delete cascades
// the child-association rows with the expense row.
type Repository interface {
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, id string) (*Expense, error)
	ListForParties(ctx context.Context, partyIDs []string, params QueryParams) ([]*Expense, error)
	ListByPayer(ctx context.Context, payerID string) ([]*Expense, error)
	ListByPayerAndMonth(ctx context.Context, payerID string, year int, month time.Month) ([]*Expense, error)
	Update(ctx context.Context, e *Expense) error
	UpdateStatus(ctx context.Context, id, status string, disputeNote *string) error
	Delete(ctx context.Context, id string) error
}

// AuditRecorder appends to and reads the immutable status history. Record
// failures are reported but never abort a transition.
type AuditRecorder interface {
	Record(ctx context.Context, expenseID, status, actorID string, note *string) error
	Trail(ctx context.Context, expenseID string) ([]*auditDatamodel.Entry, error)
}

type NoticeKind string

const (
	NoticeDispute NoticeKind = "dispute"
	NoticeShare   NoticeKind = "share"
)

// CounterpartNotifier delivers an in-app message about an expense to the
// other party.
type CounterpartNotifier interface {
	NotifyCounterpart(ctx context.Context, e *Expense, actor Actor, kind NoticeKind, text string) error
}

// CoParentResolver looks up the other account in the family circle.
type CoParentResolver interface {
	CoParentOf(ctx context.Context, parentID string) (string, error)
}

type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

// Service drives the expense lifecycle: creation, the status state machine,
// and the side effects each transition fires. Side effects run after the
// status write commits and are at-least-once: a failed audit write or
// notification is logged, never rolled back into the transition.
type Service struct {
	repo     Repository
	recorder AuditRecorder
	notifier CounterpartNotifier
	resolver CoParentResolver
	bus      EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, recorder AuditRecorder, notifier CounterpartNotifier, resolver CoParentResolver, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		notifier: notifier,
		resolver: resolver,
		bus:      bus,
		logger:   logger,
	}
}

func (s *Service) CreateExpense(ctx context.Context, payerID string, dto CreateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("expense validation failed", "error", err, "payer_id", payerID)
		return nil, err
	}

	splitMethod := dto.SplitMethod
	if splitMethod == "" {
		splitMethod = SplitMethodNone
	}

	now := time.Now()
	exp := &Expense{
		ID:               uuid.New().String(),
		Description:      dto.Description,
		Category:         dto.Category,
		ExpenseDate:      dto.ExpenseDate,
		AmountCents:      dto.AmountCents,
		PaidBy:           payerID,
		Status:           StatusPending,
		SplitMethod:      splitMethod,
		SplitPercentages: dto.SplitPercentages,
		SplitAmounts:     dto.SplitAmounts,
		Notes:            dto.Notes,
		ChildIDs:         dto.ChildIDs,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, exp); err != nil {
		s.logger.Error("failed to create expense", "error", err, "payer_id", payerID)
		return nil, err
	}

	s.recordAudit(ctx, exp.ID, StatusPending, UserActor(payerID), nil)

	s.logger.Info("expense created",
		"expense_id", exp.ID,
		"payer_id", payerID,
		"amount_cents", exp.AmountCents,
		"split_method", exp.SplitMethod)

	return exp, nil
}

// GetExpense returns the expense if the requester is the payer or the
// payer's co-parent; anything else reads as not found.
func (s *Service) GetExpense(ctx context.Context, id, requesterID string) (*Expense, error) {
	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(ctx, exp, requesterID) {
		s.logger.Warn("expense not visible to requester", "expense_id", id, "requester_id", requesterID)
		return nil, internal.ErrExpenseNotFound
	}
	return exp, nil
}

func (s *Service) ListExpenses(ctx context.Context, userID string, params QueryParams) ([]*Expense, error) {
	parties := []string{userID}
	coParent, err := s.resolver.CoParentOf(ctx, userID)
	switch {
	case err == nil && coParent != "":
		parties = append(parties, coParent)
	case errors.Is(err, internal.ErrCoParentNotLinked):
		// an unlinked account just lists its own expenses
	case err != nil:
		s.logger.Error("failed to resolve co-parent", "error", err, "user_id", userID)
		return nil, err
	}

	expenses, err := s.repo.ListForParties(ctx, parties, params.Normalized())
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "user_id", userID)
		return nil, err
	}
	return expenses, nil
}

func (s *Service) UpdateExpense(ctx context.Context, id, userID string, dto UpdateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.IsPayer(userID) {
		return nil, internal.ErrNotExpenseOwner
	}
	if !exp.CanBeModified() {
		return nil, internal.ErrAlreadyProcessed
	}

	exp.Description = dto.Description
	exp.Category = dto.Category
	exp.ExpenseDate = dto.ExpenseDate
	exp.AmountCents = dto.AmountCents
	if dto.SplitMethod != "" {
		exp.SplitMethod = dto.SplitMethod
	}
	exp.SplitPercentages = dto.SplitPercentages
	exp.SplitAmounts = dto.SplitAmounts
	exp.Notes = dto.Notes
	exp.ChildIDs = dto.ChildIDs
	exp.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, exp); err != nil {
		s.logger.Error("failed to update expense", "error", err, "expense_id", id)
		return nil, err
	}
	return exp, nil
}

// Approve moves a pending expense to approved, appends the audit entry and
// publishes the approval so the counterpart's payment obligation and the
// payer's notification get created.
func (s *Service) Approve(ctx context.Context, id string, actor Actor) (*Expense, error) {
	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.CanBeApproved() {
		s.logger.Warn("cannot approve expense in current status",
			"expense_id", id, "status", exp.Status)
		return nil, internal.ErrAlreadyProcessed
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusApproved, nil); err != nil {
		s.logger.Error("failed to update expense status", "error", err, "expense_id", id)
		return nil, err
	}
	exp.Status = StatusApproved
	exp.UpdatedAt = time.Now()
	metrics.TransitionsTotal.WithLabelValues("approve").Inc()

	s.recordAudit(ctx, id, StatusApproved, actor, nil)

	counterpart, err := s.resolver.CoParentOf(ctx, exp.PaidBy)
	if err != nil {
		s.logger.Error("approval side effects skipped: co-parent lookup failed",
			"error", err, "expense_id", id, "payer_id", exp.PaidBy)
		return exp, nil
	}

	event := events.NewExpenseApprovedEvent(
		exp.ID, exp.Description, exp.PaidBy, counterpart, actor.String(), ShareFor(exp, counterpart))
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.logger.Error("approval side effects incomplete", "error", err, "expense_id", id)
	}

	s.logger.Info("expense approved", "expense_id", id, "actor", actor.String(),
		"counterpart_id", counterpart, "counterpart_cents", ShareFor(exp, counterpart))
	return exp, nil
}

// Dispute moves a pending expense to disputed. The note is mandatory and
// lands both on the expense and in the audit entry; the counterpart message
// is skipped when the payer disputes their own expense.
func (s *Service) Dispute(ctx context.Context, id string, actor Actor, note string) (*Expense, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, internal.ErrEmptyDisputeNote
	}

	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.CanBeDisputed() {
		s.logger.Warn("cannot dispute expense in current status",
			"expense_id", id, "status", exp.Status)
		return nil, internal.ErrAlreadyProcessed
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusDisputed, &note); err != nil {
		s.logger.Error("failed to update expense status", "error", err, "expense_id", id)
		return nil, err
	}
	exp.Status = StatusDisputed
	exp.DisputeNotes = note
	exp.UpdatedAt = time.Now()
	metrics.TransitionsTotal.WithLabelValues("dispute").Inc()

	s.recordAudit(ctx, id, StatusDisputed, actor, &note)

	event := events.NewExpenseDisputedEvent(exp.ID, exp.Description, exp.PaidBy, actor.String(), note)
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.logger.Error("dispute side effects incomplete", "error", err, "expense_id", id)
	}

	if err := s.notifier.NotifyCounterpart(ctx, exp, actor, NoticeDispute, ""); err != nil {
		s.logger.Error("dispute message not delivered", "error", err, "expense_id", id)
	}

	s.logger.Info("expense disputed", "expense_id", id, "actor", actor.String())
	return exp, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string, actor Actor) (*Expense, error) {
	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.CanBeMarkedPaid() {
		return nil, internal.ErrAlreadyProcessed
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusPaid, nil); err != nil {
		s.logger.Error("failed to update expense status", "error", err, "expense_id", id)
		return nil, err
	}
	exp.Status = StatusPaid
	exp.UpdatedAt = time.Now()
	metrics.TransitionsTotal.WithLabelValues("pay").Inc()

	s.recordAudit(ctx, id, StatusPaid, actor, nil)

	event := events.NewExpensePaidEvent(exp.ID, exp.Description, exp.PaidBy, actor.String())
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.logger.Error("paid side effects incomplete", "error", err, "expense_id", id)
	}

	s.logger.Info("expense marked paid", "expense_id", id, "actor", actor.String())
	return exp, nil
}

// Reopen puts an already-answered expense back to pending for
// re-submission. No current client calls it, but the machine allows it.
func (s *Service) Reopen(ctx context.Context, id string, actor Actor) (*Expense, error) {
	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.CanBeReopened() {
		return nil, internal.ErrAlreadyProcessed
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusPending, nil); err != nil {
		s.logger.Error("failed to update expense status", "error", err, "expense_id", id)
		return nil, err
	}
	exp.Status = StatusPending
	exp.UpdatedAt = time.Now()
	metrics.TransitionsTotal.WithLabelValues("reopen").Inc()

	s.recordAudit(ctx, id, StatusPending, actor, nil)

	s.logger.Info("expense reopened", "expense_id", id, "actor", actor.String())
	return exp, nil
}

// DeleteExpense removes the expense and its child associations. Audit rows
// are kept; the trail outlives the expense row.
func (s *Service) DeleteExpense(ctx context.Context, id, userID string) error {
	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !exp.IsPayer(userID) {
		return internal.ErrNotExpenseOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return err
	}

	s.logger.Info("expense deleted", "expense_id", id, "user_id", userID)
	return nil
}

func (s *Service) Trail(ctx context.Context, id, requesterID string) ([]*auditDatamodel.Entry, error) {
	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(ctx, exp, requesterID) {
		return nil, internal.ErrExpenseNotFound
	}
	return s.recorder.Trail(ctx, id)
}

// MonthlySummaryFor aggregates the user's own expenses by category for one
// calendar month.
func (s *Service) MonthlySummaryFor(ctx context.Context, userID string, year int, month time.Month) (*MonthlySummary, error) {
	expenses, err := s.repo.ListByPayerAndMonth(ctx, userID, year, month)
	if err != nil {
		s.logger.Error("failed to load expenses for summary", "error", err, "user_id", userID)
		return nil, err
	}

	byCategory := make(map[string]*CategorySummary)
	summary := &MonthlySummary{Year: year, Month: int(month)}
	for _, e := range expenses {
		category := e.Category
		if category == "" {
			category = "other"
		}
		row, ok := byCategory[category]
		if !ok {
			row = &CategorySummary{Category: category}
			byCategory[category] = row
		}
		row.Count++
		row.TotalCents += e.AmountCents
		summary.TotalCents += e.AmountCents
	}

	for _, row := range byCategory {
		summary.Categories = append(summary.Categories, *row)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		if summary.Categories[i].TotalCents != summary.Categories[j].TotalCents {
			return summary.Categories[i].TotalCents > summary.Categories[j].TotalCents
		}
		return summary.Categories[i].Category < summary.Categories[j].Category
	})

	return summary, nil
}

// OwedToUserTotal sums the co-parent's share over everything the user paid
// for. Without a linked co-parent there is nobody to owe, so the total is
// zero.
func (s *Service) OwedToUserTotal(ctx context.Context, userID string) (int64, error) {
	coParent, err := s.resolver.CoParentOf(ctx, userID)
	if err != nil || coParent == "" {
		return 0, nil
	}

	expenses, err := s.repo.ListByPayer(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load expenses for owed summary", "error", err, "user_id", userID)
		return 0, err
	}
	return OwedToUser(expenses, userID, coParent), nil
}

func (s *Service) canView(ctx context.Context, exp *Expense, requesterID string) bool {
	if exp.IsPayer(requesterID) {
		return true
	}
	coParent, err := s.resolver.CoParentOf(ctx, requesterID)
	return err == nil && coParent == exp.PaidBy
}

func (s *Service) recordAudit(ctx context.Context, expenseID, status string, actor Actor, note *string) {
	if err := s.recorder.Record(ctx, expenseID, status, actor.String(), note); err != nil {
		s.logger.Error("audit entry not recorded",
			"error", err, "expense_id", expenseID, "status", status, "actor", actor.String())
	}
}
