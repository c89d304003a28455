package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDatamodel "github.com/coparently/coparently/internal/core/datamodel/audit"
)

type Repository interface {
	Insert(ctx context.Context, entry *auditDatamodel.Entry) error
	ListByExpense(ctx context.Context, expenseID string) ([]*auditDatamodel.Entry, error)
}

// Recorder appends audit entries for expense status changes. Entries are
// append only and survive deletion of the expense they describe.
type Recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record writes one entry. The caller decides whether a failure here is
// fatal; status transitions treat it as best effort.
func (r *Recorder) Record(ctx context.Context, expenseID, status, actorID string, note *string) error {
	entry := &auditDatamodel.Entry{
		ID:        uuid.New().String(),
		ExpenseID: expenseID,
		Status:    status,
		ActorID:   actorID,
		Note:      note,
		CreatedAt: time.Now(),
	}
	return r.repo.Insert(ctx, entry)
}

// Trail returns the entries for an expense in chronological order.
func (r *Recorder) Trail(ctx context.Context, expenseID string) ([]*auditDatamodel.Entry, error) {
	return r.repo.ListByExpense(ctx, expenseID)
}
