package expense

import (
	"time"

	expenseDatamodel "github.com/coparently/coparently/internal/core/datamodel/expense"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDisputed = "disputed"
	StatusPaid     = "paid"
)

const (
	SplitMethodNone       = "none"
	SplitMethodFiftyFifty = "50/50"
	SplitMethodCustom     = "custom"
)

// KnownCategories are the suggested expense categories. Category is free
// text, so anything else is accepted as a custom category.
var KnownCategories = []string{"medical", "education", "clothing", "activities", "food", "other"}

// Actor identifies who performed a status transition. Non-interactive
// transitions (emailed action links) use the system actor instead of a
// magic user id.
type Actor struct {
	userID string
	system bool
}

func UserActor(id string) Actor {
	return Actor{userID: id}
}

func SystemActor() Actor {
	return Actor{system: true}
}

func (a Actor) IsSystem() bool {
	return a.system
}

func (a Actor) UserID() string {
	return a.userID
}

// String is what gets persisted in audit rows.
func (a Actor) String() string {
	if a.system {
		return "system"
	}
	return a.userID
}

type Expense struct {
	ID               string             `json:"id"`
	Description      string             `json:"description"`
	Category         string             `json:"category"`
	ExpenseDate      time.Time          `json:"expense_date"`
	AmountCents      int64              `json:"amount_cents"`
	PaidBy           string             `json:"paid_by"`
	Status           string             `json:"status"`
	SplitMethod      string             `json:"split_method"`
	SplitPercentages map[string]float64 `json:"split_percentages,omitempty"`
	SplitAmounts     map[string]int64   `json:"split_amounts,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	DisputeNotes     string             `json:"dispute_notes,omitempty"`
	ChildIDs         []string           `json:"child_ids,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// CanBeApproved and CanBeDisputed hold only while the expense still awaits
// its first response. The machine is deliberately loose everywhere else.
func (e *Expense) CanBeApproved() bool {
	return e.Status == StatusPending
}

func (e *Expense) CanBeDisputed() bool {
	return e.Status == StatusPending
}

func (e *Expense) CanBeMarkedPaid() bool {
	return e.Status != StatusPaid
}

func (e *Expense) CanBeReopened() bool {
	return e.Status != StatusPending
}

func (e *Expense) CanBeModified() bool {
	return e.Status == StatusPending
}

func (e *Expense) IsPayer(userID string) bool {
	return e.PaidBy == userID
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:               e.ID,
		Description:      e.Description,
		Category:         e.Category,
		ExpenseDate:      e.ExpenseDate,
		AmountCents:      e.AmountCents,
		PaidBy:           e.PaidBy,
		Status:           e.Status,
		SplitMethod:      e.SplitMethod,
		SplitPercentages: expenseDatamodel.SplitPercentages(e.SplitPercentages),
		SplitAmounts:     expenseDatamodel.SplitAmounts(e.SplitAmounts),
		Notes:            e.Notes,
		DisputeNotes:     e.DisputeNotes,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:               e.ID,
		Description:      e.Description,
		Category:         e.Category,
		ExpenseDate:      e.ExpenseDate,
		AmountCents:      e.AmountCents,
		PaidBy:           e.PaidBy,
		Status:           e.Status,
		SplitMethod:      e.SplitMethod,
		SplitPercentages: map[string]float64(e.SplitPercentages),
		SplitAmounts:     map[string]int64(e.SplitAmounts),
		Notes:            e.Notes,
		DisputeNotes:     e.DisputeNotes,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func FromDataModelSlice(expenses []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(expenses))
	for i, e := range expenses {
		result[i] = FromDataModel(e)
	}
	return result
}
