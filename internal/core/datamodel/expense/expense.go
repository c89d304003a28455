package expense

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// SplitPercentages maps a party id to its percentage of the total (0-100).
// Stored as jsonb.
type SplitPercentages map[string]float64

func (p SplitPercentages) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *SplitPercentages) Scan(src interface{}) error {
	return scanJSON(src, p)
}

// SplitAmounts maps a party id to an absolute share in cents. When both maps
// are present on an expense, amounts win.
type SplitAmounts map[string]int64

func (a SplitAmounts) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *SplitAmounts) Scan(src interface{}) error {
	return scanJSON(src, a)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported source type for jsonb column")
	}
}

// Expense is the persistence model for a shared expense between co-parents.
type Expense struct {
	ID               string           `json:"id" gorm:"primaryKey"`
	Description      string           `json:"description" gorm:"not null"`
	Category         string           `json:"category"`
	ExpenseDate      time.Time        `json:"expense_date" gorm:"column:expense_date;type:date"`
	AmountCents      int64            `json:"amount_cents" gorm:"column:amount_cents;not null"`
	PaidBy           string           `json:"paid_by" gorm:"column:paid_by;not null"`
	Status           string           `json:"status" gorm:"default:pending"`
	SplitMethod      string           `json:"split_method" gorm:"column:split_method;default:none"`
	SplitPercentages SplitPercentages `json:"split_percentages,omitempty" gorm:"column:split_percentages;type:jsonb"`
	SplitAmounts     SplitAmounts     `json:"split_amounts,omitempty" gorm:"column:split_amounts;type:jsonb"`
	Notes            string           `json:"notes,omitempty"`
	DisputeNotes     string           `json:"dispute_notes,omitempty" gorm:"column:dispute_notes"`
	CreatedAt        time.Time        `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Expense) TableName() string {
	return "expenses"
}

// ExpenseChild associates an expense with a child. Informational only; the
// allocator never reads it.
type ExpenseChild struct {
	ExpenseID string `json:"expense_id" gorm:"column:expense_id;primaryKey"`
	ChildID   string `json:"child_id" gorm:"column:child_id;primaryKey"`
}

func (ExpenseChild) TableName() string {
	return "expense_children"
}
