package payment

import "time"

const (
	ObligationStatusPending = "pending"
	ObligationStatusSettled = "settled"
)

// Obligation records that a debtor owes a creditor their share of an
// approved expense. Created on approval, settled when the expense is marked
// paid.
type Obligation struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	ExpenseID   string     `json:"expense_id" gorm:"column:expense_id;not null;index"`
	DebtorID    string     `json:"debtor_id" gorm:"column:debtor_id;not null;index"`
	CreditorID  string     `json:"creditor_id" gorm:"column:creditor_id;not null"`
	AmountCents int64      `json:"amount_cents" gorm:"column:amount_cents;not null"`
	Status      string     `json:"status" gorm:"default:pending"`
	SettledAt   *time.Time `json:"settled_at,omitempty" gorm:"column:settled_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Obligation) TableName() string {
	return "payment_obligations"
}
