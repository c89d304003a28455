package audit

import "time"

// Entry is one immutable row in an expense's status history. Rows are only
// ever inserted; there is no update or delete path.
type Entry struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ExpenseID string    `json:"expense_id" gorm:"column:expense_id;not null;index"`
	Status    string    `json:"status" gorm:"not null"`
	ActorID   string    `json:"actor_id" gorm:"column:actor_id;not null"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Entry) TableName() string {
	return "expense_audit_trail"
}
