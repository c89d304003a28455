package notification

import "time"

const (
	TypeExpenseApproved = "expense_approved"
	TypeExpenseDisputed = "expense_disputed"
	TypeExpensePaid     = "expense_paid"
	TypeExpenseShared   = "expense_shared"
)

// Notification is a fire-and-forget in-app notice. RelatedID references the
// expense that produced it.
type Notification struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	UserID    string     `json:"user_id" gorm:"column:user_id;not null;index"`
	Type      string     `json:"type" gorm:"not null"`
	Message   string     `json:"message" gorm:"not null"`
	RelatedID string     `json:"related_id,omitempty" gorm:"column:related_id"`
	ReadAt    *time.Time `json:"read_at,omitempty" gorm:"column:read_at"`
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Notification) TableName() string {
	return "notifications"
}
