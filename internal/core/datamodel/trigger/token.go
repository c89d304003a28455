package trigger

import "time"

// ActionToken addresses a single expense from outside an authenticated
// session, e.g. the approve/clarify links in a share email. Whether the
// token is still actionable is decided by the expense status, not by a
// used flag: acting on a non-pending expense fails as already processed.
type ActionToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	ExpenseID string    `json:"expense_id" gorm:"column:expense_id;not null;index"`
	SentTo    string    `json:"sent_to,omitempty" gorm:"column:sent_to"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (ActionToken) TableName() string {
	return "action_tokens"
}
