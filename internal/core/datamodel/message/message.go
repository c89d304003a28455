package message

import "time"

const AttachmentTypeExpenseReference = "expense_reference"

// Message is a row in the co-parent conversation. AttachmentRef carries an
// expense id when AttachmentType is expense_reference so the client can
// render the expense card inline.
type Message struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	SenderID       string    `json:"sender_id" gorm:"column:sender_id;not null"`
	ReceiverID     string    `json:"receiver_id" gorm:"column:receiver_id;not null"`
	Text           string    `json:"text" gorm:"not null"`
	AttachmentType *string   `json:"attachment_type,omitempty" gorm:"column:attachment_type"`
	AttachmentRef  *string   `json:"attachment_ref,omitempty" gorm:"column:attachment_ref"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Message) TableName() string {
	return "messages"
}
