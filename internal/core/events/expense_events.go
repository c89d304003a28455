package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeExpenseApproved = "expense.approved"
	EventTypeExpenseDisputed = "expense.disputed"
	EventTypeExpensePaid     = "expense.paid"
	EventTypeExpenseShared   = "expense.shared"
)

// ExpenseApprovedEvent is published after an approval is committed. It
// carries the counterpart's share so downstream handlers do not need to
// re-run the allocator.
type ExpenseApprovedEvent struct {
	BaseEvent
	ExpenseID        string `json:"expense_id"`
	Description      string `json:"description"`
	PayerID          string `json:"payer_id"`
	CounterpartID    string `json:"counterpart_id"`
	CounterpartCents int64  `json:"counterpart_cents"`
	ActorID          string `json:"actor_id"`
}

func NewExpenseApprovedEvent(expenseID, description, payerID, counterpartID, actorID string, counterpartCents int64) *ExpenseApprovedEvent {
	return &ExpenseApprovedEvent{
		BaseEvent:        newBase(EventTypeExpenseApproved),
		ExpenseID:        expenseID,
		Description:      description,
		PayerID:          payerID,
		CounterpartID:    counterpartID,
		CounterpartCents: counterpartCents,
		ActorID:          actorID,
	}
}

type ExpenseDisputedEvent struct {
	BaseEvent
	ExpenseID   string `json:"expense_id"`
	Description string `json:"description"`
	PayerID     string `json:"payer_id"`
	ActorID     string `json:"actor_id"`
	Note        string `json:"note"`
}

func NewExpenseDisputedEvent(expenseID, description, payerID, actorID, note string) *ExpenseDisputedEvent {
	return &ExpenseDisputedEvent{
		BaseEvent:   newBase(EventTypeExpenseDisputed),
		ExpenseID:   expenseID,
		Description: description,
		PayerID:     payerID,
		ActorID:     actorID,
		Note:        note,
	}
}

type ExpensePaidEvent struct {
	BaseEvent
	ExpenseID   string `json:"expense_id"`
	Description string `json:"description"`
	PayerID     string `json:"payer_id"`
	ActorID     string `json:"actor_id"`
}

func NewExpensePaidEvent(expenseID, description, payerID, actorID string) *ExpensePaidEvent {
	return &ExpensePaidEvent{
		BaseEvent:   newBase(EventTypeExpensePaid),
		ExpenseID:   expenseID,
		Description: description,
		PayerID:     payerID,
		ActorID:     actorID,
	}
}

type ExpenseSharedEvent struct {
	BaseEvent
	ExpenseID     string `json:"expense_id"`
	Description   string `json:"description"`
	PayerID       string `json:"payer_id"`
	CounterpartID string `json:"counterpart_id"`
}

func NewExpenseSharedEvent(expenseID, description, payerID, counterpartID string) *ExpenseSharedEvent {
	return &ExpenseSharedEvent{
		BaseEvent:     newBase(EventTypeExpenseShared),
		ExpenseID:     expenseID,
		Description:   description,
		PayerID:       payerID,
		CounterpartID: counterpartID,
	}
}

func newBase(eventType string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
	}
}
