package expense

import (
	"strings"
	"time"

	"github.com/coparently/coparently/internal"
)

// CreateExpenseDTO is the request payload for recording an expense.
type CreateExpenseDTO struct {
	Description      string             `json:"description"`
	Category         string             `json:"category"`
	ExpenseDate      time.Time          `json:"expense_date"`
	AmountCents      int64              `json:"amount_cents"`
	SplitMethod      string             `json:"split_method"`
	SplitPercentages map[string]float64 `json:"split_percentages,omitempty"`
	SplitAmounts     map[string]int64   `json:"split_amounts,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	ChildIDs         []string           `json:"child_ids,omitempty"`
}

func (dto CreateExpenseDTO) Validate() error {
	if dto.AmountCents <= 0 {
		return internal.NewValidationError("amount must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	if strings.TrimSpace(dto.Description) == "" {
		return internal.NewValidationError("description is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Description) > 500 {
		return internal.NewValidationError("description must be less than 500 characters", internal.ErrCodeValidationFailed)
	}
	if dto.ExpenseDate.IsZero() {
		return internal.NewValidationError("expense date is required", internal.ErrCodeInvalidDate)
	}
	if dto.ExpenseDate.After(time.Now()) {
		return internal.NewValidationError("expense date cannot be in the future", internal.ErrCodeInvalidDate)
	}
	switch dto.SplitMethod {
	case SplitMethodNone, SplitMethodFiftyFifty, SplitMethodCustom:
	case "":
		// defaults to none
	default:
		return internal.NewValidationError("split method must be none, 50/50 or custom", internal.ErrCodeValidationFailed)
	}
	// percentage range is enforced here, not in the allocator
	for party, pct := range dto.SplitPercentages {
		if pct < 0 || pct > 100 {
			return internal.NewValidationError("split percentage for "+party+" must be between 0 and 100", internal.ErrCodeValidationFailed)
		}
	}
	for party, cents := range dto.SplitAmounts {
		if cents < 0 {
			return internal.NewValidationError("split amount for "+party+" must not be negative", internal.ErrCodeInvalidAmount)
		}
	}
	return nil
}

// UpdateExpenseDTO replaces the editable fields of a pending expense.
type UpdateExpenseDTO struct {
	Description      string             `json:"description"`
	Category         string             `json:"category"`
	ExpenseDate      time.Time          `json:"expense_date"`
	AmountCents      int64              `json:"amount_cents"`
	SplitMethod      string             `json:"split_method"`
	SplitPercentages map[string]float64 `json:"split_percentages,omitempty"`
	SplitAmounts     map[string]int64   `json:"split_amounts,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	ChildIDs         []string           `json:"child_ids,omitempty"`
}

func (dto UpdateExpenseDTO) Validate() error {
	return CreateExpenseDTO{
		Description:      dto.Description,
		Category:         dto.Category,
		ExpenseDate:      dto.ExpenseDate,
		AmountCents:      dto.AmountCents,
		SplitMethod:      dto.SplitMethod,
		SplitPercentages: dto.SplitPercentages,
		SplitAmounts:     dto.SplitAmounts,
	}.Validate()
}

// DisputeDTO carries the mandatory dispute note.
type DisputeDTO struct {
	Note string `json:"note"`
}

func (dto DisputeDTO) Validate() error {
	if strings.TrimSpace(dto.Note) == "" {
		return internal.ErrEmptyDisputeNote
	}
	return nil
}

// QueryParams is an immutable snapshot of list filters. Handlers build one
// per request; nothing holds filter state between calls.
type QueryParams struct {
	Status   string
	Category string
	Search   string
	Limit    int
	Offset   int
}

const defaultPageSize = 20

// Normalized returns a copy with pagination clamped to sane bounds.
func (p QueryParams) Normalized() QueryParams {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = defaultPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// CategorySummary is one row of the monthly aggregation.
type CategorySummary struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	TotalCents int64  `json:"total_cents"`
}

// MonthlySummary aggregates a user's expenses for one calendar month.
type MonthlySummary struct {
	Year       int               `json:"year"`
	Month      int               `json:"month"`
	TotalCents int64             `json:"total_cents"`
	Categories []CategorySummary `json:"categories"`
}
