package postgres

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/coparently/coparently/internal"
	expenseDatamodel "github.com/coparently/coparently/internal/core/datamodel/expense"
	"github.com/coparently/coparently/internal/expense"
)

// ExpenseRepository implements the expense.Repository interface using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, exp *expense.Expense) error {
	row := expense.ToDataModel(exp)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return replaceChildren(tx, exp.ID, exp.ChildIDs)
	})
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*expense.Expense, error) {
	var row expenseDatamodel.Expense
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}

	exp := expense.FromDataModel(&row)
	childIDs, err := r.childIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	exp.ChildIDs = childIDs
	return exp, nil
}

func (r *ExpenseRepository) ListForParties(ctx context.Context, partyIDs []string, params expense.QueryParams) ([]*expense.Expense, error) {
	query := r.db.WithContext(ctx).
		Model(&expenseDatamodel.Expense{}).
		Where("paid_by IN ?", partyIDs)

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(description) LIKE ? OR LOWER(notes) LIKE ?", pattern, pattern)
	}

	var rows []*expenseDatamodel.Expense
	err := query.
		Order("expense_date DESC, created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return expense.FromDataModelSlice(rows), nil
}

func (r *ExpenseRepository) ListByPayer(ctx context.Context, payerID string) ([]*expense.Expense, error) {
	var rows []*expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Where("paid_by = ?", payerID).
		Order("expense_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return expense.FromDataModelSlice(rows), nil
}

func (r *ExpenseRepository) ListByPayerAndMonth(ctx context.Context, payerID string, year int, month time.Month) ([]*expense.Expense, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var rows []*expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Where("paid_by = ? AND expense_date >= ? AND expense_date < ?", payerID, from, to).
		Order("expense_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return expense.FromDataModelSlice(rows), nil
}

func (r *ExpenseRepository) Update(ctx context.Context, exp *expense.Expense) error {
	exp.UpdatedAt = time.Now()
	row := expense.ToDataModel(exp)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		return replaceChildren(tx, exp.ID, exp.ChildIDs)
	})
}

// UpdateStatus writes only the status-related columns. The dispute note
// column is left untouched unless a note is supplied.
func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id, status string, disputeNote *string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if disputeNote != nil {
		updates["dispute_notes"] = *disputeNote
	}

	result := r.db.WithContext(ctx).
		Model(&expenseDatamodel.Expense{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrExpenseNotFound
	}
	return nil
}

// Delete removes the child-association rows and the expense row in one
// transaction so a crash can never leave orphaned associations.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", id).Delete(&expenseDatamodel.ExpenseChild{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&expenseDatamodel.Expense{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrExpenseNotFound
		}
		return nil
	})
}

func (r *ExpenseRepository) childIDs(ctx context.Context, expenseID string) ([]string, error) {
	var rows []expenseDatamodel.ExpenseChild
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ChildID
	}
	return ids, nil
}

func replaceChildren(tx *gorm.DB, expenseID string, childIDs []string) error {
	if err := tx.Where("expense_id = ?", expenseID).Delete(&expenseDatamodel.ExpenseChild{}).Error; err != nil {
		return err
	}
	for _, childID := range childIDs {
		row := expenseDatamodel.ExpenseChild{ExpenseID: expenseID, ChildID: childID}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
