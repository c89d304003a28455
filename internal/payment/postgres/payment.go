package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	paymentDatamodel "github.com/coparently/coparently/internal/core/datamodel/payment"
	"github.com/coparently/coparently/internal/payment"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Insert(ctx context.Context, o *paymentDatamodel.Obligation) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *PaymentRepository) ListByExpense(ctx context.Context, expenseID string) ([]*paymentDatamodel.Obligation, error) {
	var rows []*paymentDatamodel.Obligation
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PaymentRepository) ListForUser(ctx context.Context, userID string, status string) ([]*paymentDatamodel.Obligation, error) {
	query := r.db.WithContext(ctx).
		Where("debtor_id = ? OR creditor_id = ?", userID, userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []*paymentDatamodel.Obligation
	err := query.Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PaymentRepository) SettleByExpense(ctx context.Context, expenseID string, settledAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&paymentDatamodel.Obligation{}).
		Where("expense_id = ? AND status = ?", expenseID, paymentDatamodel.ObligationStatusPending).
		Updates(map[string]interface{}{
			"status":     paymentDatamodel.ObligationStatusSettled,
			"settled_at": settledAt,
		}).Error
}
