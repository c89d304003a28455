package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/coparently/coparently/internal/audit"
	auditDatamodel "github.com/coparently/coparently/internal/core/datamodel/audit"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, entry *auditDatamodel.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AuditRepository) ListByExpense(ctx context.Context, expenseID string) ([]*auditDatamodel.Entry, error) {
	var rows []*auditDatamodel.Entry
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
