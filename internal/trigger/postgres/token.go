package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/coparently/coparently/internal"
	triggerDatamodel "github.com/coparently/coparently/internal/core/datamodel/trigger"
	"github.com/coparently/coparently/internal/trigger"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) trigger.Repository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Insert(ctx context.Context, token *triggerDatamodel.ActionToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*triggerDatamodel.ActionToken, error) {
	var row triggerDatamodel.ActionToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTokenNotFound
		}
		return nil, err
	}
	return &row, nil
}
