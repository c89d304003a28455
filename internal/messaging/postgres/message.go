package postgres

import (
	"context"

	"gorm.io/gorm"

	messageDatamodel "github.com/coparently/coparently/internal/core/datamodel/message"
	"github.com/coparently/coparently/internal/messaging"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) messaging.Repository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Insert(ctx context.Context, msg *messageDatamodel.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepository) ListBetween(ctx context.Context, userA, userB string, limit, offset int) ([]*messageDatamodel.Message, error) {
	var rows []*messageDatamodel.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
