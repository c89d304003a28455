package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/coparently/coparently/internal"
	notificationDatamodel "github.com/coparently/coparently/internal/core/datamodel/notification"
	"github.com/coparently/coparently/internal/notification"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *notificationDatamodel.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*notificationDatamodel.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var rows []*notificationDatamodel.Notification
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", &now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationNotFound)
	}
	return nil
}
