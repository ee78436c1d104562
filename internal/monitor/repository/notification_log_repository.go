package repository

import (
	"context"

	"golang-stock-tracker/internal/entity"

	"gorm.io/gorm"
)

type NotificationLogRepository interface {
	Create(ctx context.Context, log *entity.NotificationLog) error
}

type notificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

func (r *notificationLogRepository) Create(ctx context.Context, log *entity.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
