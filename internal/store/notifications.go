package store

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"fichaje/internal/model"
	"fichaje/storage/database"
)

type NotificationStore struct {
	db *gorm.DB
}

var (
	notificationStore     *NotificationStore
	notificationStoreOnce sync.Once
)

func Notifications() *NotificationStore {
	notificationStoreOnce.Do(func() {
		notificationStore = &NotificationStore{db: database.DB()}
	})
	return notificationStore
}

func (s *NotificationStore) Create(ctx context.Context, task *model.NotificationTask) error {
	return s.db.WithContext(ctx).Create(task).Error
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID int64, limit int) ([]model.NotificationTask, error) {
	var tasks []model.NotificationTask
	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&tasks).Error
	return tasks, err
}
