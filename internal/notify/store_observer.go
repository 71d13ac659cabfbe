package notify

import (
	"context"
	"fmt"
	"time"

	"guysocial/internal/common"
	"guysocial/internal/dbmysql"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *dbmysql.Notification) error
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
	MarkAllRead(ctx context.Context, userID uint64) error
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, notification *dbmysql.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return common.NewDependencyError("notification store", err)
	}
	return nil
}

func (r *notificationRepo) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, common.NewDependencyError("notification store", err)
	}
	return count, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID uint64) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return common.NewDependencyError("notification store", err)
	}
	return nil
}

// StoreObserver persists message notifications so they survive the
// session.
type StoreObserver struct {
	repo NotificationRepository
}

func NewStoreObserver(repo NotificationRepository) *StoreObserver {
	return &StoreObserver{repo: repo}
}

func (s *StoreObserver) Name() string {
	return "store_observer"
}

func (s *StoreObserver) Update(event Event) error {
	notification := &dbmysql.Notification{
		UserID:        event.UserID,
		TriggerUserID: event.TriggerUserID,
		MessageID:     event.MessageID,
		Content:       event.Excerpt,
	}
	if err := s.repo.Create(context.Background(), notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}
