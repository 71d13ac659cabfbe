package repository

import (
	"context"
	"errors"

	"guysocial/internal/common"
	"guysocial/internal/dbmysql"

	"gorm.io/gorm"
)

// MessageRepository wraps the relational store for direct messages.
// History ordering is created_at ascending with insertion id as
// tiebreak, so same-timestamp messages keep insertion order.
type MessageRepository interface {
	FetchBetween(ctx context.Context, userA, userB uint64) ([]*dbmysql.Message, error)
	LastBetween(ctx context.Context, userA, userB uint64) (*dbmysql.Message, error)
	Insert(ctx context.Context, msg *dbmysql.Message) error
	ByID(ctx context.Context, id uint64) (*dbmysql.Message, error)
	MarkDelivered(ctx context.Context, messageID uint64) error
	MarkRead(ctx context.Context, senderID, receiverID uint64) error
	UnreadCount(ctx context.Context, senderID, receiverID uint64) (int64, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

// pairFilter matches messages in either direction between two users.
func pairFilter(q *gorm.DB, userA, userB uint64) *gorm.DB {
	return q.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userA, userB, userB, userA)
}

func (r *messageRepo) FetchBetween(ctx context.Context, userA, userB uint64) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := pairFilter(r.db.WithContext(ctx).Model(&dbmysql.Message{}), userA, userB).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, common.NewDependencyError("message store", err)
	}
	return messages, nil
}

// LastBetween returns the single most recent message between the two
// users, or nil when none has ever been exchanged.
func (r *messageRepo) LastBetween(ctx context.Context, userA, userB uint64) (*dbmysql.Message, error) {
	var msg dbmysql.Message
	err := pairFilter(r.db.WithContext(ctx).Model(&dbmysql.Message{}), userA, userB).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewDependencyError("message store", err)
	}
	return &msg, nil
}

func (r *messageRepo) Insert(ctx context.Context, msg *dbmysql.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return common.NewDependencyError("message store", err)
	}
	return nil
}

func (r *messageRepo) ByID(ctx context.Context, id uint64) (*dbmysql.Message, error) {
	var msg dbmysql.Message
	err := r.db.WithContext(ctx).First(&msg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewDependencyError("message store", err)
	}
	return &msg, nil
}

// MarkDelivered flips the delivered flag. Calling it on an already
// delivered message matches zero rows and is a no-op.
func (r *messageRepo) MarkDelivered(ctx context.Context, messageID uint64) error {
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Message{}).
		Where("id = ? AND is_delivered = ?", messageID, false).
		Update("is_delivered", true).Error
	if err != nil {
		return common.NewDependencyError("message store", err)
	}
	return nil
}

// MarkRead marks every unread message from senderID to receiverID as
// read. Delivered is set in the same update so read never outruns
// delivered. Idempotent.
func (r *messageRepo) MarkRead(ctx context.Context, senderID, receiverID uint64) error {
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Updates(map[string]interface{}{"is_read": true, "is_delivered": true}).Error
	if err != nil {
		return common.NewDependencyError("message store", err)
	}
	return nil
}

func (r *messageRepo) UnreadCount(ctx context.Context, senderID, receiverID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Count(&count).Error
	if err != nil {
		return 0, common.NewDependencyError("message store", err)
	}
	return count, nil
}
