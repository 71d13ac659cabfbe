package dbmysql

import (
	"time"
)

// Notification is a stored message notification, written when an
// inbound message arrives outside the open conversation.
type Notification struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint64     `gorm:"column:user_id;not null;index" json:"user_id"`
	TriggerUserID uint64     `gorm:"column:trigger_user_id;not null" json:"trigger_user_id"`
	MessageID     uint64     `gorm:"column:message_id;not null" json:"message_id"`
	Content       string     `gorm:"column:content;size:255" json:"content"`
	Read          bool       `gorm:"column:is_read;not null;default:false" json:"read"`
	ReadAt        *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
