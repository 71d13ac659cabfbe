package dbmysql

import (
	"time"
)

// Profile is the referenced view of a user. Identity itself (accounts,
// credentials) lives with the external identity provider; this table
// only mirrors what conversation rendering needs.
type Profile struct {
	UserID      uint64    `gorm:"primaryKey;column:user_id" json:"user_id"`
	Handle      string    `gorm:"column:handle;uniqueIndex;size:50;not null" json:"handle"`
	DisplayName string    `gorm:"column:display_name;size:100" json:"display_name"`
	AvatarURL   string    `gorm:"column:avatar_url;size:512" json:"avatar_url"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
