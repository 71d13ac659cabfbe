package dbmysql

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// FollowEdge records that follower_id follows following_id. Unique per
// ordered pair; created on follow, hard deleted on unfollow.
type FollowEdge struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID  uint64    `gorm:"column:follower_id;not null;index:idx_follow_pair,unique" json:"follower_id"`
	FollowingID uint64    `gorm:"column:following_id;not null;index:idx_follow_pair,unique" json:"following_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (e *FollowEdge) BeforeCreate(tx *gorm.DB) error {
	if e.FollowerID == e.FollowingID {
		return errors.New("self-follow is not allowed")
	}
	return nil
}
