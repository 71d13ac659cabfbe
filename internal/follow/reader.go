package follow

import (
	"context"

	"guysocial/internal/common"
	"guysocial/internal/dbmysql"

	"gorm.io/gorm"
)

// Reader is a read-only view over the follow graph. It is consulted as
// an authorization gate before every fetch and send.
type Reader interface {
	IsFollowing(ctx context.Context, followerID, followingID uint64) (bool, error)
	ListFollowing(ctx context.Context, followerID uint64) ([]uint64, error)
}

type reader struct {
	db *gorm.DB
}

func NewReader(db *gorm.DB) Reader {
	return &reader{db: db}
}

func (r *reader) IsFollowing(ctx context.Context, followerID, followingID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.FollowEdge{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, common.NewDependencyError("follow store", err)
	}
	return count > 0, nil
}

func (r *reader) ListFollowing(ctx context.Context, followerID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.FollowEdge{}).
		Where("follower_id = ?", followerID).
		Order("created_at DESC").
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, common.NewDependencyError("follow store", err)
	}
	return ids, nil
}
