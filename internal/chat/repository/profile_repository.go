package repository

import (
	"context"

	"guysocial/internal/common"
	"guysocial/internal/dbmysql"

	"gorm.io/gorm"
)

// ProfileRepository resolves the referenced users of a conversation
// list in one query.
type ProfileRepository interface {
	ByIDs(ctx context.Context, userIDs []uint64) (map[uint64]*dbmysql.Profile, error)
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) ByIDs(ctx context.Context, userIDs []uint64) (map[uint64]*dbmysql.Profile, error) {
	if len(userIDs) == 0 {
		return map[uint64]*dbmysql.Profile{}, nil
	}

	var profiles []*dbmysql.Profile
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&profiles).Error
	if err != nil {
		return nil, common.NewDependencyError("profile store", err)
	}

	byID := make(map[uint64]*dbmysql.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}
	return byID, nil
}
