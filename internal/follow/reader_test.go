package follow

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"guysocial/internal/common"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return gormDB, mock, cleanup
}

func TestReader_IsFollowing(t *testing.T) {
	tests := []struct {
		name      string
		count     int64
		expected  bool
	}{
		{name: "edge exists", count: 1, expected: true},
		{name: "no edge", count: 0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock, cleanup := setupTestDB(t)
			defer cleanup()

			mock.ExpectQuery(regexp.QuoteMeta(
				"SELECT count(*) FROM `follow_edges` WHERE follower_id = ? AND following_id = ?")).
				WithArgs(1, 2).
				WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(tt.count))

			got, err := NewReader(gormDB).IsFollowing(context.Background(), 1, 2)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReader_IsFollowing_StoreDown(t *testing.T) {
	gormDB, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count").
		WillReturnError(errors.New("connection refused"))

	_, err := NewReader(gormDB).IsFollowing(context.Background(), 1, 2)

	var depErr *common.DependencyError
	assert.ErrorAs(t, err, &depErr)
}

func TestReader_ListFollowing(t *testing.T) {
	gormDB, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `following_id` FROM `follow_edges` WHERE follower_id = ? ORDER BY created_at DESC")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"following_id"}).AddRow(2).AddRow(3))

	ids, err := NewReader(gormDB).ListFollowing(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, []uint64{2, 3}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_ListFollowing_Empty(t *testing.T) {
	gormDB, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT `following_id`").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"following_id"}))

	ids, err := NewReader(gormDB).ListFollowing(context.Background(), 9)

	assert.NoError(t, err)
	assert.Empty(t, ids)
}
