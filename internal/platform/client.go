package platform

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"guysocial/internal/common"
	"guysocial/internal/config"
	"guysocial/internal/dbmysql"
	"guysocial/internal/media"
)

// Client bundles the backend connections one viewer session needs.
// It is constructed explicitly and passed to whatever needs it; there
// is no package-level instance.
type Client struct {
	cfg *config.Config

	DB      *gorm.DB
	Redis   *redis.Client
	Storage *media.MinIOStorage
}

func NewClient(cfg *config.Config) *Client {
	return &Client{cfg: cfg}
}

// Connect opens every backend connection. Partial failures roll back
// whatever already connected so a failed Connect never leaks handles.
func (c *Client) Connect(ctx context.Context) error {
	db, err := dbmysql.NewMySQL(c.cfg)
	if err != nil {
		return common.NewDependencyError("mysql", err)
	}
	c.DB = db

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.cfg.Redis.Addr,
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		c.closeDB()
		return common.NewDependencyError("redis", err)
	}
	c.Redis = rdb
	log.Println("✅ Connected to Redis successfully")

	storage, err := media.NewMinIOStorage(c.cfg)
	if err != nil {
		c.closeDB()
		_ = rdb.Close()
		c.Redis = nil
		return common.NewDependencyError("object storage", err)
	}
	c.Storage = storage

	return nil
}

// Close releases every open connection. Safe to call after a failed
// Connect.
func (c *Client) Close() error {
	var firstErr error

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing redis: %w", err)
		}
		c.Redis = nil
	}

	if err := c.closeDB(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

func (c *Client) closeDB() error {
	if c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	c.DB = nil
	if err != nil {
		return fmt.Errorf("acquiring sql db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("closing mysql: %w", err)
	}
	return nil
}
