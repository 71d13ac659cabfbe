package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"guysocial/internal/chat/service"
	"guysocial/internal/config"
	"guysocial/internal/media"
	"guysocial/internal/notify"
	"guysocial/internal/platform"
	"guysocial/internal/realtime"
	"guysocial/internal/session"
)

// Application is the fully wired client-side messaging stack for one
// process.
type Application struct {
	Config        *config.Config
	Client        *platform.Client
	Session       *session.Provider
	Bus           *realtime.RedisBus
	Messages      service.MessageService
	Conversations service.ConversationService
	Notifier      *notify.Registry
}

// ProvideConnectedClient connects every backend and hands wire the
// cleanup that tears them down again.
func ProvideConnectedClient(ctx context.Context, cfg *config.Config) (*platform.Client, func(), error) {
	client := platform.NewClient(cfg)
	if err := client.Connect(ctx); err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

func ProvideDB(client *platform.Client) *gorm.DB {
	return client.DB
}

func ProvideRedis(client *platform.Client) *redis.Client {
	return client.Redis
}

func ProvideStorage(client *platform.Client) media.ObjectStorage {
	return client.Storage
}

func ProvideUploader(storage media.ObjectStorage, cfg *config.Config) *media.Uploader {
	return media.NewUploader(storage, cfg.Messaging.MaxAttachmentBytes)
}

// ProvideNotifier builds the observer registry with the persistent
// store observer already subscribed.
func ProvideNotifier(db *gorm.DB) *notify.Registry {
	registry := notify.NewRegistry()
	registry.Subscribe(notify.NewStoreObserver(notify.NewNotificationRepository(db)))
	return registry
}
