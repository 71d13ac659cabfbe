//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"guysocial/internal/chat/repository"
	"guysocial/internal/chat/service"
	"guysocial/internal/config"
	"guysocial/internal/follow"
	"guysocial/internal/media"
	"guysocial/internal/realtime"
	"guysocial/internal/session"
)

func InitializeApplication(ctx context.Context) (*Application, func(), error) {
	wire.Build(
		config.Load,
		ProvideConnectedClient,
		ProvideDB,
		ProvideRedis,
		ProvideStorage,
		ProvideUploader,
		ProvideNotifier,
		follow.NewReader,
		repository.NewMessageRepository,
		repository.NewProfileRepository,
		realtime.NewRedisBus,
		session.NewProvider,
		service.NewMessageService,
		service.NewConversationService,
		wire.Bind(new(service.AttachmentUploader), new(*media.Uploader)),
		wire.Bind(new(service.EventPublisher), new(*realtime.RedisBus)),
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil, nil
}
