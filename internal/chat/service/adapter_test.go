package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"guysocial/internal/chat/service/mocks"
	"guysocial/internal/common"
	"guysocial/internal/dbmysql"
	"guysocial/internal/media"
)

type adapterMocks struct {
	messages *mocks.MockMessageRepository
	follows  *mocks.MockReader
	uploader *mocks.MockAttachmentUploader
	events   *mocks.MockEventPublisher
}

func newAdapter(t *testing.T) (MessageService, *adapterMocks) {
	ctrl := gomock.NewController(t)
	m := &adapterMocks{
		messages: mocks.NewMockMessageRepository(ctrl),
		follows:  mocks.NewMockReader(ctrl),
		uploader: mocks.NewMockAttachmentUploader(ctrl),
		events:   mocks.NewMockEventPublisher(ctrl),
	}
	svc := NewMessageService(m.messages, m.follows, m.uploader, m.events)
	return svc, m
}

func TestMessageService_FetchHistory(t *testing.T) {
	svc, m := newAdapter(t)

	m.follows.EXPECT().IsFollowing(gomock.Any(), uint64(1), uint64(2)).Return(true, nil)
	m.messages.EXPECT().FetchBetween(gomock.Any(), uint64(1), uint64(2)).Return([]*dbmysql.Message{
		{ID: 1, SenderID: 1, ReceiverID: 2, Content: "hi"},
	}, nil)

	msgs, err := svc.FetchHistory(context.Background(), 1, 2)

	assert.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Content)
}

func TestMessageService_FetchHistory_NotFollowing(t *testing.T) {
	svc, m := newAdapter(t)

	m.follows.EXPECT().IsFollowing(gomock.Any(), uint64(1), uint64(2)).Return(false, nil)

	_, err := svc.FetchHistory(context.Background(), 1, 2)

	var authErr *common.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "not following", authErr.Reason)
}

func TestMessageService_Send(t *testing.T) {
	svc, m := newAdapter(t)

	m.follows.EXPECT().IsFollowing(gomock.Any(), uint64(1), uint64(2)).Return(true, nil)
	m.messages.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
			assert.False(t, msg.Read)
			assert.False(t, msg.Delivered)
			msg.ID = 99
			return nil
		})
	m.events.EXPECT().PublishMessage(gomock.Any(), gomock.Any()).Return(nil)

	msg, err := svc.Send(context.Background(), SendRequest{
		SenderID:   1,
		ReceiverID: 2,
		Content:    "hi",
	})

	require.NoError(t, err)
	assert.Equal(t, uint64(99), msg.ID)
	assert.Equal(t, "hi", msg.Content)
}

func TestMessageService_Send_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  SendRequest
	}{
		{
			name: "self send",
			req:  SendRequest{SenderID: 1, ReceiverID: 1, Content: "hi"},
		},
		{
			name: "empty send with no attachment",
			req:  SendRequest{SenderID: 1, ReceiverID: 2, Content: "   "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newAdapter(t)

			_, err := svc.Send(context.Background(), tt.req)

			var valErr *common.ValidationError
			assert.ErrorAs(t, err, &valErr)
		})
	}
}

func TestMessageService_Send_NotFollowing(t *testing.T) {
	svc, m := newAdapter(t)

	m.follows.EXPECT().IsFollowing(gomock.Any(), uint64(1), uint64(2)).Return(false, nil)

	_, err := svc.Send(context.Background(), SendRequest{SenderID: 1, ReceiverID: 2, Content: "hi"})

	var authErr *common.AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestMessageService_Send_WithAttachment(t *testing.T) {
	svc, m := newAdapter(t)

	src := &media.SourceFile{Name: "pic.png", Size: 3, MimeType: "image/png", Reader: strings.NewReader("abc")}

	m.follows.EXPECT().IsFollowing(gomock.Any(), uint64(1), uint64(2)).Return(true, nil)
	m.uploader.EXPECT().Upload(gomock.Any(), src, uint64(1), media.CategoryImage).
		Return(&common.Attachment{URL: "http://storage/1/image/1.png", MimeType: "image/png"}, nil)
	m.messages.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
			require.NotNil(t, msg.AttachmentURL)
			assert.Equal(t, "http://storage/1/image/1.png", *msg.AttachmentURL)
			msg.ID = 5
			return nil
		})
	m.events.EXPECT().PublishMessage(gomock.Any(), gomock.Any()).Return(nil)

	msg, err := svc.Send(context.Background(), SendRequest{
		SenderID:   1,
		ReceiverID: 2,
		Attachment: src,
	})

	require.NoError(t, err)
	require.NotNil(t, msg.Attachment())
	assert.Equal(t, "image/png", msg.Attachment().MimeType)
}

func TestMessageService_Send_UploadFailureAbortsSend(t *testing.T) {
	svc, m := newAdapter(t)

	src := &media.SourceFile{Name: "pic.png", Size: 3, MimeType: "image/png", Reader: strings.NewReader("abc")}

	m.follows.EXPECT().IsFollowing(gomock.Any(), uint64(1), uint64(2)).Return(true, nil)
	m.uploader.EXPECT().Upload(gomock.Any(), src, uint64(1), media.CategoryImage).
		Return(nil, common.NewDependencyError("object storage", errors.New("unreachable")))
	// No Insert expected: the send aborts entirely.

	_, err := svc.Send(context.Background(), SendRequest{
		SenderID:   1,
		ReceiverID: 2,
		Content:    "look at this",
		Attachment: src,
	})

	var depErr *common.DependencyError
	assert.ErrorAs(t, err, &depErr)
}

func TestMessageService_Send_ReplyIntegrity(t *testing.T) {
	replyTo := uint64(50)

	tests := []struct {
		name      string
		target    *dbmysql.Message
		expectErr bool
	}{
		{
			name:      "reply target in same conversation",
			target:    &dbmysql.Message{ID: 50, SenderID: 2, ReceiverID: 1},
			expectErr: false,
		},
		{
			name:      "reply target in another conversation",
			target:    &dbmysql.Message{ID: 50, SenderID: 3, ReceiverID: 1},
			expectErr: true,
		},
		{
			name:      "reply target missing",
			target:    nil,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAdapter(t)

			m.follows.EXPECT().IsFollowing(gomock.Any(), uint64(1), uint64(2)).Return(true, nil)
			m.messages.EXPECT().ByID(gomock.Any(), replyTo).Return(tt.target, nil)
			if !tt.expectErr {
				m.messages.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				m.events.EXPECT().PublishMessage(gomock.Any(), gomock.Any()).Return(nil)
			}

			_, err := svc.Send(context.Background(), SendRequest{
				SenderID:   1,
				ReceiverID: 2,
				Content:    "ok",
				ReplyToID:  &replyTo,
			})

			if tt.expectErr {
				var valErr *common.ValidationError
				assert.ErrorAs(t, err, &valErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMessageService_Send_PublishFailureDoesNotFailSend(t *testing.T) {
	svc, m := newAdapter(t)

	m.follows.EXPECT().IsFollowing(gomock.Any(), uint64(1), uint64(2)).Return(true, nil)
	m.messages.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	m.events.EXPECT().PublishMessage(gomock.Any(), gomock.Any()).
		Return(errors.New("bus unreachable"))

	_, err := svc.Send(context.Background(), SendRequest{SenderID: 1, ReceiverID: 2, Content: "hi"})

	assert.NoError(t, err)
}

func TestMessageService_MarkThreadRead(t *testing.T) {
	svc, m := newAdapter(t)

	// Viewer 1 reads the thread with 2: messages from 2 to 1 transition.
	m.messages.EXPECT().MarkRead(gomock.Any(), uint64(2), uint64(1)).Return(nil)

	assert.NoError(t, svc.MarkThreadRead(context.Background(), 1, 2))
}

func TestMessageService_MarkDelivered(t *testing.T) {
	svc, m := newAdapter(t)

	m.messages.EXPECT().MarkDelivered(gomock.Any(), uint64(42)).Return(nil)

	assert.NoError(t, svc.MarkDelivered(context.Background(), 42))
}
