package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"guysocial/internal/chat/service/mocks"
	"guysocial/internal/common"
	"guysocial/internal/dbmysql"
)

type deriverMocks struct {
	follows  *mocks.MockReader
	messages *mocks.MockMessageRepository
	profiles *mocks.MockProfileRepository
}

func newDeriver(t *testing.T) (ConversationService, *deriverMocks) {
	ctrl := gomock.NewController(t)
	m := &deriverMocks{
		follows:  mocks.NewMockReader(ctrl),
		messages: mocks.NewMockMessageRepository(ctrl),
		profiles: mocks.NewMockProfileRepository(ctrl),
	}
	return NewConversationService(m.follows, m.messages, m.profiles), m
}

func TestDerive_NoFollows(t *testing.T) {
	svc, m := newDeriver(t)

	m.follows.EXPECT().ListFollowing(gomock.Any(), uint64(1)).Return(nil, nil)

	convos, err := svc.Derive(context.Background(), 1)

	assert.NoError(t, err)
	assert.Empty(t, convos)
}

func TestDerive_FollowStoreDown(t *testing.T) {
	svc, m := newDeriver(t)

	m.follows.EXPECT().ListFollowing(gomock.Any(), uint64(1)).
		Return(nil, common.NewDependencyError("follow store", errors.New("down")))

	_, err := svc.Derive(context.Background(), 1)

	var depErr *common.DependencyError
	assert.ErrorAs(t, err, &depErr)
}

// A followed user with no message history still yields a conversation,
// with the placeholder last message and zero unread.
func TestDerive_PlaceholderConversation(t *testing.T) {
	svc, m := newDeriver(t)

	m.follows.EXPECT().ListFollowing(gomock.Any(), uint64(1)).Return([]uint64{2}, nil)
	m.profiles.EXPECT().ByIDs(gomock.Any(), []uint64{2}).Return(map[uint64]*dbmysql.Profile{
		2: {UserID: 2, Handle: "bob", DisplayName: "Bob"},
	}, nil)
	m.messages.EXPECT().LastBetween(gomock.Any(), uint64(1), uint64(2)).Return(nil, nil)

	convos, err := svc.Derive(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, convos, 1)
	c := convos[0]
	assert.True(t, c.Placeholder)
	assert.Equal(t, SentinelContent, c.LastMessage.Content)
	assert.Zero(t, c.LastMessage.ID)
	assert.Equal(t, 0, c.UnreadCount)
	assert.Equal(t, "bob", c.Other.Handle)
}

// Exactly one conversation per followed user, regardless of history.
func TestDerive_Completeness(t *testing.T) {
	svc, m := newDeriver(t)

	followed := []uint64{2, 3, 4}
	m.follows.EXPECT().ListFollowing(gomock.Any(), uint64(1)).Return(followed, nil)
	m.profiles.EXPECT().ByIDs(gomock.Any(), followed).Return(map[uint64]*dbmysql.Profile{}, nil)
	m.messages.EXPECT().LastBetween(gomock.Any(), uint64(1), uint64(2)).
		Return(&dbmysql.Message{ID: 9, SenderID: 2, ReceiverID: 1, Content: "yo"}, nil)
	m.messages.EXPECT().LastBetween(gomock.Any(), uint64(1), uint64(3)).Return(nil, nil)
	m.messages.EXPECT().LastBetween(gomock.Any(), uint64(1), uint64(4)).Return(nil, nil)

	convos, err := svc.Derive(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, convos, len(followed))
}

func TestDerive_UnreadCount(t *testing.T) {
	tests := []struct {
		name     string
		last     *dbmysql.Message
		expected int
	}{
		{
			name:     "last inbound unread",
			last:     &dbmysql.Message{ID: 1, SenderID: 2, ReceiverID: 1, Read: false},
			expected: 1,
		},
		{
			name:     "last inbound read",
			last:     &dbmysql.Message{ID: 1, SenderID: 2, ReceiverID: 1, Read: true},
			expected: 0,
		},
		{
			name:     "last outbound",
			last:     &dbmysql.Message{ID: 1, SenderID: 1, ReceiverID: 2, Read: false},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newDeriver(t)

			m.follows.EXPECT().ListFollowing(gomock.Any(), uint64(1)).Return([]uint64{2}, nil)
			m.profiles.EXPECT().ByIDs(gomock.Any(), gomock.Any()).Return(nil, nil)
			m.messages.EXPECT().LastBetween(gomock.Any(), uint64(1), uint64(2)).Return(tt.last, nil)

			convos, err := svc.Derive(context.Background(), 1)

			require.NoError(t, err)
			require.Len(t, convos, 1)
			assert.Equal(t, tt.expected, convos[0].UnreadCount)
		})
	}
}

// A failed last-message fetch for one pair degrades to the placeholder
// without aborting the rest of the list.
func TestDerive_PartialFailure(t *testing.T) {
	svc, m := newDeriver(t)

	m.follows.EXPECT().ListFollowing(gomock.Any(), uint64(1)).Return([]uint64{2, 3}, nil)
	m.profiles.EXPECT().ByIDs(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.messages.EXPECT().LastBetween(gomock.Any(), uint64(1), uint64(2)).
		Return(nil, common.NewDependencyError("message store", errors.New("timeout")))
	m.messages.EXPECT().LastBetween(gomock.Any(), uint64(1), uint64(3)).
		Return(&dbmysql.Message{ID: 4, SenderID: 3, ReceiverID: 1, Content: "hello", Read: true}, nil)

	convos, err := svc.Derive(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, convos, 2)
	assert.True(t, convos[0].Placeholder)
	assert.False(t, convos[1].Placeholder)
	assert.Equal(t, "hello", convos[1].LastMessage.Content)
}

func TestFilter(t *testing.T) {
	convos := []*Conversation{
		{Other: &dbmysql.Profile{UserID: 2, Handle: "johndoe", DisplayName: "John Doe"}},
		{Other: &dbmysql.Profile{UserID: 3, Handle: "janesmith", DisplayName: "Jane Smith"}},
		{Other: nil},
	}

	assert.Len(t, Filter(convos, ""), 3)
	assert.Len(t, Filter(convos, "jane"), 1)
	assert.Len(t, Filter(convos, "J"), 2)
	assert.Len(t, Filter(convos, "DOE"), 1)
	assert.Empty(t, Filter(convos, "zelda"))
}
