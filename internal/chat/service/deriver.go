package service

import (
	"context"
	"log"
	"strings"

	"guysocial/internal/chat/repository"
	"guysocial/internal/common"
	"guysocial/internal/dbmysql"
	"guysocial/internal/follow"
)

// SentinelContent is the placeholder last-message shown for a
// conversation with no history. It is display-only and never persisted.
const SentinelContent = "Send a message to start the conversation!"

// Conversation is derived, not stored: one exists for every user the
// viewer follows, whether or not a message was ever exchanged.
type Conversation struct {
	Key         common.ConversationKey
	Other       *dbmysql.Profile
	LastMessage *dbmysql.Message
	Placeholder bool
	UnreadCount int
}

// ConversationService computes the viewer's conversation list from the
// follow graph. Ordering is the caller's responsibility.
type ConversationService interface {
	Derive(ctx context.Context, viewerID uint64) ([]*Conversation, error)
}

type convoService struct {
	follows  follow.Reader
	messages repository.MessageRepository
	profiles repository.ProfileRepository
}

func NewConversationService(
	follows follow.Reader,
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
) ConversationService {
	return &convoService{
		follows:  follows,
		messages: messages,
		profiles: profiles,
	}
}

func (s *convoService) Derive(ctx context.Context, viewerID uint64) ([]*Conversation, error) {
	followed, err := s.follows.ListFollowing(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(followed) == 0 {
		return []*Conversation{}, nil
	}

	profiles, err := s.profiles.ByIDs(ctx, followed)
	if err != nil {
		// Conversations still derive without display profiles.
		log.Printf("Failed to resolve profiles for viewer %d: %v", viewerID, err)
		profiles = map[uint64]*dbmysql.Profile{}
	}

	convos := make([]*Conversation, 0, len(followed))
	for _, otherID := range followed {
		convo := &Conversation{
			Key:   common.NewConversationKey(viewerID, otherID),
			Other: profiles[otherID],
		}

		last, err := s.messages.LastBetween(ctx, viewerID, otherID)
		if err != nil {
			// One failed pair must not abort the rest of the list.
			log.Printf("Failed to fetch last message for pair (%d,%d): %v", viewerID, otherID, err)
			last = nil
		}

		if last == nil {
			convo.LastMessage = sentinelLastMessage(viewerID, otherID)
			convo.Placeholder = true
			convo.UnreadCount = 0
		} else {
			convo.LastMessage = last
			convo.UnreadCount = unreadFromLast(last, viewerID)
		}

		convos = append(convos, convo)
	}

	return convos, nil
}

// unreadFromLast reflects only the most recent message's read state:
// 1 when it is unread and addressed to the viewer, else 0. Kept as the
// behavioral contract rather than a cumulative tally.
func unreadFromLast(last *dbmysql.Message, viewerID uint64) int {
	if last.ReceiverID == viewerID && !last.Read {
		return 1
	}
	return 0
}

// sentinelLastMessage reads as already read so the placeholder never
// counts as unread. ID zero marks it as not store-backed.
func sentinelLastMessage(viewerID, otherID uint64) *dbmysql.Message {
	return &dbmysql.Message{
		SenderID:   otherID,
		ReceiverID: viewerID,
		Content:    SentinelContent,
		Read:       true,
		Delivered:  true,
	}
}

// Filter narrows a derived conversation list to those whose other
// participant matches the query by display name or handle,
// case-insensitive. An empty query returns the list unchanged.
func Filter(convos []*Conversation, query string) []*Conversation {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return convos
	}

	matched := make([]*Conversation, 0, len(convos))
	for _, c := range convos {
		if c.Other == nil {
			continue
		}
		if strings.Contains(strings.ToLower(c.Other.DisplayName), query) ||
			strings.Contains(strings.ToLower(c.Other.Handle), query) {
			matched = append(matched, c)
		}
	}
	return matched
}
