package service

import (
	"context"
	"log"
	"strings"

	"guysocial/internal/chat/repository"
	"guysocial/internal/common"
	"guysocial/internal/dbmysql"
	"guysocial/internal/follow"
	"guysocial/internal/media"
)

// AttachmentUploader is the slice of the media uploader the adapter
// needs.
type AttachmentUploader interface {
	Upload(ctx context.Context, src *media.SourceFile, ownerID uint64, category media.Category) (*common.Attachment, error)
}

// EventPublisher pushes an inserted message onto the realtime bus so
// the receiver's session sees it. Best effort; a publish failure never
// fails the send.
type EventPublisher interface {
	PublishMessage(ctx context.Context, msg *dbmysql.Message) error
}

// SendRequest is the single outbound request the composer produces:
// any combination of text, reply reference and staged attachment.
type SendRequest struct {
	SenderID   uint64
	ReceiverID uint64
	Content    string
	ReplyToID  *uint64
	Attachment *media.SourceFile
	Category   media.Category
}

// MessageService is the message store adapter. Every fetch and send is
// gated on the follow graph; the check is never cached, so an unfollow
// takes effect on the next call.
type MessageService interface {
	FetchHistory(ctx context.Context, viewerID, otherID uint64) ([]*dbmysql.Message, error)
	Send(ctx context.Context, req SendRequest) (*dbmysql.Message, error)
	MarkDelivered(ctx context.Context, messageID uint64) error
	MarkThreadRead(ctx context.Context, viewerID, otherID uint64) error
}

type messageService struct {
	messages repository.MessageRepository
	follows  follow.Reader
	uploader AttachmentUploader
	events   EventPublisher
}

func NewMessageService(
	messages repository.MessageRepository,
	follows follow.Reader,
	uploader AttachmentUploader,
	events EventPublisher,
) MessageService {
	return &messageService{
		messages: messages,
		follows:  follows,
		uploader: uploader,
		events:   events,
	}
}

func (s *messageService) authorize(ctx context.Context, viewerID, otherID uint64) error {
	following, err := s.follows.IsFollowing(ctx, viewerID, otherID)
	if err != nil {
		return err
	}
	if !following {
		return common.NewAuthorizationError("not following")
	}
	return nil
}

func (s *messageService) FetchHistory(ctx context.Context, viewerID, otherID uint64) ([]*dbmysql.Message, error) {
	if err := s.authorize(ctx, viewerID, otherID); err != nil {
		return nil, err
	}
	return s.messages.FetchBetween(ctx, viewerID, otherID)
}

func (s *messageService) Send(ctx context.Context, req SendRequest) (*dbmysql.Message, error) {
	if req.SenderID == req.ReceiverID {
		return nil, common.NewValidationError("cannot message yourself")
	}
	if strings.TrimSpace(req.Content) == "" && req.Attachment == nil {
		return nil, common.NewValidationError("message has no content or attachment")
	}

	if err := s.authorize(ctx, req.SenderID, req.ReceiverID); err != nil {
		return nil, err
	}

	if req.ReplyToID != nil {
		if err := s.checkReplyTarget(ctx, &req); err != nil {
			return nil, err
		}
	}

	msg := &dbmysql.Message{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		Read:       false,
		Delivered:  false,
		ReplyToID:  req.ReplyToID,
	}

	if req.Attachment != nil {
		att, err := s.uploader.Upload(ctx, req.Attachment, req.SenderID, categoryFor(&req))
		if err != nil {
			// No partial message with a dangling attachment reference.
			return nil, err
		}
		msg.SetAttachment(att)
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishMessage(ctx, msg); err != nil {
			log.Printf("Failed to publish message %d to realtime bus: %v", msg.ID, err)
		}
	}

	return msg, nil
}

// checkReplyTarget enforces that the reply target belongs to the same
// conversation. A dangling or cross-conversation reference is a data
// integrity error, not silently ignored.
func (s *messageService) checkReplyTarget(ctx context.Context, req *SendRequest) error {
	target, err := s.messages.ByID(ctx, *req.ReplyToID)
	if err != nil {
		return err
	}
	if target == nil {
		return common.NewValidationError("reply target does not exist")
	}
	key := common.NewConversationKey(req.SenderID, req.ReceiverID)
	if !target.Key(req.SenderID).SamePair(key) {
		return common.NewValidationError("reply target belongs to a different conversation")
	}
	return nil
}

func (s *messageService) MarkDelivered(ctx context.Context, messageID uint64) error {
	return s.messages.MarkDelivered(ctx, messageID)
}

// MarkThreadRead marks everything the other participant sent to the
// viewer as read. Idempotent.
func (s *messageService) MarkThreadRead(ctx context.Context, viewerID, otherID uint64) error {
	return s.messages.MarkRead(ctx, otherID, viewerID)
}

func categoryFor(req *SendRequest) media.Category {
	if req.Category != "" {
		return req.Category
	}
	switch {
	case req.Attachment.IsImage():
		return media.CategoryImage
	case strings.HasPrefix(req.Attachment.MimeType, "audio/"):
		return media.CategoryAudio
	default:
		return media.CategoryFile
	}
}
