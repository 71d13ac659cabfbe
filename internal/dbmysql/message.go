package dbmysql

import (
	"time"

	"guysocial/internal/common"
)

// Message is a direct message between two users. Content and the
// attachment reference are immutable after insert; only the delivery
// flags transition in place.
type Message struct {
	ID             uint64    `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	SenderID       uint64    `gorm:"column:sender_id;not null;index:idx_msg_pair" json:"sender_id"`
	ReceiverID     uint64    `gorm:"column:receiver_id;not null;index:idx_msg_pair" json:"receiver_id"`
	Content        string    `gorm:"column:content;type:text" json:"content"`
	Read           bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	Delivered      bool      `gorm:"column:is_delivered;not null;default:false" json:"delivered"`
	ReplyToID      *uint64   `gorm:"column:reply_to_id" json:"reply_to_id,omitempty"`
	AttachmentURL  *string   `gorm:"column:attachment_url;size:512" json:"attachment_url,omitempty"`
	AttachmentType *string   `gorm:"column:attachment_type;size:100" json:"attachment_type,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// Key returns the conversation key of this message from the viewer's
// perspective.
func (m *Message) Key(viewerID uint64) common.ConversationKey {
	return common.NewConversationKey(viewerID, m.Counterparty(viewerID))
}

// Counterparty returns the participant that is not the viewer. For a
// message the viewer sent, that is the receiver; otherwise the sender.
func (m *Message) Counterparty(viewerID uint64) uint64 {
	if m.SenderID == viewerID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Attachment returns the attachment reference, or nil when the message
// carries none.
func (m *Message) Attachment() *common.Attachment {
	if m.AttachmentURL == nil {
		return nil
	}
	mime := ""
	if m.AttachmentType != nil {
		mime = *m.AttachmentType
	}
	return &common.Attachment{URL: *m.AttachmentURL, MimeType: mime}
}

// SetAttachment stores the attachment reference on a not-yet-inserted
// message.
func (m *Message) SetAttachment(att *common.Attachment) {
	if att == nil {
		return
	}
	url := att.URL
	mime := att.MimeType
	m.AttachmentURL = &url
	m.AttachmentType = &mime
}
