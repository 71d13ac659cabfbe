package composer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"guysocial/internal/chat/service"
	"guysocial/internal/common"
	"guysocial/internal/dbmysql"
	"guysocial/internal/media"
)

// State is the composer's current mode. One composer exists per open
// conversation.
type State int

const (
	StateIdle State = iota
	StateComposingText
	StateReplyingTo
	StateAttachingFile
	StateRecording
	StateSending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComposingText:
		return "composing"
	case StateReplyingTo:
		return "replying"
	case StateAttachingFile:
		return "attaching"
	case StateRecording:
		return "recording"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Sender is the slice of the message store adapter the composer needs.
type Sender interface {
	Send(ctx context.Context, req service.SendRequest) (*dbmysql.Message, error)
}

// Recorder is a microphone capture session. Stop produces the captured
// audio as an upload source.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() (*media.SourceFile, error)
}

// Previewer renders a local preview for a staged image. Optional.
type Previewer func(src *media.SourceFile) ([]byte, error)

// Composer is the per-conversation drafting state machine. Staged
// text, reply target and attachment survive a failed send so the user
// can retry.
type Composer struct {
	viewerID uint64
	otherID  uint64
	sender   Sender
	recorder Recorder
	preview  Previewer
	now      func() time.Time

	mu            sync.Mutex
	state         State
	text          string
	replyTo       *dbmysql.Message
	staged        *media.SourceFile
	category      media.Category
	previewBytes  []byte
	recStarted    time.Time
	sending       bool
}

func New(viewerID, otherID uint64, sender Sender, recorder Recorder, preview Previewer) *Composer {
	return &Composer{
		viewerID: viewerID,
		otherID:  otherID,
		sender:   sender,
		recorder: recorder,
		preview:  preview,
		now:      time.Now,
		state:    StateIdle,
	}
}

func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

func (c *Composer) ReplyTarget() *dbmysql.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replyTo
}

func (c *Composer) StagedAttachment() *media.SourceFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged
}

// SetText updates the draft text. Typing moves an idle composer into
// ComposingText; it never cancels a reply target or staged attachment.
func (c *Composer) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	if c.state == StateIdle && strings.TrimSpace(text) != "" {
		c.state = StateComposingText
	}
}

// BeginReply sets the active reply target. Selecting a new target
// while one is active replaces it, it does not stack. The target must
// belong to this conversation.
func (c *Composer) BeginReply(target *dbmysql.Message) error {
	key := common.NewConversationKey(c.viewerID, c.otherID)
	if !target.Key(c.viewerID).SamePair(key) {
		return common.NewValidationError("reply target belongs to a different conversation")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.replyTo = target
	c.state = StateReplyingTo
	return nil
}

// CancelReply drops the reply target and falls back to whatever else
// is staged.
func (c *Composer) CancelReply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replyTo = nil
	c.state = c.restingState()
}

// AttachFile stages a file for the next send, replacing any previously
// staged one. Image previews render asynchronously and never block
// staging.
func (c *Composer) AttachFile(src *media.SourceFile) {
	c.mu.Lock()
	c.staged = src
	c.category = categoryOf(src)
	c.previewBytes = nil
	c.state = StateAttachingFile
	preview := c.preview
	c.mu.Unlock()

	if src.IsImage() && preview != nil {
		go func() {
			bytes, err := preview(src)
			if err != nil {
				log.Printf("Failed to render preview for %s: %v", src.Name, err)
				return
			}
			c.mu.Lock()
			if c.staged == src {
				c.previewBytes = bytes
			}
			c.mu.Unlock()
		}()
	}
}

// Preview returns the rendered image preview, or nil while it is still
// rendering or for non-image attachments.
func (c *Composer) Preview() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previewBytes
}

// RemoveAttachment clears the staged file.
func (c *Composer) RemoveAttachment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = nil
	c.category = ""
	c.previewBytes = nil
	c.state = c.restingState()
}

// StartRecording acquires the microphone. Failure is returned to the
// caller for display, never swallowed.
func (c *Composer) StartRecording(ctx context.Context) error {
	if c.recorder == nil {
		return common.NewValidationError("no recorder available")
	}
	if err := c.recorder.Start(ctx); err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.recStarted = c.now()
	c.state = StateRecording
	return nil
}

// ElapsedSeconds reports recording time at one-second resolution.
func (c *Composer) ElapsedSeconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRecording {
		return 0
	}
	return int(c.now().Sub(c.recStarted) / time.Second)
}

// StopRecording ends capture and stages the audio like any other
// attachment. Only valid while recording.
func (c *Composer) StopRecording() error {
	c.mu.Lock()
	if c.state != StateRecording || c.recorder == nil {
		c.mu.Unlock()
		return common.NewValidationError("not recording")
	}
	c.mu.Unlock()

	src, err := c.recorder.Stop()
	if err != nil {
		c.mu.Lock()
		c.state = c.restingState()
		c.mu.Unlock()
		return fmt.Errorf("failed to stop recording: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = src
	c.category = media.CategoryAudio
	c.previewBytes = nil
	c.state = StateAttachingFile
	return nil
}

// Submit sends whatever is staged as one outbound request. On success
// all staged state clears back to Idle; on failure everything is
// preserved for retry. A submit while a send is in flight is ignored.
func (c *Composer) Submit(ctx context.Context) (*dbmysql.Message, error) {
	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return nil, nil
	}
	if strings.TrimSpace(c.text) == "" && c.staged == nil {
		c.mu.Unlock()
		return nil, common.NewValidationError("nothing to send")
	}

	req := service.SendRequest{
		SenderID:   c.viewerID,
		ReceiverID: c.otherID,
		Content:    c.text,
		Attachment: c.staged,
		Category:   c.category,
	}
	if c.replyTo != nil {
		id := c.replyTo.ID
		req.ReplyToID = &id
	}

	c.sending = true
	prior := c.state
	c.state = StateSending
	c.mu.Unlock()

	msg, err := c.sender.Send(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sending = false
	if err != nil {
		// Keep text, reply target and attachment for retry.
		c.state = prior
		return nil, err
	}

	c.text = ""
	c.replyTo = nil
	c.staged = nil
	c.category = ""
	c.previewBytes = nil
	c.state = StateIdle
	return msg, nil
}

// restingState is where the composer settles when a mode is cancelled,
// based on what remains staged. Callers hold the lock.
func (c *Composer) restingState() State {
	switch {
	case c.staged != nil:
		return StateAttachingFile
	case c.replyTo != nil:
		return StateReplyingTo
	case strings.TrimSpace(c.text) != "":
		return StateComposingText
	default:
		return StateIdle
	}
}

func categoryOf(src *media.SourceFile) media.Category {
	switch {
	case src.IsImage():
		return media.CategoryImage
	case strings.HasPrefix(src.MimeType, "audio/"):
		return media.CategoryAudio
	default:
		return media.CategoryFile
	}
}
