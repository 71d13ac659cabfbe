package realtime

import (
	"context"
	"log"
	"sync"

	"guysocial/internal/chat/service"
	"guysocial/internal/common"
	"guysocial/internal/dbmysql"
	"guysocial/internal/notify"
)

const excerptLimit = 120

// Reconciler owns one viewer session's in-memory conversation state.
// Every message entering the session, pushed by the bus or echoed back
// from the viewer's own send, goes through the single Merge reducer so
// the de-duplication invariant is enforced in one place.
type Reconciler struct {
	viewerID uint64
	bus      Bus
	messages service.MessageService
	convos   service.ConversationService
	notifier *notify.Registry

	mu        sync.Mutex
	sub       Subscription
	done      chan struct{}
	summaries map[uint64]*service.Conversation

	// Open-thread state. epoch guards against a stale history fetch
	// clobbering state after a rapid conversation switch.
	active uint64
	epoch  uint64
	thread []*dbmysql.Message
}

func NewReconciler(
	viewerID uint64,
	bus Bus,
	messages service.MessageService,
	convos service.ConversationService,
	notifier *notify.Registry,
) *Reconciler {
	return &Reconciler{
		viewerID:  viewerID,
		bus:       bus,
		messages:  messages,
		convos:    convos,
		notifier:  notifier,
		summaries: make(map[uint64]*service.Conversation),
	}
}

// Start derives the initial conversation list and subscribes to the
// push feed. One subscription per viewer session.
func (r *Reconciler) Start(ctx context.Context) error {
	convos, err := r.convos.Derive(ctx, r.viewerID)
	if err != nil {
		return err
	}

	sub, err := r.bus.Subscribe(ctx, r.viewerID)
	if err != nil {
		return err
	}

	done := make(chan struct{})

	r.mu.Lock()
	for _, c := range convos {
		r.summaries[c.Key.OtherID] = c
	}
	r.sub = sub
	r.done = done
	r.mu.Unlock()

	go r.run(sub, done)
	return nil
}

// Stop tears the subscription down. Safe to call more than once.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	sub := r.sub
	done := r.done
	r.sub = nil
	r.done = nil
	r.mu.Unlock()

	if sub != nil {
		if err := sub.Close(); err != nil {
			log.Printf("Failed to close subscription %s: %v", sub.ID(), err)
		}
	}
	if done != nil {
		<-done
	}
}

// run pumps bus events into Merge and closes the done channel it was
// handed at Start. Stop clears r.done before waiting, so the channel
// must be the captured one, never re-read from the field.
func (r *Reconciler) run(sub Subscription, done chan struct{}) {
	defer close(done)
	for msg := range sub.Events() {
		r.Merge(msg)
	}
}

// Merge folds one message into session state. Appending is skipped if
// a message with the same id is already present, which makes the
// fetch/push race and reconnect re-delivery safe. Out-of-order
// timestamps still append at the tail; ordering repair is not
// attempted.
func (r *Reconciler) Merge(msg *dbmysql.Message) {
	r.mu.Lock()

	other := msg.Counterparty(r.viewerID)
	inThread := r.active != 0 && other == r.active
	if inThread && !containsID(r.thread, msg.ID) {
		r.thread = append(r.thread, msg)
	}

	sum, ok := r.summaries[other]
	if !ok {
		sum = &service.Conversation{Key: common.NewConversationKey(r.viewerID, other)}
		r.summaries[other] = sum
	}
	sum.LastMessage = msg
	sum.Placeholder = false
	if msg.ReceiverID == r.viewerID && !msg.Read {
		sum.UnreadCount = 1
	} else {
		sum.UnreadCount = 0
	}

	inbound := msg.ReceiverID == r.viewerID
	needDeliver := inbound && !msg.Delivered
	if needDeliver {
		msg.Delivered = true
	}
	notifier := r.notifier
	r.mu.Unlock()

	// Arrival at the session is delivery. Fired and forgotten like
	// mark-read; a re-merge of the same message skips the store call.
	if needDeliver {
		go func() {
			if err := r.messages.MarkDelivered(context.Background(), msg.ID); err != nil {
				log.Printf("Failed to mark message %d delivered: %v", msg.ID, err)
			}
		}()
	}

	if inbound && !inThread && notifier != nil {
		notifier.NotifyAsync(notify.Event{
			UserID:        msg.ReceiverID,
			TriggerUserID: msg.SenderID,
			MessageID:     msg.ID,
			Excerpt:       excerpt(msg.Content),
			CreatedAt:     msg.CreatedAt,
		})
	}
}

// OpenConversation makes otherID the active thread and pulls its
// history. Messages pushed while the fetch was in flight survive the
// merge; a fetch that resolves after the viewer switched away is
// discarded. Marking the thread read is fired and forgotten.
func (r *Reconciler) OpenConversation(ctx context.Context, otherID uint64) error {
	r.mu.Lock()
	r.active = otherID
	r.epoch++
	myEpoch := r.epoch
	r.thread = nil
	r.mu.Unlock()

	history, err := r.messages.FetchHistory(ctx, r.viewerID, otherID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.epoch != myEpoch || r.active != otherID {
		// Viewer already moved on; discard the late result.
		r.mu.Unlock()
		return nil
	}
	r.thread = mergeHistory(history, r.thread)
	if sum, ok := r.summaries[otherID]; ok {
		sum.UnreadCount = 0
	}
	r.mu.Unlock()

	go func() {
		if err := r.messages.MarkThreadRead(context.Background(), r.viewerID, otherID); err != nil {
			log.Printf("Failed to mark thread (%d,%d) read: %v", r.viewerID, otherID, err)
		}
	}()

	return nil
}

// CloseConversation clears the open thread, e.g. on navigating away.
func (r *Reconciler) CloseConversation() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = 0
	r.epoch++
	r.thread = nil
}

// Thread returns a snapshot of the open conversation's messages.
func (r *Reconciler) Thread() []*dbmysql.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*dbmysql.Message, len(r.thread))
	copy(out, r.thread)
	return out
}

// Conversations returns a snapshot of the conversation summaries.
// Ordering is the caller's concern.
func (r *Reconciler) Conversations() []*service.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*service.Conversation, 0, len(r.summaries))
	for _, c := range r.summaries {
		out = append(out, c)
	}
	return out
}

// mergeHistory takes the fetched history as the base and re-appends
// any message that arrived over the bus mid-fetch and is not already
// in it.
func mergeHistory(history, pushed []*dbmysql.Message) []*dbmysql.Message {
	merged := history
	for _, msg := range pushed {
		if !containsID(merged, msg.ID) {
			merged = append(merged, msg)
		}
	}
	return merged
}

func containsID(msgs []*dbmysql.Message, id uint64) bool {
	for _, m := range msgs {
		if m.ID == id {
			return true
		}
	}
	return false
}

func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLimit {
		return content
	}
	return string(runes[:excerptLimit])
}
