package notify

import (
	"log"
	"sync"
	"time"
)

// Event describes an inbound message that arrived outside the open
// conversation.
type Event struct {
	UserID        uint64
	TriggerUserID uint64
	MessageID     uint64
	Excerpt       string
	CreatedAt     time.Time
}

type Observer interface {
	Update(event Event) error
	Name() string
}

// Registry fans an event out to every registered observer.
type Registry struct {
	mu        sync.RWMutex
	observers []Observer
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Subscribe(observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, observer)
}

func (r *Registry) Unsubscribe(observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.observers {
		if o == observer {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Notify delivers the event to all observers in order. One failing
// observer does not stop the others.
func (r *Registry) Notify(event Event) {
	r.mu.RLock()
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.mu.RUnlock()

	for _, o := range observers {
		if err := o.Update(event); err != nil {
			log.Printf("Observer %s failed: %v", o.Name(), err)
		}
	}
}

func (r *Registry) NotifyAsync(event Event) {
	go r.Notify(event)
}
