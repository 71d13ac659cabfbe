package notify

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingObserver struct {
	mu     sync.Mutex
	name   string
	events []Event
	err    error
}

func (o *recordingObserver) Name() string { return o.name }

func (o *recordingObserver) Update(event Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return o.err
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.events)
}

func TestRegistry_Notify(t *testing.T) {
	registry := NewRegistry()
	first := &recordingObserver{name: "first"}
	second := &recordingObserver{name: "second"}
	registry.Subscribe(first)
	registry.Subscribe(second)

	registry.Notify(Event{UserID: 1, TriggerUserID: 2, MessageID: 10, Excerpt: "hi"})

	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
}

func TestRegistry_FailingObserverDoesNotStopOthers(t *testing.T) {
	registry := NewRegistry()
	failing := &recordingObserver{name: "failing", err: errors.New("boom")}
	healthy := &recordingObserver{name: "healthy"}
	registry.Subscribe(failing)
	registry.Subscribe(healthy)

	registry.Notify(Event{UserID: 1})

	assert.Equal(t, 1, healthy.count())
}

func TestRegistry_Unsubscribe(t *testing.T) {
	registry := NewRegistry()
	observer := &recordingObserver{name: "observer"}
	registry.Subscribe(observer)
	registry.Unsubscribe(observer)

	registry.Notify(Event{UserID: 1})

	assert.Equal(t, 0, observer.count())
}

func TestRegistry_NotifyAsync(t *testing.T) {
	registry := NewRegistry()
	observer := &recordingObserver{name: "observer"}
	registry.Subscribe(observer)

	registry.NotifyAsync(Event{UserID: 1})

	assert.Eventually(t, func() bool {
		return observer.count() == 1
	}, time.Second, 10*time.Millisecond)
}
