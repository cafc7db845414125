package events

import (
	"sync"

	"github.com/google/uuid"
)

// Stage names a step of the analysis pipeline.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageAnalyzing  Stage = "analyzing"
	StageDeriving   Stage = "deriving"
	StageSuggesting Stage = "suggesting"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Event describes a pipeline status update for one image URL.
type Event struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
	Stage    Stage  `json:"stage"`
	Detail   string `json:"detail,omitempty"`
}

// New builds an event with a fresh id.
func New(imageURL string, stage Stage, detail string) Event {
	return Event{
		ID:       uuid.NewString(),
		ImageURL: imageURL,
		Stage:    stage,
		Detail:   detail,
	}
}

// Broker manages SSE subscribers.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroker constructs a broker instance.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives events.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 8)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel from the broker.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	b.mu.Unlock()
	close(ch)
}

// Publish fan-outs the event to all subscribers.
func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	for ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			// drop if subscriber is slow
		}
	}
	b.mu.RUnlock()
}
