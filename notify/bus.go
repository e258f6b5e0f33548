package notify

import (
	"sync"

	"github.com/pwbcr2502-crypto/galass/logging"
)

// Event kinds pushed to big-screen and mobile subscribers.
const (
	KindVoteWindowOpened = "vote_window_opened"
	KindVoteWindowClosed = "vote_window_closed"
	KindVoteAccepted     = "vote_accepted"
	KindAwardsPublished  = "awards_published"
)

// Message is one notification, scoped to an event so subscribers can filter
// per occasion.
type Message struct {
	Kind    string      `json:"kind"`
	EventID int         `json:"eventId"`
	Payload interface{} `json:"payload,omitempty"`
}

// Bus is the seam to the real-time delivery layer. Publishing happens after
// the storage transaction commits; delivery transport is out of this
// module's scope.
type Bus interface {
	Publish(msg Message)
	Subscribe() (<-chan Message, func())
}

// Broadcaster is an in-process Bus fanning messages out to subscribers.
// Slow subscribers drop messages rather than blocking the publisher.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[int]chan Message
	nextID      int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[int]chan Message)}
}

func (b *Broadcaster) Publish(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			logging.Log.Warnf("NOTIFY: dropped %s message for event %d, subscriber is behind", msg.Kind, msg.EventID)
		}
	}
}

func (b *Broadcaster) Subscribe() (<-chan Message, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Message, 16)
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(ch)
		}
	}
	return ch, cancel
}
