// Package broadcast is the in-process "settings changed" signal. Writes to
// the persisted store from this process do not produce a storage watcher
// event in every case, so writers also publish here.
package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// subscriberBuffer bounds how many undelivered signals a subscriber holds.
// A signal only means "recompute", so dropping extras loses nothing.
const subscriberBuffer = 8

// Message is one settings-changed signal.
type Message struct {
	Origin string    `json:"origin"`
	Key    string    `json:"key,omitempty"`
	At     time.Time `json:"at"`
}

// NewOrigin returns a fresh identifier for a publisher.
func NewOrigin() string {
	return uuid.New().String()
}

// Subscription receives messages published on one channel.
type Subscription struct {
	C <-chan Message

	bus     *Bus
	channel string
	ch      chan Message
	once    sync.Once
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.bus.remove(s) })
}

// Bus fans messages out to every subscriber of a named channel.
type Bus struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber on channel.
func (b *Bus) Subscribe(channel string) *Subscription {
	ch := make(chan Message, subscriberBuffer)
	s := &Subscription{C: ch, bus: b, channel: channel, ch: ch}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*Subscription]struct{})
	}
	b.subs[channel][s] = struct{}{}
	return s
}

// Publish delivers m to every subscriber of channel without blocking and
// returns how many subscribers received it.
func (b *Bus) Publish(channel string, m Message) int {
	if m.At.IsZero() {
		m.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for s := range b.subs[channel] {
		select {
		case s.ch <- m:
			delivered++
		default:
		}
	}
	return delivered
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[s.channel]
	delete(subs, s)
	if len(subs) == 0 {
		delete(b.subs, s.channel)
	}
	close(s.ch)
}
