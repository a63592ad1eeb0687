// Package sessionbus is the in-process session change channel.
package sessionbus

import (
	"strings"
	"sync"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	sessiondom "storefront/internal/domain/session"
)

// Topic is the EventBus topic every session change is published on.
const Topic = "session:changed"

const defaultBuffer = 16

// Subscription delivers events on C until Cancel is called.
type Subscription struct {
	C <-chan sessiondom.Event

	once   sync.Once
	cancel func()
}

// Cancel stops delivery and closes C. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// Bus fans session events out to subscribers and remembers the current
// identity per uid.
//
// EventBus holds a single handler (dispatch); subscribers live in subs so
// they can be cancelled individually. A subscriber whose buffer is full
// misses the event instead of blocking the publisher.
type Bus struct {
	bus EventBus.Bus
	log *zap.Logger

	mu      sync.RWMutex
	subs    map[uint64]chan sessiondom.Event
	nextID  uint64
	current map[string]sessiondom.Identity
	closed  bool
}

func New(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bus{
		bus:     EventBus.New(),
		log:     log.Named("sessionbus"),
		subs:    map[uint64]chan sessiondom.Event{},
		current: map[string]sessiondom.Identity{},
	}
	if err := b.bus.Subscribe(Topic, b.dispatch); err != nil {
		// only fails for a non-func handler
		panic(err)
	}
	return b
}

// Publish implements usecase.SessionPublisher.
func (b *Bus) Publish(e sessiondom.Event) {
	b.bus.Publish(Topic, e)
}

// Subscribe registers a new listener; buffer <= 0 uses the default size.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	ch := make(chan sessiondom.Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return &Subscription{C: ch, cancel: func() {}}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return &Subscription{
		C: ch,
		cancel: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		},
	}
}

// Current returns the signed-in identity for uid, or nil.
func (b *Bus) Current(uid string) *sessiondom.Identity {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id, ok := b.current[strings.TrimSpace(uid)]
	if !ok {
		return nil
	}
	return &id
}

// Close detaches from EventBus and closes every subscription.
func (b *Bus) Close() {
	_ = b.bus.Unsubscribe(Topic, b.dispatch)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, c := range b.subs {
		delete(b.subs, id)
		close(c)
	}
}

func (b *Bus) dispatch(e sessiondom.Event) {
	uid := strings.TrimSpace(e.UID)

	b.mu.Lock()
	if e.IsSignOut() {
		delete(b.current, uid)
	} else {
		b.current[uid] = *e.Identity
	}
	b.mu.Unlock()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, c := range b.subs {
		select {
		case c <- e:
		default:
			b.log.Warn("subscriber buffer full, event dropped", zap.Uint64("subscriber", id), zap.String("uid", uid))
		}
	}
}
