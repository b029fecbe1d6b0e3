package progress

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"imgutil/internal/logging"
)

// Handler receives published events. Handlers run on the publishing goroutine
// and should return quickly.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus fans events out to subscribers in subscription order.
type Bus struct {
	mu      sync.Mutex
	subs    []subscription
	nextID  uint64
	nextSeq uint64
	logger  *slog.Logger
}

// NewBus constructs an empty bus. A nil logger discards handler panics silently.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Bus{logger: logging.NewComponentLogger(logger, "progress")}
}

// Subscribe registers handler and returns a function that removes it. The
// returned function is safe to call more than once.
func (b *Bus) Subscribe(handler Handler) func() {
	if b == nil || handler == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish stamps evt with a sequence number and delivers it to every current
// subscriber. A panicking handler is logged and skipped.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.nextSeq++
	evt.Sequence = b.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	subs := append([]subscription(nil), b.subs...)
	b.mu.Unlock()

	for _, sub := range subs {
		b.deliver(sub, evt)
	}
}

// Subscribers reports the number of registered handlers.
func (b *Bus) Subscribers() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) deliver(sub subscription, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.WarnWithContext(b.logger, "progress subscriber panicked", "progress_subscriber_panic",
				logging.String("event_kind", string(evt.Kind)),
				logging.String(logging.FieldBatchID, evt.BatchID),
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldImpact, "subscriber missed this event"),
			)
		}
	}()
	sub.handler(evt)
}
