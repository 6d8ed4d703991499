package bus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/smallnest/streamdag/log"
)

// Handler receives delivered events. Implementations must not assume they
// run on any particular goroutine and must not block indefinitely: a slow
// or panicking handler is isolated from other subscribers but
// can still starve its own subscription's queue.
type Handler func(Event)

// Mode selects delivery semantics. Async is the default and the only mode
// the core requires; Sync runs the handler inline on the bus's dispatcher
// goroutine instead of through a per-subscriber queue. Sync handlers do
// not run on the publisher's goroutine, and Publish does not wait for them.
type Mode int

const (
	Async Mode = iota
	Sync
)

type subscription struct {
	id      uint64
	pattern string
	handler Handler
	queue   chan Event
	stopCh  chan struct{}
	mode    Mode
}

// Config configures a Bus.
type Config struct {
	// QueueSize bounds the internal publish queue (async mode).
	QueueSize int
	// SubscriberQueueSize bounds each subscriber's private delivery queue.
	SubscriberQueueSize int
	// Throttles maps topic name to its rate limit. Nil uses DefaultThrottles.
	Throttles map[string]ThrottleConfig
}

// DefaultConfig returns sane defaults for a production bus.
func DefaultConfig() Config {
	return Config{
		QueueSize:           4096,
		SubscriberQueueSize: 256,
		Throttles:           DefaultThrottles(),
	}
}

// Bus is the process-wide Event Bus. Publish never blocks the
// caller: events are pushed onto a bounded internal queue drained by a
// dispatcher goroutine, which fans each event out to matching subscribers'
// own bounded queues. Subscriber list changes are safe against concurrent
// dispatch.
type Bus struct {
	mu   sync.RWMutex
	subs []*subscription
	next uint64

	queue        chan Event
	subQueueSize int

	throttleMu sync.Mutex
	throttles  map[string]*throttleWindow

	busErrors uint64

	stop   chan struct{}
	closed atomic.Bool
	wg     sync.WaitGroup
}

// New creates a Bus and starts its dispatcher goroutine.
func New(cfg Config) *Bus {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.SubscriberQueueSize <= 0 {
		cfg.SubscriberQueueSize = DefaultConfig().SubscriberQueueSize
	}
	if cfg.Throttles == nil {
		cfg.Throttles = DefaultThrottles()
	}

	b := &Bus{
		queue:        make(chan Event, cfg.QueueSize),
		subQueueSize: cfg.SubscriberQueueSize,
		throttles:    make(map[string]*throttleWindow, len(cfg.Throttles)),
		stop:         make(chan struct{}),
	}
	for topic, tc := range cfg.Throttles {
		b.throttles[topic] = newThrottleWindow(tc)
	}

	b.wg.Add(1)
	go b.dispatchLoop()
	return b
}

// Subscribe registers handler for events whose topic matches pattern
// (exact, "*", or "prefix.*"). Delivery runs in async mode unless mode
// is Sync.
func (b *Bus) Subscribe(pattern string, handler Handler, mode Mode) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	sub := &subscription{
		id:      id,
		pattern: pattern,
		handler: handler,
		mode:    mode,
		stopCh:  make(chan struct{}),
	}
	if mode == Async {
		sub.queue = make(chan Event, b.subQueueSize)
		b.wg.Add(1)
		go b.subscriberLoop(sub)
	}
	// Copy-on-write: replace the slice rather than mutate it in place, so a
	// concurrent dispatch iterating the old slice is unaffected.
	next := make([]*subscription, len(b.subs)+1)
	copy(next, b.subs)
	next[len(b.subs)] = sub
	b.subs = next
	b.mu.Unlock()

	return func() { b.unsubscribe(id) }
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.id != id {
			next = append(next, s)
		} else if s.queue != nil {
			close(s.stopCh)
		}
	}
	b.subs = next
}

// Publish enqueues an event for asynchronous dispatch. It never blocks: if
// the internal queue is full the event is dropped and a warning is logged,
// preserving the "publication never blocks the caller" guarantee. Such a
// drop is not added to DroppedCount, which counts only events rejected by
// a topic's throttle.
func (b *Bus) Publish(topic string, data map[string]any, source string, priority Priority) {
	if b.closed.Load() {
		return
	}
	ev := Event{
		Topic:     topic,
		Data:      data,
		Source:    source,
		Timestamp: time.Now(),
		Priority:  priority,
		Metadata:  make(map[string]any),
	}
	if !b.allowThrottle(ev) {
		return
	}
	select {
	case b.queue <- ev:
	default:
		log.Warn("event bus queue full, dropping event on topic %s", topic)
	}
}

func (b *Bus) allowThrottle(ev Event) bool {
	b.throttleMu.Lock()
	w, ok := b.throttles[ev.Topic]
	b.throttleMu.Unlock()
	if !ok {
		return true
	}
	return w.allow(ev.Timestamp)
}

func (b *Bus) dispatchLoop() {
	defer b.wg.Done()
	for {
		select {
		case ev, ok := <-b.queue:
			if !ok {
				return
			}
			b.deliver(ev)
		case <-b.stop:
			return
		}
	}
}

func (b *Bus) deliver(ev Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, s := range subs {
		if !matchTopic(s.pattern, ev.Topic) {
			continue
		}
		if s.mode == Sync {
			b.invoke(s, ev)
			continue
		}
		select {
		case s.queue <- ev:
		default:
			log.Warn("subscriber %q queue full, dropping event on topic %s", s.pattern, ev.Topic)
		}
	}
}

func (b *Bus) subscriberLoop(s *subscription) {
	defer b.wg.Done()
	for {
		select {
		case ev := <-s.queue:
			b.invoke(s, ev)
		case <-s.stopCh:
			return
		case <-b.stop:
			return
		}
	}
}

// invoke calls the subscriber's handler with panic/error isolation: a
// failing handler is counted and reported on "bus.error" but never
// prevents other subscribers from receiving the event or crashes the bus.
func (b *Bus) invoke(s *subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddUint64(&b.busErrors, 1)
			if ev.Topic != "bus.error" {
				b.Publish("bus.error", map[string]any{
					"pattern": s.pattern,
					"topic":   ev.Topic,
					"panic":   r,
				}, "bus", PriorityHigh)
			}
		}
	}()
	s.handler(ev)
}

// BusErrors returns the number of subscriber callbacks that have panicked.
func (b *Bus) BusErrors() uint64 {
	return atomic.LoadUint64(&b.busErrors)
}

// DroppedCount returns how many events on topic have been throttled away.
func (b *Bus) DroppedCount(topic string) uint64 {
	b.throttleMu.Lock()
	w, ok := b.throttles[topic]
	b.throttleMu.Unlock()
	if !ok {
		return 0
	}
	return w.droppedCount()
}

// Close stops the dispatcher and all subscriber loops. Pending queued
// events are discarded.
func (b *Bus) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	close(b.stop)
	b.mu.Lock()
	b.subs = nil
	b.mu.Unlock()
	b.wg.Wait()
}
