package bus

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchTopic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"node.complete", "node.complete", true},
		{"node.complete", "node.error", false},
		{"*", "anything.at.all", true},
		{"node.*", "node.complete", true},
		{"node.*", "node.state_changed", true},
		{"node.*", "graph.start", false},
		{"node.*", "node", false},
		{"graph.*", "graph.frame_complete", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchTopic(tc.pattern, tc.topic),
			"matchTopic(%q, %q)", tc.pattern, tc.topic)
	}
}

func TestAsyncDeliveryReachesMatchingSubscribers(t *testing.T) {
	t.Parallel()

	b := New(Config{QueueSize: 64, SubscriberQueueSize: 64, Throttles: map[string]ThrottleConfig{}})
	defer b.Close()

	var nodeEvents, allEvents atomic.Int32
	unsub1 := b.Subscribe("node.*", func(Event) { nodeEvents.Add(1) }, Async)
	defer unsub1()
	unsub2 := b.Subscribe("*", func(Event) { allEvents.Add(1) }, Async)
	defer unsub2()

	b.Publish("node.start", map[string]any{"node": "n1"}, "test", PriorityNormal)
	b.Publish("graph.start", map[string]any{"name": "g"}, "test", PriorityNormal)

	require.Eventually(t, func() bool {
		return nodeEvents.Load() == 1 && allEvents.Load() == 2
	}, time.Second, time.Millisecond)
}

func TestEventsDeliveredInPublicationOrderPerSubscriber(t *testing.T) {
	t.Parallel()

	b := New(Config{QueueSize: 256, SubscriberQueueSize: 256, Throttles: map[string]ThrottleConfig{}})
	defer b.Close()

	var mu sync.Mutex
	var seen []int
	unsub := b.Subscribe("seq.tick", func(ev Event) {
		mu.Lock()
		seen = append(seen, ev.Data["i"].(int))
		mu.Unlock()
	}, Async)
	defer unsub()

	const n = 100
	for i := 0; i < n; i++ {
		b.Publish("seq.tick", map[string]any{"i": i}, "test", PriorityNormal)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == n
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i := 0; i < n; i++ {
		assert.Equal(t, i, seen[i], "event %d delivered out of order", i)
	}
}

func TestPanickingSubscriberIsIsolated(t *testing.T) {
	t.Parallel()

	b := New(Config{QueueSize: 64, SubscriberQueueSize: 64, Throttles: map[string]ThrottleConfig{}})
	defer b.Close()

	var healthy atomic.Int32
	var busErrors atomic.Int32
	unsubBad := b.Subscribe("boom", func(Event) { panic("subscriber bug") }, Async)
	defer unsubBad()
	unsubGood := b.Subscribe("boom", func(Event) { healthy.Add(1) }, Async)
	defer unsubGood()
	unsubErr := b.Subscribe("bus.error", func(Event) { busErrors.Add(1) }, Async)
	defer unsubErr()

	b.Publish("boom", nil, "test", PriorityNormal)
	b.Publish("boom", nil, "test", PriorityNormal)

	require.Eventually(t, func() bool {
		return healthy.Load() == 2 && busErrors.Load() == 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, uint64(2), b.BusErrors())
}

func TestThrottleBoundsDeliveriesPerWindow(t *testing.T) {
	t.Parallel()

	b := New(Config{
		QueueSize:           256,
		SubscriberQueueSize: 256,
		Throttles: map[string]ThrottleConfig{
			"hot.topic": {Interval: time.Second, MaxEvents: 5, DropExcess: true},
		},
	})
	defer b.Close()

	var delivered atomic.Int32
	unsub := b.Subscribe("hot.topic", func(Event) { delivered.Add(1) }, Async)
	defer unsub()

	for i := 0; i < 20; i++ {
		b.Publish("hot.topic", nil, "test", PriorityNormal)
	}

	require.Eventually(t, func() bool {
		return b.DroppedCount("hot.topic") == 15
	}, time.Second, time.Millisecond)

	time.Sleep(20 * time.Millisecond) // let the allowed events drain
	assert.Equal(t, int32(5), delivered.Load())
}

func TestSyncSubscriberRunsInline(t *testing.T) {
	t.Parallel()

	b := New(Config{QueueSize: 64, SubscriberQueueSize: 64, Throttles: map[string]ThrottleConfig{}})
	defer b.Close()

	var got atomic.Int32
	unsub := b.Subscribe("inline.topic", func(Event) { got.Add(1) }, Sync)
	defer unsub()

	b.Publish("inline.topic", nil, "test", PriorityNormal)

	// Sync handlers still run on the dispatcher goroutine, not the
	// publisher's, so publication itself never blocks.
	require.Eventually(t, func() bool { return got.Load() == 1 }, time.Second, time.Millisecond)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	b := New(Config{QueueSize: 64, SubscriberQueueSize: 64, Throttles: map[string]ThrottleConfig{}})
	defer b.Close()

	var got atomic.Int32
	unsub := b.Subscribe("once.topic", func(Event) { got.Add(1) }, Async)

	b.Publish("once.topic", nil, "test", PriorityNormal)
	require.Eventually(t, func() bool { return got.Load() == 1 }, time.Second, time.Millisecond)

	unsub()
	b.Publish("once.topic", nil, "test", PriorityNormal)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), got.Load())
}

func TestPublishAfterCloseIsANoOp(t *testing.T) {
	t.Parallel()

	b := New(DefaultConfig())
	b.Close()

	// must not panic or block
	b.Publish("sys.shutdown", nil, "test", PriorityNormal)
}
