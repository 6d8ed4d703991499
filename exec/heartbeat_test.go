package exec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smallnest/streamdag/bus"
)

func TestHeartbeatPublishesPeriodically(t *testing.T) {
	t.Parallel()

	b := bus.New(bus.DefaultConfig())
	defer b.Close()

	received := make(chan bus.Event, 8)
	unsub := b.Subscribe("graph.heartbeat", func(ev bus.Event) { received <- ev }, bus.Async)
	defer unsub()

	hb := NewHeartbeat(b, "g", 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	hb.Start(ctx)

	select {
	case ev := <-received:
		require.Equal(t, "g", ev.Data["graph"])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for heartbeat")
	}

	cancel()
	hb.Stop()
}
