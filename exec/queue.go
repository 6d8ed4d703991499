package exec

import "github.com/smallnest/streamdag/packet"

// delivery is one entry on a node's input queue. parent owns the shared
// reference count: for a zero-copy single-edge delivery parent is pkt
// itself; for a branch delivery parent is the shared bookkeeping packet
// the router set to branch_count, so the hook fires once the
// last sibling releases it rather than once per sibling.
type delivery struct {
	pkt    *packet.Packet
	parent *packet.Packet
	stop   bool
}

// newQueue allocates a node's bounded input channel.
func newQueue(capacity int) chan delivery {
	return make(chan delivery, capacity)
}

// stopDelivery is the sentinel posted to every queue on shutdown, distinct
// from any data delivery, so a blocked interior loop wakes immediately.
var stopDelivery = delivery{stop: true}
