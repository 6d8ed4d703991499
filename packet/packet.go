// Package packet implements the DataPacket and its copy-on-branch
// accounting.
package packet

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Payload is implemented by port values that want precise control over
// copy-on-branch behavior. Values that don't implement Payload count as
// size 0 for the router's size threshold and get a shallow Go copy.
type Payload interface {
	// SizeHint estimates the payload's size in bytes, used by the COW
	// router's size threshold.
	SizeHint() int

	// CloneForBranch returns a copy that shares no mutable backing storage
	// with the receiver, boxed as any so payload types can keep a
	// concrete-typed DeepClone method for their own callers.
	CloneForBranch() any
}

// Packet is the unit of data flowing between nodes. A Packet's
// reference count tracks how many logical consumers still hold a copy; it
// reaches zero exactly once, when the last of them releases it, at which
// point the input_data_processed_hook of the node that released it fires.
type Packet struct {
	ID        uint64
	UUID      uuid.UUID
	Timestamp time.Time

	// Ports carries port_name -> value for the destination node.
	Ports map[string]any

	// Metadata is a free-form map carried alongside Ports.
	Metadata map[string]any

	refCount int64
}

// New creates a packet with the given monotonic id and port values. The
// reference count starts at 1, representing its single initial consumer;
// when a value branches, the router calls SetRefCount on a shared parent
// packet to match the branch count before the copies are enqueued.
func New(id uint64, ports map[string]any) *Packet {
	return &Packet{
		ID:        id,
		UUID:      uuid.New(),
		Timestamp: time.Now(),
		Ports:     ports,
		Metadata:  make(map[string]any),
		refCount:  1,
	}
}

// RefCount returns the current reference count.
func (p *Packet) RefCount() int64 {
	return atomic.LoadInt64(&p.refCount)
}

// SetRefCount sets the reference count explicitly. The router uses it
// when routing a branch, setting the count to the branch count before the
// copies are enqueued.
func (p *Packet) SetRefCount(n int) {
	atomic.StoreInt64(&p.refCount, int64(n))
}

// Release decrements the reference count by one and reports whether this
// call brought it to zero, the signal that the destination node's
// input_data_processed_hook should fire and the packet may be destroyed.
func (p *Packet) Release() bool {
	return atomic.AddInt64(&p.refCount, -1) == 0
}

// IDGenerator hands out monotonically increasing packet ids, one sequence
// per source node.
type IDGenerator struct {
	counter uint64
}

// Next returns the next id in this generator's sequence, starting at 1.
func (g *IDGenerator) Next() uint64 {
	return atomic.AddUint64(&g.counter, 1)
}
