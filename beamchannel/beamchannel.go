// Package beamchannel implements a bounded, single-producer/single-consumer
// queue of beam samples with zero-copy bulk push/drain.
//
// Bulk transfer exists because the producer generates at least a
// millisecond's worth of audio-rate samples per iteration (batch sizes in
// the hundreds to low thousands); per-sample atomic operations on the ring
// would dominate the producer's CPU budget.
package beamchannel

import "sync/atomic"

// Sample is one beam position/intensity observation. It is a plain value
// type so bulk transfer can move slices of it without per-element
// synchronization.
type Sample struct {
	X, Y      float32
	Intensity float32
	DT        float32
}

// Blank reports whether this sample represents a retrace/blanking interval.
func (s Sample) Blank() bool {
	return s.Intensity <= 0
}

// ring is the shared state between a Producer and Consumer. Only head is
// ever written by the producer and only tail by the consumer; each reads
// the other's index with atomic loads, giving the classic SPSC ring the
// single-writer-per-field property that makes it correct without locks.
type ring struct {
	buf      []Sample
	capacity uint64

	head    atomic.Uint64 // next write index, producer-owned
	tail    atomic.Uint64 // next read index, consumer-owned
	dropped atomic.Uint64
}

// New creates a bounded SPSC channel of the given capacity and returns its
// producer and consumer halves. capacity must be >= 1.
func New(capacity int) (*Producer, *Consumer) {
	if capacity < 1 {
		capacity = 1
	}
	r := &ring{
		buf:      make([]Sample, capacity),
		capacity: uint64(capacity),
	}
	return &Producer{r: r}, &Consumer{r: r}
}

// Producer is the write half of a beam sample channel. It must be used by
// exactly one goroutine for its lifetime: like the original Send-not-Sync
// design, nothing here is safe for concurrent use from multiple writers.
type Producer struct {
	r *ring
}

// PushBulk writes as many samples from s as fit in the remaining ring
// capacity and returns the count actually written. Samples beyond capacity
// are dropped and counted in DroppedCount.
func (p *Producer) PushBulk(s []Sample) int {
	r := p.r
	head := r.head.Load()
	tail := r.tail.Load()
	used := head - tail
	free := r.capacity - used
	n := uint64(len(s))
	if n > free {
		n = free
	}
	for i := uint64(0); i < n; i++ {
		r.buf[(head+i)%r.capacity] = s[i]
	}
	if n > 0 {
		r.head.Store(head + n)
	}
	if dropped := uint64(len(s)) - n; dropped > 0 {
		r.dropped.Add(dropped)
	}
	return int(n)
}

// DroppedCount returns the monotonic count of samples dropped by this
// producer due to the ring being full.
func (p *Producer) DroppedCount() uint64 {
	return p.r.dropped.Load()
}

// Capacity returns the fixed capacity of the channel.
func (p *Producer) Capacity() int {
	return int(p.r.capacity)
}

// Consumer is the read half of a beam sample channel. Like Producer, it
// must be used by exactly one goroutine for its lifetime.
type Consumer struct {
	r *ring
}

// Pending reports the number of samples currently queued.
func (c *Consumer) Pending() int {
	head := c.r.head.Load()
	tail := c.r.tail.Load()
	return int(head - tail)
}

// DrainUpTo moves up to max samples out of the ring in FIFO order and
// returns them; any remainder stays queued for a later call.
func (c *Consumer) DrainUpTo(max int) []Sample {
	r := c.r
	head := r.head.Load()
	tail := r.tail.Load()
	pending := head - tail
	n := uint64(max)
	if n > pending {
		n = pending
	}
	if n == 0 {
		return nil
	}
	out := make([]Sample, n)
	for i := uint64(0); i < n; i++ {
		out[i] = r.buf[(tail+i)%r.capacity]
	}
	r.tail.Store(tail + n)
	return out
}

// DroppedCount returns the monotonic count of samples dropped by the
// producer, as observed from the consumer side.
func (c *Consumer) DroppedCount() uint64 {
	return c.r.dropped.Load()
}

// Capacity returns the fixed capacity of the channel.
func (c *Consumer) Capacity() int {
	return int(c.r.capacity)
}
