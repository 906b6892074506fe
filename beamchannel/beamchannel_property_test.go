package beamchannel

import (
	"testing"

	"pgregory.net/rapid"
)

// TestSPSCInvariantsHoldUnderRandomPushDrainSequences is the §8 quantified
// invariant: for any sequence of pushes and drains against a capacity-K
// ring, pushed-but-not-drained never exceeds K, pushed+dropped equals
// offered, and delivered samples come out in submission order.
func TestSPSCInvariantsHoldUnderRandomPushDrainSequences(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 32).Draw(rt, "capacity")
		p, c := New(capacity)

		var offered, delivered, dropped uint64
		var acceptedQueue []float32 // X-values of samples actually accepted into the ring, in submission order
		steps := rapid.IntRange(1, 40).Draw(rt, "steps")

		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(rt, "doPush") {
				n := rapid.IntRange(0, capacity+4).Draw(rt, "pushCount")
				batch := make([]Sample, n)
				for j := range batch {
					batch[j] = Sample{X: float32(offered) + float32(j)}
				}
				written := p.PushBulk(batch)
				for j := 0; j < written; j++ {
					acceptedQueue = append(acceptedQueue, batch[j].X)
				}
				offered += uint64(n)
				if pending := c.Pending(); pending > capacity {
					rt.Fatalf("pending %d exceeds capacity %d", pending, capacity)
				}
				dropped += uint64(n - written)
			} else {
				max := rapid.IntRange(0, capacity+4).Draw(rt, "drainMax")
				out := c.DrainUpTo(max)
				for _, s := range out {
					if len(acceptedQueue) == 0 || s.X != acceptedQueue[0] {
						rt.Fatalf("FIFO order violated: got %v, want %v", s.X, acceptedQueue)
					}
					acceptedQueue = acceptedQueue[1:]
					delivered++
				}
			}
		}

		if offered != delivered+dropped+uint64(c.Pending()) {
			rt.Fatalf("offered(%d) != delivered(%d) + dropped(%d) + pending(%d)",
				offered, delivered, dropped, c.Pending())
		}
		if got := p.DroppedCount(); got != dropped {
			rt.Fatalf("DroppedCount() = %d, want %d", got, dropped)
		}
	})
}
