package frame

import "testing"

func TestNewTimingRingRoundsUpToPowerOfTwo(t *testing.T) {
	r := NewTimingRing(5)
	if r.capacity != 8 {
		t.Fatalf("capacity = %d, want 8", r.capacity)
	}
}

func TestTimingRingSnapshotOrderedOldestFirst(t *testing.T) {
	r := NewTimingRing(4)
	for i := 0; i < 3; i++ {
		r.Push(FrameTiming{Total: int64(i)})
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len = %d, want 3", len(snap))
	}
	for i, ft := range snap {
		if ft.Total != int64(i) {
			t.Fatalf("snap[%d].Total = %d, want %d", i, ft.Total, i)
		}
	}
}

func TestTimingRingWrapsAndCapsAtCapacity(t *testing.T) {
	r := NewTimingRing(4)
	for i := 0; i < 10; i++ {
		r.Push(FrameTiming{Total: int64(i)})
	}
	if r.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", r.Len())
	}
	snap := r.Snapshot()
	want := []int64{6, 7, 8, 9}
	for i, ft := range snap {
		if ft.Total != want[i] {
			t.Fatalf("snap[%d].Total = %d, want %d", i, ft.Total, want[i])
		}
	}
}

func TestTimingRingPreservesPerSegmentValues(t *testing.T) {
	r := NewTimingRing(2)
	r.Push(FrameTiming{Segments: [numSegments]int64{1, 2, 3, 4, 5}, Total: 100, BeamCount: 42})
	snap := r.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("len = %d, want 1", len(snap))
	}
	ft := snap[0]
	if ft.Segments[SegBeamWrite] != 1 || ft.Segments[SegComposite] != 5 {
		t.Fatalf("segments = %v", ft.Segments)
	}
	if ft.BeamCount != 42 {
		t.Fatalf("BeamCount = %d, want 42", ft.BeamCount)
	}
}

func TestSegmentStringer(t *testing.T) {
	cases := map[Segment]string{
		SegBeamWrite:       "beam_write",
		SegSpectralResolve: "spectral_resolve",
		SegDecay:           "decay",
		SegHalation:        "halation",
		SegComposite:       "composite",
	}
	for seg, want := range cases {
		if got := seg.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", int(seg), got, want)
		}
	}
}
