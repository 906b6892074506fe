package engine

import (
	"sync"
	"testing"

	"github.com/typedrat/phosphor/phosphor"
)

func TestNewLayoutPacksSlowPowerLaw(t *testing.T) {
	c := phosphor.Classification{InstantExpCount: 2, SlowExpCount: 3, HasPowerLaw: true}
	l := NewLayout(c, 0)
	if l.SlowStart != 0 {
		t.Fatalf("SlowStart = %d, want 0", l.SlowStart)
	}
	if l.PeakLayer != 3 || l.ElapsedLayer != 4 {
		t.Fatalf("peak/elapsed = %d/%d, want 3/4", l.PeakLayer, l.ElapsedLayer)
	}
	if l.Layers != 5 {
		t.Fatalf("Layers = %d, want 5", l.Layers)
	}
	if l.Layers != c.AccumLayers() {
		t.Fatalf("Layers = %d, want %d", l.Layers, c.AccumLayers())
	}
}

func TestBufferGetSetRoundTrips(t *testing.T) {
	g := Group{Layout: Layout{Layers: 2}}
	buf := NewBuffer(4, 4, []Group{g})
	buf.Set(1, 2, 1, 3.5)
	if got := buf.Get(1, 2, 1); got != 3.5 {
		t.Fatalf("Get = %v, want 3.5", got)
	}
	if got := buf.Get(0, 0, 0); got != 0 {
		t.Fatalf("unwritten slot = %v, want 0", got)
	}
}

func TestBufferAtomicAddUnderConcurrency(t *testing.T) {
	g := Group{Layout: Layout{Layers: 1}}
	buf := NewBuffer(2, 2, []Group{g})

	var wg sync.WaitGroup
	const n = 1000
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf.AtomicAdd(0, 0, 0, 1.0)
		}()
	}
	wg.Wait()

	if got := buf.Get(0, 0, 0); got != float32(n) {
		t.Fatalf("Get = %v, want %v", got, n)
	}
}

func TestBufferZeroClearsAllLayers(t *testing.T) {
	g := Group{Layout: Layout{Layers: 2}}
	buf := NewBuffer(2, 2, []Group{g})
	buf.Set(0, 0, 0, 5)
	buf.Set(1, 1, 1, 7)
	buf.Zero()
	if buf.Get(0, 0, 0) != 0 || buf.Get(1, 1, 1) != 0 {
		t.Fatal("Zero should clear every layer")
	}
}

func TestBuildGroupAssignsSlowLayersInEncounterOrder(t *testing.T) {
	layer := phosphor.Layer{
		DecayTerms: []phosphor.DecayTerm{
			phosphor.NewExponential(6.72, 2.88e-3),
			phosphor.NewExponential(1.0, 15.1e-3),
		},
	}
	g := buildGroup(layer, phosphor.TauCutoff, 0)
	if len(g.SlowTerms) != 2 || g.SlowTerms[0].Tau != 2.88e-3 || g.SlowTerms[1].Tau != 15.1e-3 {
		t.Fatalf("SlowTerms = %+v, want both terms in encounter order", g.SlowTerms)
	}
	if g.Layout.SlowStart != 0 || g.Layout.Layers != 2 {
		t.Fatalf("layout = %+v", g.Layout)
	}
}
