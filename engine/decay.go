package engine

import (
	"math"
	"runtime"
	"sync"
)

// decayClampThreshold bounds the cost of decay-tail computation: once a
// T2 layer's value falls below this, it is clamped to 0 rather than kept
// as an ever-shrinking nonzero float.
const decayClampThreshold = 1e-6

// Decay runs the per-pixel decay pass for elapsed wall-clock seconds dt.
// It must run after SpectralResolve within the same frame so that T1's
// contribution is visible exactly once before being cleared — decaying
// first would either double-count or drop a frame's instant energy.
func Decay(buf *Buffer, dt float32) {
	parallelRows(buf.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < buf.Width; x++ {
				decayPixel(buf, x, y, dt)
			}
		}
	})
}

func decayPixel(buf *Buffer, x, y int, dt float32) {
	for gi, g := range buf.Groups {
		base := buf.groupBase(gi)
		l := g.Layout

		for i, term := range g.SlowTerms {
			layer := base + l.SlowStart + i
			s := buf.Get(x, y, layer)
			s *= float32(math.Exp(float64(-dt / term.Tau)))
			if s < decayClampThreshold {
				s = 0
			}
			buf.Set(x, y, layer, s)
		}

		if l.Classification.HasPowerLaw {
			elapsed := buf.Get(x, y, base+l.ElapsedLayer)
			buf.Set(x, y, base+l.ElapsedLayer, elapsed+dt)
		}

		if l.Classification.HasInstant() {
			buf.InstantSet(x, y, gi, 0)
		}
	}
}

// parallelRows splits [0, rows) into GOMAXPROCS contiguous row ranges and
// runs fn over each in its own goroutine, the CPU-side stand-in for a
// per-pixel GPU dispatch, then waits for all of them — the pipeline
// barrier between this pass and whatever comes next.
func parallelRows(rows int, fn func(y0, y1 int)) {
	if rows <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > rows {
		workers = rows
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		y0 := w * chunk
		y1 := y0 + chunk
		if y1 > rows {
			y1 = rows
		}
		if y0 >= y1 {
			continue
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}
