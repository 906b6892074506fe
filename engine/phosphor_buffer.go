package engine

import "github.com/typedrat/phosphor/phosphor"

// BuildGroups derives the engine Group list for a phosphor: one group for
// single-layer phosphors, two (fluorescence then phosphorescence) for
// dual-layer ones, each with its own layer range — the "duplicated
// per-group T2/T3 state" resolution of spec.md §9's open question.
func BuildGroups(p phosphor.Phosphor) []Group {
	layers := p.EmissionGroups()
	groups := make([]Group, len(layers))
	base := 0
	for i, layer := range layers {
		g := buildGroup(layer, phosphor.TauCutoff, base)
		groups[i] = g
		base += g.Layout.Layers
	}
	return groups
}

// NewBufferForPhosphor allocates an accumulation buffer sized for p at the
// given internal resolution.
func NewBufferForPhosphor(p phosphor.Phosphor, width, height int) *Buffer {
	return NewBuffer(width, height, BuildGroups(p))
}
