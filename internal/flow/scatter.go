package flow

// Embeddings holds per-point feature vectors for a padded batch, flat
// [B*N*F] row-major.
type Embeddings struct {
	B, N, F int
	Data    []float32
}

// NewEmbeddings allocates a zeroed embedding block.
func NewEmbeddings(b, n, f int) Embeddings {
	return Embeddings{B: b, N: n, F: f, Data: make([]float32, b*n*f)}
}

// Row returns the feature vector of point (b, n) as a slice into Data.
func (e Embeddings) Row(b, n int) []float32 {
	base := (b*e.N + n) * e.F
	return e.Data[base : base+e.F]
}

// FeatureGrid is a dense per-pillar feature volume, flat [B*F*NY*NX] in
// (batch, channel, row, column) order.
type FeatureGrid struct {
	B, F, NY, NX int
	Data         []float32
}

// NewFeatureGrid allocates a zeroed grid.
func NewFeatureGrid(b, f, ny, nx int) FeatureGrid {
	return FeatureGrid{B: b, F: f, NY: ny, NX: nx, Data: make([]float32, b*f*ny*nx)}
}

// At returns the index of element (b, f, iy, ix) in Data.
func (g FeatureGrid) At(b, f, iy, ix int) int {
	return ((b*g.F+f)*g.NY+iy)*g.NX + ix
}

// MaskedEmbeddings zeroes every embedding row whose mask slot is true, in
// place, and returns emb. Run this on the embedding network's output before
// Scatter so padded slots cannot leak into the grid even if an aggregation
// path ignores the mask.
func MaskedEmbeddings(emb Embeddings, mask []bool) Embeddings {
	if len(mask) != emb.B*emb.N {
		panicf("MaskedEmbeddings: mask length %d, want %d", len(mask), emb.B*emb.N)
	}
	for i, padded := range mask {
		if !padded {
			continue
		}
		row := emb.Data[i*emb.F : (i+1)*emb.F]
		for j := range row {
			row[j] = 0
		}
	}
	return emb
}

// Scatter aggregates per-point embeddings into a dense pillar grid with an
// element-wise max across all points sharing a pillar. Max is associative
// and commutative, so the result does not depend on point order; it is also
// invariant to how many points land in a pillar, which is the property the
// pillar representation relies on.
//
// The first point to reach a pillar copies its vector and later points max
// against it, so pillars whose points are all negative in some channel keep
// the true maximum rather than clamping at the zero initialisation. Pillars
// receiving no points stay all-zero. Masked (padded) slots contribute
// nothing.
//
// Panics on mask/id length mismatch or a pillar id outside [0, NX*NY)
// (upstream contract violation).
func Scatter(emb Embeddings, pillarIDs []int32, mask []bool, cfg PillarConfig) FeatureGrid {
	if len(pillarIDs) != emb.B*emb.N || len(mask) != emb.B*emb.N {
		panicf("Scatter: ids=%d mask=%d, want %d", len(pillarIDs), len(mask), emb.B*emb.N)
	}

	grid := NewFeatureGrid(emb.B, emb.F, cfg.NY, cfg.NX)
	seen := make([]bool, emb.B*cfg.Pillars())

	for b := 0; b < emb.B; b++ {
		for n := 0; n < emb.N; n++ {
			slot := b*emb.N + n
			if mask[slot] {
				continue
			}
			pid := int(pillarIDs[slot])
			if pid < 0 || pid >= cfg.Pillars() {
				panicf("Scatter: pillar id %d outside grid of %d cells", pid, cfg.Pillars())
			}
			iy, ix := pid/cfg.NX, pid%cfg.NX
			row := emb.Row(b, n)

			cell := b*cfg.Pillars() + pid
			if !seen[cell] {
				seen[cell] = true
				for f := 0; f < emb.F; f++ {
					grid.Data[grid.At(b, f, iy, ix)] = row[f]
				}
				continue
			}
			for f := 0; f < emb.F; f++ {
				gi := grid.At(b, f, iy, ix)
				if row[f] > grid.Data[gi] {
					grid.Data[gi] = row[f]
				}
			}
		}
	}
	return grid
}

// Unscatter broadcasts each pillar's grid vector back onto every point
// assigned to that pillar. Masked slots are left zero; their values are
// discarded before the loss, so any fill would do, but zero keeps the
// output deterministic.
func Unscatter(grid FeatureGrid, pillarIDs []int32, mask []bool, n int) Embeddings {
	if len(pillarIDs) != grid.B*n || len(mask) != grid.B*n {
		panicf("Unscatter: ids=%d mask=%d, want %d", len(pillarIDs), len(mask), grid.B*n)
	}

	out := NewEmbeddings(grid.B, n, grid.F)
	pillars := grid.NX * grid.NY
	for b := 0; b < grid.B; b++ {
		for i := 0; i < n; i++ {
			slot := b*n + i
			if mask[slot] {
				continue
			}
			pid := int(pillarIDs[slot])
			if pid < 0 || pid >= pillars {
				panicf("Unscatter: pillar id %d outside grid of %d cells", pid, pillars)
			}
			iy, ix := pid/grid.NX, pid%grid.NX
			row := out.Row(b, i)
			for f := 0; f < grid.F; f++ {
				row[f] = grid.Data[grid.At(b, f, iy, ix)]
			}
		}
	}
	return out
}
