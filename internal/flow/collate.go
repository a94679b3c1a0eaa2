package flow

// Batch packs a list of variable-length pillar frames into fixed-shape
// arrays padded to the largest frame, plus a validity mask.
//
// Points is flat [B*MaxN*AugCols], PillarIDs flat [B*MaxN], Mask flat
// [B*MaxN]. Mask[b*MaxN+i] == true marks a padded (invalid) slot; padded
// point rows are zero-filled and padded pillar ids are 0. Pillar id 0 is a
// real cell, so padding must never reach the grid: embeddings are zeroed
// under the mask before scatter (see MaskedEmbeddings) and the Scatter
// Engine additionally skips masked slots.
//
// Flow targets are deliberately NOT padded or stacked. The loss masks each
// frame's labels individually before any cross-frame aggregation; padding
// flows with zeros would inject fake zero-motion background labels.
type Batch struct {
	B, MaxN   int
	Points    []float32
	PillarIDs []int32
	Mask      []bool
	Flows     [][]float32
}

// Collate combines pillar frames into one padded batch. MaxN is the largest
// point count in the batch, computed here at construction time.
func Collate(frames []PillarFrame) *Batch {
	maxN := 0
	for _, f := range frames {
		if f.N != len(f.PillarIDs) || f.N*AugCols != len(f.Aug) {
			panicf("Collate: frame arrays disagree: N=%d ids=%d aug=%d", f.N, len(f.PillarIDs), len(f.Aug))
		}
		if f.N > maxN {
			maxN = f.N
		}
	}

	b := &Batch{
		B:         len(frames),
		MaxN:      maxN,
		Points:    make([]float32, len(frames)*maxN*AugCols),
		PillarIDs: make([]int32, len(frames)*maxN),
		Mask:      make([]bool, len(frames)*maxN),
		Flows:     make([][]float32, len(frames)),
	}
	for bi, f := range frames {
		copy(b.Points[bi*maxN*AugCols:], f.Aug)
		copy(b.PillarIDs[bi*maxN:], f.PillarIDs)
		for i := f.N; i < maxN; i++ {
			b.Mask[bi*maxN+i] = true
		}
		b.Flows[bi] = f.Flows
	}
	return b
}

// ValidCount returns the total number of non-padded points in the batch.
func (b *Batch) ValidCount() int {
	n := 0
	for _, padded := range b.Mask {
		if !padded {
			n++
		}
	}
	return n
}
