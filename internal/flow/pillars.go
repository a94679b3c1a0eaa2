package flow

// PillarFrame is one bounds-filtered frame after pillarization, ready for
// batch collation. Aug is flat [N*AugCols]; PillarIDs holds one linear
// pillar id per point; Flows carries the unmodified [N*FlowCols] labels.
type PillarFrame struct {
	Aug       []float32
	PillarIDs []int32
	Flows     []float32
	N         int
}

// Pillarize assigns every point of a bounds-filtered cloud to its pillar and
// builds the augmented per-point feature rows.
//
// Augmented row layout (a contract the embedding network's weights depend
// on, do not reorder): pillar center cx, cy, czRef, then point offsets dx,
// dy, dz from that center, then the raw intensity and elongation features.
// czRef is the midpoint of [ZMin, ZMax], see PillarConfig.PillarCenter.
//
// The returned pillar id is the linear cell index iy*NX + ix used as the
// scatter destination. A point mapping outside [0,NX) x [0,NY) means the
// cloud was not bounds-filtered against the same config; that breaks the
// pipeline contract and panics.
func Pillarize(cloud *PointCloud, cfg PillarConfig) PillarFrame {
	cloud.checkAligned("Pillarize")

	n := cloud.Len()
	f := PillarFrame{
		Aug:       make([]float32, 0, n*AugCols),
		PillarIDs: make([]int32, 0, n),
		Flows:     cloud.Flows,
		N:         n,
	}
	for i := 0; i < n; i++ {
		p := cloud.Point(i)
		x, y, z := p[0], p[1], p[2]

		ix, iy := cfg.PillarIndex(x, y)
		if ix < 0 || ix >= cfg.NX || iy < 0 || iy >= cfg.NY {
			panicf("Pillarize: point %d (%v, %v) maps to cell (%d, %d) outside %dx%d grid; cloud not bounds-filtered?",
				i, x, y, ix, iy, cfg.NX, cfg.NY)
		}

		cx, cy, cz := cfg.PillarCenter(ix, iy)
		f.Aug = append(f.Aug,
			cx, cy, cz,
			x-cx, y-cy, z-cz,
			p[3], p[4],
		)
		f.PillarIDs = append(f.PillarIDs, int32(iy*cfg.NX+ix))
	}
	return f
}
