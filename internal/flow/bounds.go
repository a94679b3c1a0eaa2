package flow

// FilterBounds returns a copy of the cloud with every point whose coordinate
// falls outside the inclusive box [XMin,XMax] x [YMin,YMax] x [ZMin,ZMax]
// removed. Flows are filtered with the identical mask so points and labels
// stay co-indexed. The input cloud is not modified.
//
// Panics if points and flows disagree on length (programmer error).
func FilterBounds(cloud *PointCloud, cfg PillarConfig) *PointCloud {
	cloud.checkAligned("FilterBounds")

	n := cloud.Len()
	out := &PointCloud{
		Points: make([]float32, 0, len(cloud.Points)),
		Flows:  make([]float32, 0, len(cloud.Flows)),
		Pose:   cloud.Pose,
	}
	for i := 0; i < n; i++ {
		p := cloud.Point(i)
		x, y, z := p[0], p[1], p[2]
		if x < cfg.XMin || x > cfg.XMax ||
			y < cfg.YMin || y > cfg.YMax ||
			z < cfg.ZMin || z > cfg.ZMax {
			continue
		}
		out.Points = append(out.Points, p...)
		out.Flows = append(out.Flows, cloud.Flow(i)...)
	}
	return out
}
