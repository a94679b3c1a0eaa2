package flow

// Column strides for the flat point-cloud representation. Points and flows
// are stored as row-major flat float32 slices; the column layout below is a
// contract shared with the on-disk frame format (see internal/flow/frameio).
const (
	// PointCols is the per-point column count: x, y, z, intensity, elongation.
	PointCols = 5
	// FlowCols is the per-point flow column count: vx, vy, vz, class.
	FlowCols = 4
	// AugCols is the per-point augmented feature count produced by Pillarize:
	// cx, cy, czRef, dx, dy, dz, intensity, elongation.
	AugCols = 8
)

// Flow class labels. ClassIgnore marks points without a usable label; such
// points carry zero weight in the loss.
const (
	ClassIgnore     = -1
	ClassBackground = 0
	ClassVehicle    = 1
	ClassPedestrian = 2
	ClassSign       = 3
	ClassCyclist    = 4
)

// PointCloud is one sensor frame: N points with parallel per-point flow
// labels and the point-to-global rigid transform of the frame.
//
// Points is a flat [N*PointCols] slice, Flows a flat [N*FlowCols] slice.
// The two are co-indexed 1:1; constructors and filters preserve alignment.
type PointCloud struct {
	Points []float32
	Flows  []float32
	// Pose is the point-to-global rigid transform, row-major 4x4.
	Pose [16]float64
}

// Len returns the number of points in the cloud.
func (c *PointCloud) Len() int {
	return len(c.Points) / PointCols
}

// Point returns the i-th point row (slice into the backing array, length
// PointCols). Callers must not grow the returned slice.
func (c *PointCloud) Point(i int) []float32 {
	return c.Points[i*PointCols : (i+1)*PointCols]
}

// Flow returns the i-th flow row (slice into the backing array, length
// FlowCols).
func (c *PointCloud) Flow(i int) []float32 {
	return c.Flows[i*FlowCols : (i+1)*FlowCols]
}

// checkAligned panics unless the points and flows arrays describe the same
// number of rows. A mismatch means a caller broke the 1:1 co-indexing
// contract; that is a programmer error, not a recoverable condition.
func (c *PointCloud) checkAligned(op string) {
	if len(c.Points)%PointCols != 0 {
		panicf("%s: points length %d not a multiple of %d", op, len(c.Points), PointCols)
	}
	if len(c.Flows)%FlowCols != 0 {
		panicf("%s: flows length %d not a multiple of %d", op, len(c.Flows), FlowCols)
	}
	if len(c.Points)/PointCols != len(c.Flows)/FlowCols {
		panicf("%s: %d points vs %d flows", op, len(c.Points)/PointCols, len(c.Flows)/FlowCols)
	}
}
