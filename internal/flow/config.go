package flow

import (
	"fmt"
	"math"
)

// PillarConfig fixes the metric bounds and rasterization geometry shared by
// every transform in a frame pair. It is an immutable value passed into the
// pure transform functions; nothing in this package captures it.
type PillarConfig struct {
	XMin, XMax float32 // metric x bounds (inclusive)
	YMin, YMax float32 // metric y bounds (inclusive)
	ZMin, ZMax float32 // metric z bounds (inclusive)
	CellSize   float32 // pillar edge length in meters, identical in x and y
	NX, NY     int     // grid dimensions derived from bounds and cell size
}

// NewPillarConfig derives a PillarConfig from metric bounds and the desired
// grid resolution. The grid must be square in metric extent: the pillar cell
// is the same size in x and y, so unequal extents would need per-axis cell
// sizes the rest of the pipeline does not support.
func NewPillarConfig(xMin, xMax, yMin, yMax, zMin, zMax float32, gridSize int) (PillarConfig, error) {
	if xMax <= xMin || yMax <= yMin || zMax <= zMin {
		return PillarConfig{}, fmt.Errorf("pillar config: empty bounds x[%v,%v] y[%v,%v] z[%v,%v]",
			xMin, xMax, yMin, yMax, zMin, zMax)
	}
	if gridSize <= 0 {
		return PillarConfig{}, fmt.Errorf("pillar config: grid size must be positive, got %d", gridSize)
	}
	if xMax-xMin != yMax-yMin {
		return PillarConfig{}, fmt.Errorf("pillar config: grid must have the same metric length in x and y, got %v and %v",
			xMax-xMin, yMax-yMin)
	}

	cell := (xMax - xMin) / float32(gridSize)
	cfg := PillarConfig{
		XMin: xMin, XMax: xMax,
		YMin: yMin, YMax: yMax,
		ZMin: zMin, ZMax: zMax,
		CellSize: cell,
		NX:       int((xMax - xMin) / cell),
		NY:       int((yMax - yMin) / cell),
	}
	return cfg, nil
}

// DefaultPillarConfig returns the standard 170m x 170m scene at 512x512
// pillars used by the reference training setup.
func DefaultPillarConfig() PillarConfig {
	cfg, err := NewPillarConfig(-85, 85, -85, 85, -3, 3, 512)
	if err != nil {
		panic(err) // static bounds, cannot fail
	}
	return cfg
}

// Pillars returns the total pillar count NX*NY.
func (c PillarConfig) Pillars() int {
	return c.NX * c.NY
}

// PillarIndex maps a metric (x, y) to its grid cell via floor division.
// The bounds are inclusive, so a point sitting exactly on the max edge
// belongs to the last cell. Callers must have bounds-filtered first: the
// result is only valid inside [0, NX) x [0, NY).
func (c PillarConfig) PillarIndex(x, y float32) (ix, iy int) {
	ix = int(math.Floor(float64((x - c.XMin) / c.CellSize)))
	iy = int(math.Floor(float64((y - c.YMin) / c.CellSize)))
	if ix == c.NX && x == c.XMax {
		ix--
	}
	if iy == c.NY && y == c.YMax {
		iy--
	}
	return ix, iy
}

// PillarCenter returns the metric center of cell (ix, iy). The z component
// is the fixed midpoint of [ZMin, ZMax]: pillars span the full z range, so
// the vertical reference is a per-scene constant rather than a per-cell one.
func (c PillarConfig) PillarCenter(ix, iy int) (cx, cy, cz float32) {
	cx = c.XMin + (float32(ix)+0.5)*c.CellSize
	cy = c.YMin + (float32(iy)+0.5)*c.CellSize
	cz = (c.ZMin + c.ZMax) / 2
	return cx, cy, cz
}
