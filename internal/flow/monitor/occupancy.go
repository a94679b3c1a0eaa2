// Package monitor renders diagnostics for the pillar pipeline: occupancy
// heat maps of the rasterised grid and HTML reports of training metrics.
package monitor

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/sceneflow/internal/flow"
)

// OccupancyCounts tallies how many points of a pillar frame land in each
// grid cell, as a flat [NY*NX] table indexed pid = iy*NX + ix.
func OccupancyCounts(f flow.PillarFrame, cfg flow.PillarConfig) []int {
	counts := make([]int, cfg.Pillars())
	for _, pid := range f.PillarIDs {
		counts[pid]++
	}
	return counts
}

// occupancyGrid adapts a count table to the plotter.GridXYZ interface.
// X and Y report metric pillar-center coordinates.
type occupancyGrid struct {
	counts []int
	cfg    flow.PillarConfig
}

func (g occupancyGrid) Dims() (c, r int) { return g.cfg.NX, g.cfg.NY }

func (g occupancyGrid) Z(c, r int) float64 { return float64(g.counts[r*g.cfg.NX+c]) }

func (g occupancyGrid) X(c int) float64 {
	x, _, _ := g.cfg.PillarCenter(c, 0)
	return float64(x)
}

func (g occupancyGrid) Y(r int) float64 {
	_, y, _ := g.cfg.PillarCenter(0, r)
	return float64(y)
}

// SaveOccupancyPlot renders the pillar occupancy of one frame as a PNG
// heat map. Useful for eyeballing whether the bounds and cell size leave
// the grid as sparse as expected.
func SaveOccupancyPlot(f flow.PillarFrame, cfg flow.PillarConfig, path string) error {
	if len(f.PillarIDs) == 0 {
		return fmt.Errorf("monitor: no points to plot")
	}

	grid := occupancyGrid{counts: OccupancyCounts(f, cfg), cfg: cfg}
	hm := plotter.NewHeatMap(grid, palette.Heat(32, 1))

	p := plot.New()
	p.Title.Text = fmt.Sprintf("pillar occupancy (%d points, %dx%d grid)", f.N, cfg.NX, cfg.NY)
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("monitor: save occupancy plot: %v", err)
	}
	return nil
}
