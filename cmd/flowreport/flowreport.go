// Command flowreport renders training diagnostics: an HTML report of the
// logged loss/accuracy metrics, and optionally a pillar-occupancy heat map
// for one cached frame file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/sceneflow/internal/flow"
	"github.com/banshee-data/sceneflow/internal/flow/frameio"
	"github.com/banshee-data/sceneflow/internal/flow/monitor"
	"github.com/banshee-data/sceneflow/internal/fsutil"
	"github.com/banshee-data/sceneflow/internal/version"
)

var (
	metricsCSV = flag.String("metrics", "", "Training metrics CSV to render")
	reportOut  = flag.String("out", "flow_report.html", "HTML report output path")
	framePath  = flag.String("frame", "", "Optional frame file (.sff) for an occupancy plot")
	occOut     = flag.String("occupancy-out", "occupancy.png", "Occupancy plot output path")
	gridSize   = flag.Int("grid-size", 512, "Pillars per axis")
	xMin       = flag.Float64("x-min", -85, "Metric x minimum")
	xMax       = flag.Float64("x-max", 85, "Metric x maximum")
	yMin       = flag.Float64("y-min", -85, "Metric y minimum")
	yMax       = flag.Float64("y-max", 85, "Metric y maximum")
	zMin        = flag.Float64("z-min", -3, "Metric z minimum")
	zMax        = flag.Float64("z-max", 3, "Metric z maximum")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *metricsCSV == "" && *framePath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(); err != nil {
		log.Fatalf("flowreport: %v", err)
	}
}

func run() error {
	if *metricsCSV != "" {
		if err := renderReport(); err != nil {
			return err
		}
		log.Printf("wrote metrics report to %s", *reportOut)
	}
	if *framePath != "" {
		if err := renderOccupancy(); err != nil {
			return err
		}
		log.Printf("wrote occupancy plot to %s", *occOut)
	}
	return nil
}

func renderReport() error {
	in, err := os.Open(*metricsCSV)
	if err != nil {
		return fmt.Errorf("open metrics: %v", err)
	}
	defer in.Close()

	rows, _, err := monitor.ReadMetricsCSV(in)
	if err != nil {
		return err
	}

	out, err := os.Create(*reportOut)
	if err != nil {
		return fmt.Errorf("create report: %v", err)
	}
	defer out.Close()
	return monitor.RenderMetricsReport(rows, out)
}

func renderOccupancy() error {
	cfg, err := flow.NewPillarConfig(
		float32(*xMin), float32(*xMax),
		float32(*yMin), float32(*yMax),
		float32(*zMin), float32(*zMax), *gridSize)
	if err != nil {
		return err
	}

	cloud, err := frameio.ReadFrame(fsutil.OSFileSystem{}, *framePath)
	if err != nil {
		return err
	}
	frame := flow.Pillarize(flow.FilterBounds(cloud, cfg), cfg)
	return monitor.SaveOccupancyPlot(frame, cfg, *occOut)
}
