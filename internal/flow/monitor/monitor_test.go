package monitor

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/sceneflow/internal/flow"
)

func testFrame(t *testing.T, cfg flow.PillarConfig) flow.PillarFrame {
	t.Helper()
	cloud := &flow.PointCloud{
		Points: []float32{
			-1.5, -1.5, 0, 1, 1,
			-1.5, -1.4, 0, 1, 1,
			1.5, 1.5, 0, 1, 1,
		},
		Flows: make([]float32, 3*flow.FlowCols),
	}
	return flow.Pillarize(cloud, cfg)
}

func TestOccupancyCounts(t *testing.T) {
	cfg, err := flow.NewPillarConfig(-2, 2, -2, 2, -1, 1, 4)
	if err != nil {
		t.Fatalf("NewPillarConfig: %v", err)
	}
	f := testFrame(t, cfg)

	counts := OccupancyCounts(f, cfg)

	total := 0
	for _, c := range counts {
		total += c
	}
	if total != 3 {
		t.Errorf("total occupancy = %d, want 3", total)
	}
	// Two points share cell (0,0).
	if counts[0] != 2 {
		t.Errorf("cell (0,0) = %d, want 2", counts[0])
	}
}

func TestSaveOccupancyPlot(t *testing.T) {
	cfg, err := flow.NewPillarConfig(-2, 2, -2, 2, -1, 1, 4)
	if err != nil {
		t.Fatalf("NewPillarConfig: %v", err)
	}
	path := filepath.Join(t.TempDir(), "occupancy.png")

	if err := SaveOccupancyPlot(testFrame(t, cfg), cfg, path); err != nil {
		t.Fatalf("SaveOccupancyPlot: %v", err)
	}
}

func TestSaveOccupancyPlot_EmptyFrame(t *testing.T) {
	cfg, _ := flow.NewPillarConfig(-2, 2, -2, 2, -1, 1, 4)
	if err := SaveOccupancyPlot(flow.PillarFrame{}, cfg, "x.png"); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestMetricsCSV_RoundTrip(t *testing.T) {
	opts := flow.DefaultLossOptions()
	var buf bytes.Buffer

	mw, err := NewMetricsWriter(&buf, opts)
	if err != nil {
		t.Fatalf("NewMetricsWriter: %v", err)
	}

	m := flow.Metrics{}
	for _, th := range opts.Thresholds {
		m[th.Name] = map[string]float64{}
		for _, cl := range opts.Classes {
			m[th.Name][cl.Name] = 0.25
		}
	}
	if err := mw.Append(1, 0.5, m); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mw.Append(2, 0.4, m); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows, cols, err := ReadMetricsCSV(&buf)
	if err != nil {
		t.Fatalf("ReadMetricsCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if len(cols) != len(opts.Thresholds)*len(opts.Classes) {
		t.Errorf("metric columns = %d, want %d", len(cols), len(opts.Thresholds)*len(opts.Classes))
	}
	if rows[0].Step != 1 || rows[0].Loss != 0.5 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if got := rows[1].Metrics["1_10"]["vehicle"]; got != 0.25 {
		t.Errorf("1_10/vehicle = %v, want 0.25", got)
	}
}

func TestReadMetricsCSV_BadHeader(t *testing.T) {
	_, _, err := ReadMetricsCSV(strings.NewReader("foo,bar\n1,2\n"))
	if err == nil {
		t.Error("expected error for bad header")
	}
}

func TestRenderMetricsReport(t *testing.T) {
	rows := []MetricsRow{
		{Step: 1, Loss: 1.0, Metrics: flow.Metrics{"1_1": {"vehicle": 0.1, "background": 0.2}}},
		{Step: 2, Loss: 0.8, Metrics: flow.Metrics{"1_1": {"vehicle": 0.3, "background": 0.4}}},
	}
	var buf bytes.Buffer

	if err := RenderMetricsReport(rows, &buf); err != nil {
		t.Fatalf("RenderMetricsReport: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "echarts") {
		t.Error("report does not embed echarts")
	}
	if !strings.Contains(html, "Weighted flow loss") {
		t.Error("loss chart title missing")
	}
}

func TestRenderMetricsReport_Empty(t *testing.T) {
	if err := RenderMetricsReport(nil, &bytes.Buffer{}); err == nil {
		t.Error("expected error for empty rows")
	}
}
