package monitor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/sceneflow/internal/flow"
)

// MetricsRow is one logged training step.
type MetricsRow struct {
	Step    int
	Loss    float64
	Metrics flow.Metrics
}

// MetricsWriter appends training metrics to a CSV stream. Column layout:
// step, loss, then one acc_<threshold>_<class> column per configured
// threshold/class pair, in option order.
type MetricsWriter struct {
	w          *csv.Writer
	thresholds []flow.Threshold
	classes    []flow.Class
}

// NewMetricsWriter writes the header row and returns the writer.
func NewMetricsWriter(out io.Writer, opts flow.LossOptions) (*MetricsWriter, error) {
	mw := &MetricsWriter{
		w:          csv.NewWriter(out),
		thresholds: opts.Thresholds,
		classes:    opts.Classes,
	}
	header := []string{"step", "loss"}
	for _, th := range opts.Thresholds {
		for _, cl := range opts.Classes {
			header = append(header, fmt.Sprintf("acc_%s_%s", th.Name, cl.Name))
		}
	}
	if err := mw.w.Write(header); err != nil {
		return nil, fmt.Errorf("monitor: write metrics header: %v", err)
	}
	mw.w.Flush()
	return mw, mw.w.Error()
}

// Append logs one step.
func (mw *MetricsWriter) Append(step int, loss float64, m flow.Metrics) error {
	row := []string{
		strconv.Itoa(step),
		strconv.FormatFloat(loss, 'g', -1, 64),
	}
	for _, th := range mw.thresholds {
		for _, cl := range mw.classes {
			row = append(row, strconv.FormatFloat(m[th.Name][cl.Name], 'g', -1, 64))
		}
	}
	if err := mw.w.Write(row); err != nil {
		return fmt.Errorf("monitor: write metrics row: %v", err)
	}
	mw.w.Flush()
	return mw.w.Error()
}

// ReadMetricsCSV parses a metrics CSV produced by MetricsWriter back into
// rows. Column names are taken from the header, so files written with
// non-default thresholds or classes read back fine.
func ReadMetricsCSV(in io.Reader) ([]MetricsRow, []string, error) {
	r := csv.NewReader(in)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("monitor: read metrics csv: %v", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("monitor: metrics csv has no header")
	}
	header := records[0]
	if len(header) < 2 || header[0] != "step" || header[1] != "loss" {
		return nil, nil, fmt.Errorf("monitor: unexpected metrics header %v", header)
	}

	var rows []MetricsRow
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, nil, fmt.Errorf("monitor: row %d has %d columns, header has %d", i+1, len(rec), len(header))
		}
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, nil, fmt.Errorf("monitor: row %d step: %v", i+1, err)
		}
		loss, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("monitor: row %d loss: %v", i+1, err)
		}
		row := MetricsRow{Step: step, Loss: loss, Metrics: make(flow.Metrics)}
		for j := 2; j < len(header); j++ {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("monitor: row %d column %s: %v", i+1, header[j], err)
			}
			// Column names are acc_<threshold>_<class>; split on the
			// last underscore since threshold names contain one.
			name := header[j]
			th, cl, ok := splitMetricColumn(name)
			if !ok {
				return nil, nil, fmt.Errorf("monitor: bad metric column %q", name)
			}
			if row.Metrics[th] == nil {
				row.Metrics[th] = make(map[string]float64)
			}
			row.Metrics[th][cl] = v
		}
		rows = append(rows, row)
	}
	return rows, header[2:], nil
}

func splitMetricColumn(name string) (threshold, class string, ok bool) {
	const prefix = "acc_"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return "", "", false
	}
	rest := name[len(prefix):]
	for i := len(rest) - 1; i > 0; i-- {
		if rest[i] == '_' {
			return rest[:i], rest[i+1:], true
		}
	}
	return "", "", false
}
