package monitor

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderMetricsReport renders an HTML page with the loss curve and the
// threshold-accuracy curves from logged training metrics.
func RenderMetricsReport(rows []MetricsRow, w io.Writer) error {
	if len(rows) == 0 {
		return fmt.Errorf("monitor: no metrics rows to report")
	}

	steps := make([]string, len(rows))
	lossData := make([]opts.LineData, len(rows))
	for i, r := range rows {
		steps[i] = strconv.Itoa(r.Step)
		lossData[i] = opts.LineData{Value: r.Loss}
	}

	loss := charts.NewLine()
	loss.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Scene Flow Training", Width: "1200px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Weighted flow loss", Subtitle: fmt.Sprintf("%d steps", len(rows))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "loss"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
	)
	loss.SetXAxis(steps)
	loss.AddSeries("loss", lossData, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	// One accuracy chart per threshold, one series per class.
	var thresholds []string
	for th := range rows[0].Metrics {
		thresholds = append(thresholds, th)
	}
	sort.Strings(thresholds)

	page := components.NewPage()
	page.AddCharts(loss)

	for _, th := range thresholds {
		var classes []string
		for cl := range rows[0].Metrics[th] {
			classes = append(classes, cl)
		}
		sort.Strings(classes)

		acc := charts.NewLine()
		acc.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "480px"}),
			charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Accuracy, threshold %s", th)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithYAxisOpts(opts.YAxis{Name: "fraction under threshold", Min: 0, Max: 1}),
			charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
		)
		acc.SetXAxis(steps)
		for _, cl := range classes {
			data := make([]opts.LineData, len(rows))
			for i, r := range rows {
				data[i] = opts.LineData{Value: r.Metrics[th][cl]}
			}
			acc.AddSeries(cl, data)
		}
		page.AddCharts(acc)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("monitor: render metrics report: %v", err)
	}
	return nil
}
