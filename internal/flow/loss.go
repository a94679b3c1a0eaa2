package flow

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultBackgroundWeight down-weights background points in the loss so the
// much rarer moving objects dominate the gradient.
const DefaultBackgroundWeight = 0.1

// Threshold is an endpoint-distance cutoff for the accuracy metrics.
// The name keys the metrics table ("1_1" = 1 m/s, "1_10" = 0.1 m/s).
type Threshold struct {
	Value float32
	Name  string
}

// Class pairs a flow class label with its reporting name.
type Class struct {
	Label int
	Name  string
}

// DefaultThresholds are the standard reporting cutoffs.
var DefaultThresholds = []Threshold{
	{Value: 1.0, Name: "1_1"},
	{Value: 0.1, Name: "1_10"},
}

// DefaultClasses are the reported object classes.
var DefaultClasses = []Class{
	{ClassBackground, "background"},
	{ClassVehicle, "vehicle"},
	{ClassPedestrian, "pedestrian"},
	{ClassSign, "sign"},
	{ClassCyclist, "cyclist"},
}

// Metrics maps threshold name -> class name -> fraction of points whose
// endpoint distance is under the threshold.
type Metrics map[string]map[string]float64

// LossOptions configures LossAndMetrics. The zero value is not usable;
// start from DefaultLossOptions.
type LossOptions struct {
	BackgroundWeight float32
	Thresholds       []Threshold
	Classes          []Class
}

// DefaultLossOptions returns the standard weighting and reporting setup.
func DefaultLossOptions() LossOptions {
	return LossOptions{
		BackgroundWeight: DefaultBackgroundWeight,
		Thresholds:       DefaultThresholds,
		Classes:          DefaultClasses,
	}
}

// LossAndMetrics computes the weighted mean endpoint distance between
// predicted and true flow, plus threshold accuracy metrics.
//
// yTrue is flat [M*FlowCols] (vx, vy, vz, class), yPred flat [M*3]; M is
// the total valid point count after padding removal. Per-point weights:
// 0 for ClassIgnore, BackgroundWeight for ClassBackground, 1 otherwise.
//
// When every weight is zero (all labels ignored) the loss is NaN. That is
// deliberate: a degenerate batch must be visible to the caller through
// math.IsNaN, not hidden behind a default.
//
// The accuracy metrics are unweighted fractions over ALL M points. Each
// (threshold, class) entry currently reports the same global fraction
// rather than a per-class one; callers must not read class-level
// differences out of this table.
//
// Panics if yTrue and yPred disagree on M (programmer error).
func LossAndMetrics(yTrue, yPred []float32, opts LossOptions) (float32, Metrics) {
	if len(yTrue)%FlowCols != 0 || len(yPred)%3 != 0 {
		panicf("LossAndMetrics: ragged input: true=%d pred=%d", len(yTrue), len(yPred))
	}
	m := len(yTrue) / FlowCols
	if len(yPred)/3 != m {
		panicf("LossAndMetrics: %d true rows vs %d pred rows", m, len(yPred)/3)
	}

	dist := make([]float64, m)
	var sumWD, sumW float64
	for i := 0; i < m; i++ {
		t := yTrue[i*FlowCols : i*FlowCols+FlowCols]
		p := yPred[i*3 : i*3+3]

		dx := float64(p[0] - t[0])
		dy := float64(p[1] - t[1])
		dz := float64(p[2] - t[2])
		dist[i] = math.Sqrt(dx*dx + dy*dy + dz*dz)

		var w float64
		switch int(t[3]) {
		case ClassIgnore:
			w = 0
		case ClassBackground:
			w = float64(opts.BackgroundWeight)
		default:
			w = 1
		}
		sumWD += w * dist[i]
		sumW += w
	}

	// sumW == 0 yields NaN, which is the contract for a degenerate batch.
	loss := float32(sumWD / sumW)

	metrics := make(Metrics, len(opts.Thresholds))
	for _, th := range opts.Thresholds {
		under := 0
		for _, d := range dist {
			if d < float64(th.Value) {
				under++
			}
		}
		frac := 0.0
		if m > 0 {
			frac = float64(under) / float64(m)
		}
		perClass := make(map[string]float64, len(opts.Classes))
		for _, cl := range opts.Classes {
			perClass[cl.Name] = frac
		}
		metrics[th.Name] = perClass
	}
	return loss, metrics
}

// DistanceSummary reports mean and standard deviation of the endpoint
// distances, for monitoring alongside the threshold metrics.
func DistanceSummary(yTrue, yPred []float32) (mean, stddev float64) {
	m := len(yTrue) / FlowCols
	if m == 0 || len(yPred)/3 != m {
		return 0, 0
	}
	dist := make([]float64, m)
	for i := 0; i < m; i++ {
		t := yTrue[i*FlowCols : i*FlowCols+3]
		p := yPred[i*3 : i*3+3]
		dx := float64(p[0] - t[0])
		dy := float64(p[1] - t[1])
		dz := float64(p[2] - t[2])
		dist[i] = math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	mean, std := stat.MeanStdDev(dist, nil)
	if math.IsNaN(std) { // single sample
		std = 0
	}
	return mean, std
}

// GatherValid flattens a batch's true flows and a prediction block into the
// dense [M,4] / [M,3] pair consumed by LossAndMetrics, dropping padded
// slots. pred must be [B, MaxN, 3] embeddings (the unpillar output).
func GatherValid(b *Batch, pred Embeddings) (yTrue, yPred []float32) {
	if pred.B != b.B || pred.N != b.MaxN || pred.F != 3 {
		panicf("GatherValid: pred shape (%d,%d,%d), want (%d,%d,3)", pred.B, pred.N, pred.F, b.B, b.MaxN)
	}
	for bi := 0; bi < b.B; bi++ {
		flows := b.Flows[bi]
		n := len(flows) / FlowCols
		for i := 0; i < n; i++ {
			if b.Mask[bi*b.MaxN+i] {
				panicf("GatherValid: frame %d point %d within frame length but masked", bi, i)
			}
			yTrue = append(yTrue, flows[i*FlowCols:(i+1)*FlowCols]...)
			yPred = append(yPred, pred.Row(bi, i)...)
		}
	}
	return yTrue, yPred
}
