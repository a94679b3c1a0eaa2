// Package decode models the boundary to the external sensor-log decoder.
//
// The proprietary log format is decoded out of process; this package only
// fixes the shape of what comes back — per-sensor point and flow arrays for
// the first and second laser return, in a deterministic sensor order — and
// assembles the per-sensor pieces into one PointCloud frame.
package decode

import (
	"context"
	"fmt"
	"sort"

	"github.com/banshee-data/sceneflow/internal/flow"
)

// Return indices into SensorReturns.Returns.
const (
	FirstReturn  = 0
	SecondReturn = 1
)

// PointSet is one sensor's decoded points for a single return: flat
// [N*flow.PointCols] coordinates/features and the co-indexed
// [N*flow.FlowCols] flow labels. Flows may be empty when the source
// segment carries no flow annotations.
type PointSet struct {
	Points []float32
	Flows  []float32
}

// Len returns the point count.
func (s PointSet) Len() int { return len(s.Points) / flow.PointCols }

// SensorReturns is the fixed 2-slot (first return, second return) record
// for one sensor. Decoders that produce no second return leave slot 1
// empty.
type SensorReturns struct {
	SensorID int
	Returns  [2]PointSet
}

// DecodedFrame is one decoded sensor-log frame. Sensors are ordered by
// ascending SensorID — the order is part of the contract so that frame
// assembly is deterministic regardless of how the decoder iterates its
// internal maps.
type DecodedFrame struct {
	Sensors []SensorReturns
	// Pose is the top sensor's point-to-global transform for the frame.
	Pose [16]float64
	// TimestampMicros is the frame capture time from the source log.
	TimestampMicros int64
}

// FrameDecoder turns one compressed frame blob into decoded per-sensor
// arrays. Implementations wrap the external decoder process.
type FrameDecoder interface {
	DecodeFrame(ctx context.Context, blob []byte) (*DecodedFrame, error)
}

// SortSensors orders the frame's sensors by ascending id in place. Call it
// on frames from decoders that do not guarantee ordering themselves.
func SortSensors(f *DecodedFrame) {
	sort.Slice(f.Sensors, func(i, j int) bool {
		return f.Sensors[i].SensorID < f.Sensors[j].SensorID
	})
}

// AssembleCloud concatenates every sensor's points for the given return
// index into a single frame cloud, in sensor-id order. Sensors without
// flow labels for that return are rejected: the pipeline depends on the
// 1:1 point/flow correspondence.
func AssembleCloud(f *DecodedFrame, ri int) (*flow.PointCloud, error) {
	if ri != FirstReturn && ri != SecondReturn {
		return nil, fmt.Errorf("decode: return index %d, want %d or %d", ri, FirstReturn, SecondReturn)
	}
	for i := 1; i < len(f.Sensors); i++ {
		if f.Sensors[i].SensorID <= f.Sensors[i-1].SensorID {
			return nil, fmt.Errorf("decode: sensors not in ascending id order at %d", i)
		}
	}

	cloud := &flow.PointCloud{Pose: f.Pose}
	for _, s := range f.Sensors {
		set := s.Returns[ri]
		if len(set.Points)%flow.PointCols != 0 {
			return nil, fmt.Errorf("decode: sensor %d return %d: ragged points (%d values)",
				s.SensorID, ri, len(set.Points))
		}
		if set.Len()*flow.FlowCols != len(set.Flows) {
			return nil, fmt.Errorf("decode: sensor %d return %d: %d points vs %d flows",
				s.SensorID, ri, set.Len(), len(set.Flows)/flow.FlowCols)
		}
		cloud.Points = append(cloud.Points, set.Points...)
		cloud.Flows = append(cloud.Flows, set.Flows...)
	}
	return cloud, nil
}
