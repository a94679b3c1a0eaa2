package decode

import (
	"testing"

	"github.com/banshee-data/sceneflow/internal/flow"
)

func pointSet(n int, fill float32) PointSet {
	s := PointSet{
		Points: make([]float32, n*flow.PointCols),
		Flows:  make([]float32, n*flow.FlowCols),
	}
	for i := range s.Points {
		s.Points[i] = fill
	}
	return s
}

func TestAssembleCloud_ConcatenatesInSensorOrder(t *testing.T) {
	f := &DecodedFrame{
		Sensors: []SensorReturns{
			{SensorID: 1, Returns: [2]PointSet{pointSet(2, 1), {}}},
			{SensorID: 3, Returns: [2]PointSet{pointSet(1, 3), {}}},
			{SensorID: 4, Returns: [2]PointSet{pointSet(3, 4), {}}},
		},
	}
	f.Pose[0] = 1

	cloud, err := AssembleCloud(f, FirstReturn)
	if err != nil {
		t.Fatalf("AssembleCloud: %v", err)
	}

	if cloud.Len() != 6 {
		t.Fatalf("Len = %d, want 6", cloud.Len())
	}
	// First two rows from sensor 1, next from sensor 3, last three from 4.
	if cloud.Point(0)[0] != 1 || cloud.Point(2)[0] != 3 || cloud.Point(3)[0] != 4 {
		t.Errorf("concatenation order wrong: %v", cloud.Points)
	}
	if cloud.Pose[0] != 1 {
		t.Errorf("pose not carried over")
	}
}

func TestAssembleCloud_UnsortedSensorsRejected(t *testing.T) {
	f := &DecodedFrame{
		Sensors: []SensorReturns{
			{SensorID: 2, Returns: [2]PointSet{pointSet(1, 1), {}}},
			{SensorID: 1, Returns: [2]PointSet{pointSet(1, 1), {}}},
		},
	}
	if _, err := AssembleCloud(f, FirstReturn); err == nil {
		t.Fatal("expected error for unsorted sensors")
	}

	SortSensors(f)
	if _, err := AssembleCloud(f, FirstReturn); err != nil {
		t.Fatalf("after SortSensors: %v", err)
	}
}

func TestAssembleCloud_MissingFlowsRejected(t *testing.T) {
	s := pointSet(2, 1)
	s.Flows = s.Flows[:flow.FlowCols] // one flow row for two points
	f := &DecodedFrame{Sensors: []SensorReturns{{SensorID: 1, Returns: [2]PointSet{s, {}}}}}

	if _, err := AssembleCloud(f, FirstReturn); err == nil {
		t.Fatal("expected error for point/flow mismatch")
	}
}

func TestAssembleCloud_SecondReturn(t *testing.T) {
	f := &DecodedFrame{
		Sensors: []SensorReturns{
			{SensorID: 1, Returns: [2]PointSet{pointSet(2, 1), pointSet(1, 9)}},
		},
	}
	cloud, err := AssembleCloud(f, SecondReturn)
	if err != nil {
		t.Fatalf("AssembleCloud: %v", err)
	}
	if cloud.Len() != 1 || cloud.Point(0)[0] != 9 {
		t.Errorf("second return cloud = %v", cloud.Points)
	}
}

func TestAssembleCloud_BadReturnIndex(t *testing.T) {
	if _, err := AssembleCloud(&DecodedFrame{}, 2); err == nil {
		t.Fatal("expected error for return index 2")
	}
}
