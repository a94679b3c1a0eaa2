package flow

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func pillarFrame(n int, fill float32) PillarFrame {
	f := PillarFrame{
		Aug:       make([]float32, n*AugCols),
		PillarIDs: make([]int32, n),
		Flows:     make([]float32, n*FlowCols),
		N:         n,
	}
	for i := range f.Aug {
		f.Aug[i] = fill
	}
	for i := range f.PillarIDs {
		f.PillarIDs[i] = int32(i + 1)
	}
	return f
}

func TestCollate_PadsToMaxN(t *testing.T) {
	b := Collate([]PillarFrame{pillarFrame(3, 1), pillarFrame(5, 2)})

	if b.B != 2 || b.MaxN != 5 {
		t.Fatalf("B=%d MaxN=%d, want 2, 5", b.B, b.MaxN)
	}

	wantMask := []bool{
		false, false, false, true, true,
		false, false, false, false, false,
	}
	if diff := cmp.Diff(wantMask, b.Mask); diff != "" {
		t.Errorf("mask mismatch (-want +got):\n%s", diff)
	}

	// Padded slots are zero-filled points with pillar id 0.
	for i := 3; i < 5; i++ {
		for j := 0; j < AugCols; j++ {
			if b.Points[(i)*AugCols+j] != 0 {
				t.Errorf("padded point row %d col %d = %v, want 0", i, j, b.Points[i*AugCols+j])
			}
		}
		if b.PillarIDs[i] != 0 {
			t.Errorf("padded pillar id[%d] = %d, want 0", i, b.PillarIDs[i])
		}
	}
	// Valid slots keep their data.
	if b.Points[0] != 1 || b.Points[5*AugCols] != 2 {
		t.Errorf("valid point data clobbered: %v, %v", b.Points[0], b.Points[5*AugCols])
	}

	// Flows stay ragged, one slice per frame, never padded.
	if len(b.Flows) != 2 || len(b.Flows[0]) != 3*FlowCols || len(b.Flows[1]) != 5*FlowCols {
		t.Errorf("flows not kept per frame: %d frames, lens %d/%d",
			len(b.Flows), len(b.Flows[0]), len(b.Flows[1]))
	}

	if got := b.ValidCount(); got != 8 {
		t.Errorf("ValidCount = %d, want 8", got)
	}
}

func TestCollate_EmptyFrame(t *testing.T) {
	b := Collate([]PillarFrame{pillarFrame(0, 0), pillarFrame(2, 1)})
	for i := 0; i < 2; i++ {
		if !b.Mask[i] {
			t.Errorf("empty frame slot %d not masked", i)
		}
	}
	if b.ValidCount() != 2 {
		t.Errorf("ValidCount = %d, want 2", b.ValidCount())
	}
}

func TestCollate_InconsistentFramePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on inconsistent frame arrays")
		}
	}()
	f := pillarFrame(2, 1)
	f.PillarIDs = f.PillarIDs[:1]
	Collate([]PillarFrame{f})
}
