package flowdb

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/banshee-data/sceneflow/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

func openTestDB(t *testing.T) *FlowDB {
	t.Helper()
	db, err := NewFlowDB(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("NewFlowDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunAndFrames(t *testing.T) {
	db := openTestDB(t)
	runID := uuid.NewString()

	if _, err := db.StartRun(runID, "/cache", "unit test", 2); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := db.RecordFrame(runID, "seg-a.record", i, filepath.Join("/cache", "a", "f"), 100+i); err != nil {
			t.Fatalf("RecordFrame: %v", err)
		}
	}
	if err := db.RecordFrame(runID, "seg-b.record", 0, "/cache/b/f0", 50); err != nil {
		t.Fatalf("RecordFrame: %v", err)
	}

	n, err := db.RunFrameCount(runID)
	if err != nil {
		t.Fatalf("RunFrameCount: %v", err)
	}
	if n != 4 {
		t.Errorf("frame count = %d, want 4", n)
	}

	paths, err := db.FramePaths(runID, "seg-a.record")
	if err != nil {
		t.Fatalf("FramePaths: %v", err)
	}
	if len(paths) != 3 {
		t.Errorf("paths = %d, want 3", len(paths))
	}
}

func TestRecordFrame_DuplicateIndexRejected(t *testing.T) {
	db := openTestDB(t)
	runID := uuid.NewString()
	if _, err := db.StartRun(runID, "/cache", "", 1); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	if err := db.RecordFrame(runID, "s.record", 0, "/cache/f0", 1); err != nil {
		t.Fatalf("RecordFrame: %v", err)
	}
	if err := db.RecordFrame(runID, "s.record", 0, "/cache/f0-again", 1); err == nil {
		t.Error("duplicate (run, source, index) accepted")
	}
}

func TestRunFrameCount_EmptyRun(t *testing.T) {
	db := openTestDB(t)
	n, err := db.RunFrameCount("no-such-run")
	if err != nil {
		t.Fatalf("RunFrameCount: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}
