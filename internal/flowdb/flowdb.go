// Package flowdb stores the sqlite index of preprocessed frame caches.
package flowdb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/sceneflow/internal/monitoring"
)

// FlowDB wraps the dataset index database.
type FlowDB struct {
	*sql.DB
}

//go:embed schema.sql
var schemaSQL string

// NewFlowDB opens (creating if needed) the index database at path and
// applies the schema.
func NewFlowDB(path string) (*FlowDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("flowdb: apply schema: %v", err)
	}
	monitoring.Logf("initialized flow dataset index at %s", path)
	return &FlowDB{db}, nil
}

// StartRun records a new preprocessing run and returns its start time.
func (fdb *FlowDB) StartRun(runID, outDir, notes string, sourceCount int) (time.Time, error) {
	started := time.Now()
	_, err := fdb.Exec(
		`INSERT INTO preprocess_runs (run_id, started_unix_nanos, out_dir, source_count, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, started.UnixNano(), outDir, sourceCount, notes)
	if err != nil {
		return time.Time{}, fmt.Errorf("flowdb: start run: %v", err)
	}
	return started, nil
}

// RecordFrame indexes one cached frame file.
func (fdb *FlowDB) RecordFrame(runID, sourceFile string, frameIndex int, path string, pointCount int) error {
	_, err := fdb.Exec(
		`INSERT INTO frames (run_id, source_file, frame_index, path, point_count)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, sourceFile, frameIndex, path, pointCount)
	if err != nil {
		return fmt.Errorf("flowdb: record frame %s[%d]: %v", sourceFile, frameIndex, err)
	}
	return nil
}

// RunFrameCount returns the number of frames indexed for a run.
func (fdb *FlowDB) RunFrameCount(runID string) (int, error) {
	var n int
	err := fdb.QueryRow(`SELECT COUNT(*) FROM frames WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("flowdb: count frames: %v", err)
	}
	return n, nil
}

// FramePaths returns the cached frame paths of one source file in frame
// order.
func (fdb *FlowDB) FramePaths(runID, sourceFile string) ([]string, error) {
	rows, err := fdb.Query(
		`SELECT path FROM frames WHERE run_id = ? AND source_file = ? ORDER BY frame_index`,
		runID, sourceFile)
	if err != nil {
		return nil, fmt.Errorf("flowdb: list frames: %v", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
