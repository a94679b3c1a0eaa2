// Package lookup owns the persisted index linking each preprocessed frame
// to its temporal predecessor. Preprocessing writes one fragment per source
// file; Merge concatenates fragments into the single table the data loader
// consumes.
package lookup

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/sceneflow/internal/fsutil"
)

// ErrFragmentNotFound is returned by Merge when an expected fragment file
// is absent. Detect with errors.Is.
var ErrFragmentNotFound = errors.New("lookup fragment not found")

// FrameRef locates one cached frame: the on-disk frame file plus the
// point-to-global rigid transform of that frame (row-major 4x4).
type FrameRef struct {
	Path string
	Pose [16]float64
}

// Entry links a frame to its immediate predecessor in the same source file.
// The data loader pairs the two frames for flow training.
type Entry struct {
	Current  FrameRef
	Previous FrameRef
}

// FragmentName derives the deterministic fragment filename for a source
// file. Uniqueness across concurrently processed source files falls out of
// source filenames being unique.
func FragmentName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".fragment"
}

// serialize gob-encodes and gzips a list of entries.
func serialize(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(entries); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deserialize(blob []byte) ([]Entry, error) {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var entries []Entry
	if err := gob.NewDecoder(gz).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// WriteFragment persists a fragment's entries to the given path.
func WriteFragment(fs fsutil.FileSystem, path string, entries []Entry) error {
	blob, err := serialize(entries)
	if err != nil {
		return fmt.Errorf("lookup: encode fragment: %v", err)
	}
	if err := fs.WriteFile(path, blob, os.FileMode(0o644)); err != nil {
		return fmt.Errorf("lookup: write fragment %s: %v", path, err)
	}
	return nil
}

// ReadFragment loads a fragment file. A missing file yields
// ErrFragmentNotFound.
func ReadFragment(fs fsutil.FileSystem, path string) ([]Entry, error) {
	if !fs.Exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrFragmentNotFound, path)
	}
	blob, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lookup: read fragment %s: %v", path, err)
	}
	entries, err := deserialize(blob)
	if err != nil {
		return nil, fmt.Errorf("lookup: decode fragment %s: %v", path, err)
	}
	return entries, nil
}

// Merge concatenates fragments in the given order into one table file.
// Every fragment is read and validated before anything is written, so a
// missing fragment (ErrFragmentNotFound) never leaves a partial output
// behind.
func Merge(fs fsutil.FileSystem, fragmentPaths []string, outPath string) ([]Entry, error) {
	var merged []Entry
	for _, p := range fragmentPaths {
		entries, err := ReadFragment(fs, p)
		if err != nil {
			return nil, err
		}
		merged = append(merged, entries...)
	}

	blob, err := serialize(merged)
	if err != nil {
		return nil, fmt.Errorf("lookup: encode table: %v", err)
	}
	if err := fs.WriteFile(outPath, blob, os.FileMode(0o644)); err != nil {
		return nil, fmt.Errorf("lookup: write table %s: %v", outPath, err)
	}
	return merged, nil
}

// ReadTable loads a merged lookup table.
func ReadTable(fs fsutil.FileSystem, path string) ([]Entry, error) {
	blob, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lookup: read table %s: %v", path, err)
	}
	entries, err := deserialize(blob)
	if err != nil {
		return nil, fmt.Errorf("lookup: decode table %s: %v", path, err)
	}
	return entries, nil
}
