// Package preprocess turns raw sensor-log files into the on-disk training
// cache: one frame file per decoded frame plus a lookup-table fragment per
// source file linking consecutive frames.
//
// Source files are independent, so the pipeline parallelises at file
// granularity with no shared mutable state; fragment filenames derive
// deterministically from source filenames, and fragments are merged only
// after every file has finished.
package preprocess

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/banshee-data/sceneflow/internal/flow/decode"
	"github.com/banshee-data/sceneflow/internal/flow/frameio"
	"github.com/banshee-data/sceneflow/internal/flow/lookup"
	"github.com/banshee-data/sceneflow/internal/fsutil"
	"github.com/banshee-data/sceneflow/internal/monitoring"
)

// FrameSource iterates the compressed frame blobs of one source file in
// capture order. Next returns io.EOF after the final frame.
type FrameSource interface {
	Next(ctx context.Context) ([]byte, error)
}

// Source is one raw log file queued for preprocessing.
type Source struct {
	Path   string
	Frames FrameSource
}

// Options configures a preprocessing run.
type Options struct {
	OutDir string
	// LimitFrames caps the frames taken per source file; 0 means all.
	LimitFrames int
	// ReturnIndex selects the laser return to cache (decode.FirstReturn
	// unless the run targets second-return experiments).
	ReturnIndex int
	FS          fsutil.FileSystem
}

// FrameInfo describes one cached frame file.
type FrameInfo struct {
	Path       string
	Index      int
	PointCount int
}

// Result summarises one processed source file.
type Result struct {
	SourcePath   string
	FragmentPath string
	FrameCount   int
	PointCount   int
	Frames       []FrameInfo
	Entries      []lookup.Entry
}

// ProcessSource decodes, extracts, and caches every frame of one source
// file, writing its lookup fragment last. The first frame of a file has no
// predecessor and therefore produces no lookup entry.
func ProcessSource(ctx context.Context, dec decode.FrameDecoder, src Source, opts Options) (*Result, error) {
	if opts.FS == nil {
		opts.FS = fsutil.OSFileSystem{}
	}
	if err := opts.FS.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("preprocess: create %s: %v", opts.OutDir, err)
	}

	base := filepath.Base(src.Path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	res := &Result{
		SourcePath:   src.Path,
		FragmentPath: filepath.Join(opts.OutDir, lookup.FragmentName(src.Path)),
	}
	var prev *lookup.FrameRef

	for idx := 0; opts.LimitFrames == 0 || idx < opts.LimitFrames; idx++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blob, err := src.Frames.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("preprocess: %s frame %d: read: %v", src.Path, idx, err)
		}

		frame, err := dec.DecodeFrame(ctx, blob)
		if err != nil {
			return nil, fmt.Errorf("preprocess: %s frame %d: decode: %v", src.Path, idx, err)
		}
		cloud, err := decode.AssembleCloud(frame, opts.ReturnIndex)
		if err != nil {
			return nil, fmt.Errorf("preprocess: %s frame %d: %v", src.Path, idx, err)
		}

		framePath := filepath.Join(opts.OutDir, fmt.Sprintf("%s_%06d.sff", base, idx))
		if err := frameio.WriteFrame(opts.FS, framePath, cloud); err != nil {
			return nil, fmt.Errorf("preprocess: %s frame %d: %v", src.Path, idx, err)
		}

		cur := lookup.FrameRef{Path: framePath, Pose: cloud.Pose}
		if prev != nil {
			res.Entries = append(res.Entries, lookup.Entry{Current: cur, Previous: *prev})
		}
		prev = &cur
		res.Frames = append(res.Frames, FrameInfo{Path: framePath, Index: idx, PointCount: cloud.Len()})
		res.FrameCount++
		res.PointCount += cloud.Len()
	}

	if err := lookup.WriteFragment(opts.FS, res.FragmentPath, res.Entries); err != nil {
		return nil, err
	}
	monitoring.Logf("preprocessed %s: %d frames, %d points, %d lookup entries",
		src.Path, res.FrameCount, res.PointCount, len(res.Entries))
	return res, nil
}

// ProcessAll runs ProcessSource over every source with the given worker
// count and merges the fragments into tablePath, preserving source order.
// The per-file results come back in source order as well. Any file error
// aborts the merge.
func ProcessAll(ctx context.Context, dec decode.FrameDecoder, sources []Source, opts Options, workers int, tablePath string) ([]*Result, []lookup.Entry, error) {
	if workers < 1 {
		workers = 1
	}
	if opts.FS == nil {
		opts.FS = fsutil.OSFileSystem{}
	}

	results := make([]*Result, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := range sources {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = ProcessSource(ctx, dec, sources[i], opts)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, nil, fmt.Errorf("preprocess: source %s: %w", sources[i].Path, err)
		}
	}

	fragments := make([]string, len(results))
	for i, r := range results {
		fragments[i] = r.FragmentPath
	}
	table, err := lookup.Merge(opts.FS, fragments, tablePath)
	if err != nil {
		return nil, nil, err
	}
	return results, table, nil
}
