// Command preprocess turns decoded sensor-log frame streams into the
// training cache: per-frame point-cloud files, a merged lookup table of
// consecutive-frame pairs, and an optional sqlite dataset index.
//
// Source files are the interchange streams emitted by the external log
// decoder (length-prefixed gob frames, extension .frames). Files are
// processed in parallel; each produces an independent lookup fragment and
// the fragments are merged once every file has finished.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/banshee-data/sceneflow/internal/flow/decode"
	"github.com/banshee-data/sceneflow/internal/flow/preprocess"
	"github.com/banshee-data/sceneflow/internal/flowdb"
	"github.com/banshee-data/sceneflow/internal/version"
)

var (
	sourceDir   = flag.String("source-dir", "", "Directory of decoded .frames source files (required)")
	outDir      = flag.String("out", "flow_cache", "Output directory for frame files and fragments")
	tablePath   = flag.String("table", "", "Merged lookup table path (default <out>/lookup.bin)")
	limitFrames = flag.Int("limit", 0, "Max frames per source file (0 = all)")
	workers     = flag.Int("workers", 4, "Parallel source files")
	dbFile      = flag.String("db", "", "Optional sqlite dataset index (empty = skip indexing)")
	secondRet   = flag.Bool("second-return", false, "Cache the second laser return instead of the first")
	notes       = flag.String("notes", "", "Free-form notes recorded with the index run")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *sourceDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(); err != nil {
		log.Fatalf("preprocess: %v", err)
	}
}

func run() error {
	entries, err := os.ReadDir(*sourceDir)
	if err != nil {
		return fmt.Errorf("read source dir: %v", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".frames" {
			continue
		}
		paths = append(paths, filepath.Join(*sourceDir, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return fmt.Errorf("no .frames files in %s", *sourceDir)
	}
	log.Printf("preprocessing %d source files with %d workers", len(paths), *workers)

	sources := make([]preprocess.Source, len(paths))
	files := make([]*os.File, len(paths))
	for i, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("open %s: %v", p, err)
		}
		files[i] = f
		sources[i] = preprocess.Source{Path: p, Frames: preprocess.NewStreamSource(f)}
	}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	opts := preprocess.Options{
		OutDir:      *outDir,
		LimitFrames: *limitFrames,
	}
	if *secondRet {
		opts.ReturnIndex = decode.SecondReturn
	}

	table := *tablePath
	if table == "" {
		table = filepath.Join(*outDir, "lookup.bin")
	}

	results, merged, err := preprocess.ProcessAll(context.Background(), decode.GobDecoder{}, sources, opts, *workers, table)
	if err != nil {
		return err
	}

	totalFrames, totalPoints := 0, 0
	for _, r := range results {
		totalFrames += r.FrameCount
		totalPoints += r.PointCount
	}
	log.Printf("cached %d frames (%d points), %d lookup entries -> %s",
		totalFrames, totalPoints, len(merged), table)

	if *dbFile == "" {
		return nil
	}

	db, err := flowdb.NewFlowDB(*dbFile)
	if err != nil {
		return err
	}
	defer db.Close()

	runID := uuid.NewString()
	if _, err := db.StartRun(runID, *outDir, *notes, len(sources)); err != nil {
		return err
	}
	for _, r := range results {
		for _, fi := range r.Frames {
			if err := db.RecordFrame(runID, r.SourcePath, fi.Index, fi.Path, fi.PointCount); err != nil {
				return err
			}
		}
	}
	log.Printf("indexed run %s in %s", runID, *dbFile)
	return nil
}
