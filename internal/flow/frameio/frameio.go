// Package frameio reads and writes the on-disk point-cloud frame files
// produced by preprocessing.
//
// A frame file is a little-endian binary blob:
//
//	magic "SFF1"  (4 bytes)
//	point count N (uint32)
//	pose          (16 float64, row-major 4x4 point-to-global transform)
//	checksum      (uint64 xxhash64 of the uncompressed record bytes)
//	records       (zstd-compressed N*9 float32 rows)
//
// Record column layout: x, y, z, intensity, elongation, vx, vy, vz, class.
// The checksum is verified on read so truncated or bit-rotted cache files
// surface as errors instead of silently corrupt training data.
package frameio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/banshee-data/sceneflow/internal/flow"
	"github.com/banshee-data/sceneflow/internal/fsutil"
)

const (
	magic      = "SFF1"
	headerSize = 4 + 4 + 16*8 + 8

	// RecordCols is the column count of one on-disk point record.
	RecordCols = flow.PointCols + flow.FlowCols
)

// Encode serialises a cloud to the frame-file byte format.
func Encode(cloud *flow.PointCloud) ([]byte, error) {
	n := cloud.Len()
	if len(cloud.Flows)/flow.FlowCols != n {
		return nil, fmt.Errorf("frameio: %d points vs %d flows", n, len(cloud.Flows)/flow.FlowCols)
	}

	records := make([]byte, n*RecordCols*4)
	for i := 0; i < n; i++ {
		off := i * RecordCols * 4
		for j, v := range cloud.Point(i) {
			binary.LittleEndian.PutUint32(records[off+j*4:], math.Float32bits(v))
		}
		off += flow.PointCols * 4
		for j, v := range cloud.Flow(i) {
			binary.LittleEndian.PutUint32(records[off+j*4:], math.Float32bits(v))
		}
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("frameio: init zstd: %v", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(records, make([]byte, 0, len(records)/4))

	buf := make([]byte, headerSize, headerSize+len(compressed))
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(n))
	for i, v := range cloud.Pose {
		binary.LittleEndian.PutUint64(buf[8+i*8:], math.Float64bits(v))
	}
	binary.LittleEndian.PutUint64(buf[8+16*8:], xxhash.Sum64(records))
	return append(buf, compressed...), nil
}

// Decode parses a frame-file blob back into a cloud, verifying the magic,
// declared point count, and content checksum.
func Decode(data []byte) (*flow.PointCloud, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("frameio: blob too short: %d bytes", len(data))
	}
	if string(data[:4]) != magic {
		return nil, fmt.Errorf("frameio: bad magic %q", data[:4])
	}
	n := int(binary.LittleEndian.Uint32(data[4:]))

	cloud := &flow.PointCloud{
		Points: make([]float32, 0, n*flow.PointCols),
		Flows:  make([]float32, 0, n*flow.FlowCols),
	}
	for i := range cloud.Pose {
		cloud.Pose[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[8+i*8:]))
	}
	wantSum := binary.LittleEndian.Uint64(data[8+16*8:])

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("frameio: init zstd: %v", err)
	}
	defer dec.Close()
	records, err := dec.DecodeAll(data[headerSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("frameio: decompress records: %v", err)
	}
	if len(records) != n*RecordCols*4 {
		return nil, fmt.Errorf("frameio: %d record bytes for %d declared points", len(records), n)
	}
	if got := xxhash.Sum64(records); got != wantSum {
		return nil, fmt.Errorf("frameio: checksum mismatch: %x != %x", got, wantSum)
	}

	for i := 0; i < n; i++ {
		off := i * RecordCols * 4
		for j := 0; j < flow.PointCols; j++ {
			cloud.Points = append(cloud.Points,
				math.Float32frombits(binary.LittleEndian.Uint32(records[off+j*4:])))
		}
		off += flow.PointCols * 4
		for j := 0; j < flow.FlowCols; j++ {
			cloud.Flows = append(cloud.Flows,
				math.Float32frombits(binary.LittleEndian.Uint32(records[off+j*4:])))
		}
	}
	return cloud, nil
}

// WriteFrame encodes and writes a frame file.
func WriteFrame(fs fsutil.FileSystem, path string, cloud *flow.PointCloud) error {
	data, err := Encode(cloud)
	if err != nil {
		return err
	}
	if err := fs.WriteFile(path, data, os.FileMode(0o644)); err != nil {
		return fmt.Errorf("frameio: write %s: %v", path, err)
	}
	return nil
}

// ReadFrame reads and decodes a frame file.
func ReadFrame(fs fsutil.FileSystem, path string) (*flow.PointCloud, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("frameio: read %s: %v", path, err)
	}
	cloud, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("frameio: %s: %v", path, err)
	}
	return cloud, nil
}
