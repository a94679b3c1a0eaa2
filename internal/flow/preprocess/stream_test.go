package preprocess

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/banshee-data/sceneflow/internal/flow/decode"
)

func TestStreamSource_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	blobs := [][]byte{{1, 2, 3}, {4}, {5, 6}}
	for _, b := range blobs {
		if err := WriteStreamFrame(&buf, b); err != nil {
			t.Fatalf("WriteStreamFrame: %v", err)
		}
	}

	src := NewStreamSource(&buf)
	ctx := context.Background()
	for i, want := range blobs {
		got, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d = %v, want %v", i, got, want)
		}
	}
	if _, err := src.Next(ctx); err != io.EOF {
		t.Errorf("final Next err = %v, want io.EOF", err)
	}
}

func TestStreamSource_TruncatedFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStreamFrame(&buf, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WriteStreamFrame: %v", err)
	}
	data := buf.Bytes()[:buf.Len()-2]

	src := NewStreamSource(bytes.NewReader(data))
	if _, err := src.Next(context.Background()); err == nil || err == io.EOF {
		t.Errorf("err = %v, want truncation error", err)
	}
}

func TestStreamSource_WithGobDecoder(t *testing.T) {
	// A full fixture path: DecodedFrame -> gob blob -> stream -> decode.
	frame := &decode.DecodedFrame{
		Sensors: []decode.SensorReturns{{
			SensorID: 2,
			Returns: [2]decode.PointSet{{
				Points: []float32{1, 2, 3, 4, 5},
				Flows:  []float32{0, 0, 0, 1},
			}, {}},
		}},
		TimestampMicros: 42,
	}
	blob, err := decode.EncodeFrameBlob(frame)
	if err != nil {
		t.Fatalf("EncodeFrameBlob: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteStreamFrame(&buf, blob); err != nil {
		t.Fatalf("WriteStreamFrame: %v", err)
	}

	src := NewStreamSource(&buf)
	read, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	got, err := decode.GobDecoder{}.DecodeFrame(context.Background(), read)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.TimestampMicros != 42 || len(got.Sensors) != 1 || got.Sensors[0].SensorID != 2 {
		t.Errorf("decoded frame = %+v", got)
	}
}
