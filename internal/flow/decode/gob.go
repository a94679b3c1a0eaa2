package decode

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
)

// GobDecoder decodes the interchange blobs emitted by the out-of-process
// sensor-log decoder: one gob-encoded DecodedFrame per frame. The heavy
// proprietary decoding happens upstream; this side only deserialises and
// normalises sensor order.
type GobDecoder struct{}

// DecodeFrame parses one interchange blob.
func (GobDecoder) DecodeFrame(_ context.Context, blob []byte) (*DecodedFrame, error) {
	var f DecodedFrame
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: parse frame blob: %v", err)
	}
	SortSensors(&f)
	return &f, nil
}

// EncodeFrameBlob serialises a DecodedFrame to the interchange format.
// Test fixtures and the decoder bridge use it; the training pipeline only
// reads.
func EncodeFrameBlob(f *DecodedFrame) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("decode: encode frame blob: %v", err)
	}
	return buf.Bytes(), nil
}
