package preprocess

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
)

// maxFrameBlob bounds a single frame blob; a larger length prefix means a
// corrupt or misaligned stream, not a real frame.
const maxFrameBlob = 1 << 30

// StreamSource reads a source file in the frame-stream container format:
// each frame is a little-endian uint32 length prefix followed by that many
// blob bytes. It implements FrameSource.
type StreamSource struct {
	r io.Reader
}

// NewStreamSource wraps a reader positioned at the start of a frame
// stream.
func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{r: r}
}

// Next returns the next frame blob, or io.EOF at end of stream. A stream
// that ends mid-frame yields io.ErrUnexpectedEOF.
func (s *StreamSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(s.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("frame stream: read length: %w", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n == 0 || n > maxFrameBlob {
		return nil, fmt.Errorf("frame stream: implausible frame length %d", n)
	}

	blob := make([]byte, n)
	if _, err := io.ReadFull(s.r, blob); err != nil {
		return nil, fmt.Errorf("frame stream: read %d-byte frame: %w", n, err)
	}
	return blob, nil
}

// WriteStreamFrame appends one length-prefixed blob to a frame stream.
// The decoder bridge and test fixtures use it to produce source files.
func WriteStreamFrame(w io.Writer, blob []byte) error {
	if len(blob) == 0 || len(blob) > maxFrameBlob {
		return fmt.Errorf("frame stream: implausible frame length %d", len(blob))
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(blob)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(blob)
	return err
}
