package encryption

import (
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
)

var errWriterClosed = errors.New("write to closed member writer")

// streamingWriter XORs data with a keystream on its way to w. A nil stream copies
// data through unchanged. Input slices are never modified.
type streamingWriter struct {
	w      io.Writer
	stream cipher.Stream
	closed bool
}

// Write implements io.Writer, transforming data in pooled chunks.
func (sw *streamingWriter) Write(data []byte) (int, error) {
	if sw.closed {
		return 0, errWriterClosed
	}

	if sw.stream == nil {
		return sw.w.Write(data)
	}

	chunk := getChunk()
	defer putChunk(chunk)

	buf := *chunk
	written := 0

	for len(data) > 0 {
		n := min(len(data), len(buf))

		sw.stream.XORKeyStream(buf[:n], data[:n])

		if _, err := sw.w.Write(buf[:n]); err != nil {
			return written, fmt.Errorf("writing encoded chunk: %w", err)
		}

		written += n
		data = data[n:]
	}

	return written, nil
}

// Close implements io.Closer. Nothing is buffered, so it only rejects later writes.
func (sw *streamingWriter) Close() error {
	sw.closed = true

	return nil
}
