package encryption

import "sync"

const defaultBufferSize = 32 * 1024

// chunkPool holds scratch buffers for streamingWriter so the caller's slices are never
// transformed in place.
//
//nolint:gochecknoglobals
var chunkPool = sync.Pool{
	New: func() any {
		buf := make([]byte, defaultBufferSize)

		return &buf
	},
}

func getChunk() *[]byte {
	return chunkPool.Get().(*[]byte) //nolint:forcetypeassert // only *[]byte is stored
}

func putChunk(buf *[]byte) {
	chunkPool.Put(buf)
}
