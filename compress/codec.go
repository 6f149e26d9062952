// Package compress provides the compression codecs used by session snapshots.
//
// Snapshot payloads are raw float64 sample runs plus small metadata records.
// Raw telemetry samples compress well with fast byte-oriented codecs, so the
// package offers Zstd (best ratio), S2 and LZ4 (fastest), and a no-op codec
// for callers that want the payload verbatim.
package compress

import (
	"fmt"

	"github.com/telemview/samplestore/format"
)

// Compressor compresses a complete snapshot payload in one call.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// The returned slice is newly allocated and owned by the caller; the
	// input slice is not modified. Implementations may reuse internal
	// buffers across calls.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload previously produced by the matching
// Compressor.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Returns an error if the data is corrupted or was produced by an
	// incompatible algorithm. The returned slice is newly allocated and
	// owned by the caller; the input slice is not modified.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
//
// Snapshot encoding and decoding always use the same algorithm, identified by
// the compression byte in the snapshot header, so a single Codec value covers
// both directions.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: errs-style error for an unknown compression type
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
