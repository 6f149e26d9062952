package compress

// NoOpCompressor bypasses compression entirely.
//
// Useful when a snapshot is about to be written to media that compresses on
// its own, or for debugging a snapshot payload byte-for-byte.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor that bypasses data.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input slice as-is, without copying.
//
// The returned slice shares the input's underlying memory; callers must not
// modify the input afterwards if they plan to use the returned slice.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is, without copying.
//
// The returned slice shares the input's underlying memory; callers must not
// modify the input afterwards if they plan to use the returned slice.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
