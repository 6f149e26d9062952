// Package pool provides pooled buffers for snapshot encoding and bulk sample
// copies, keeping the per-snapshot allocation count flat regardless of how
// many series a session holds.
package pool

import "sync"

// Default sizes for pooled snapshot buffers.
const (
	// SnapshotBufferDefaultSize is the initial capacity of a pooled buffer.
	// Per-series payloads (metadata plus raw samples) commonly land in the
	// tens of kilobytes for short sessions.
	SnapshotBufferDefaultSize = 1024 * 64 // 64KiB

	// SnapshotBufferMaxThreshold is the largest buffer returned to the pool.
	// Buffers that grew past this (very long sessions) are dropped so the
	// pool does not pin large allocations after a one-off spike.
	SnapshotBufferMaxThreshold = 1024 * 1024 * 8 // 8MiB
)

// ByteBuffer is a reusable byte slice wrapper handed out by GetSnapshotBuffer.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified initial capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, retaining the allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

var snapshotBufferPool = sync.Pool{
	New: func() any {
		return NewByteBuffer(SnapshotBufferDefaultSize)
	},
}

// GetSnapshotBuffer retrieves an empty ByteBuffer from the pool.
// The caller must return it with PutSnapshotBuffer when finished.
func GetSnapshotBuffer() *ByteBuffer {
	bb, _ := snapshotBufferPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// PutSnapshotBuffer returns a ByteBuffer to the pool.
// Oversized buffers are dropped instead of pooled.
func PutSnapshotBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > SnapshotBufferMaxThreshold {
		return
	}
	snapshotBufferPool.Put(bb)
}
