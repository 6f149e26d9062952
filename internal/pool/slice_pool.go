package pool

import "sync"

// float64SlicePool reuses sample buffers across snapshot decodes and bulk
// range copies.
var float64SlicePool = sync.Pool{
	New: func() any { return &[]float64{} },
}

// GetFloat64Slice retrieves and resizes a float64 slice from the pool.
//
// The returned slice has length exactly size; a new slice is allocated when
// the pooled one has insufficient capacity. The caller must call the returned
// cleanup function (typically with defer) to return the slice to the pool.
//
// Example:
//
//	values, cleanup := pool.GetFloat64Slice(blockSize)
//	defer cleanup()
//	// Use values slice...
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { float64SlicePool.Put(ptr) }
}
