package store

// WriteSlot grants exclusive write access to one block's backing storage.
//
// A producer acquires the slot for a block, writes every sample in it
// (directly through Values or via Set), computes the block's min/max, and
// publishes the aggregate — all before the series' sample count is advanced
// past the block. The single-writer convention is not enforced by a lock:
// exactly one producer may hold the slot for a given block at a time, and
// violating that is a caller bug with undefined results.
//
// The zero value is not a valid slot; obtain slots from BlockStore.Slot or
// Series.AcquireWriteSlot.
type WriteSlot struct {
	store      *BlockStore
	blk        *block
	blockIndex int
}

// BlockIndex returns the index of the block this slot covers.
func (s WriteSlot) BlockIndex() int {
	return s.blockIndex
}

// FirstSampleNumber returns the sample number of the block's first slot.
func (s WriteSlot) FirstSampleNumber() int {
	return s.blockIndex << s.store.blockShift
}

// LastSampleNumber returns the sample number of the block's last slot.
func (s WriteSlot) LastSampleNumber() int {
	return s.FirstSampleNumber() + s.store.blockMask
}

// Values returns the block's backing storage for direct writes.
//
// The slice has length BlockSize. Index i holds sample number
// FirstSampleNumber()+i. Writing through this slice avoids per-sample call
// overhead when a decoder populates a whole block.
func (s WriteSlot) Values() []float64 {
	return s.blk.values
}

// Set stores a sample by its global sample number.
//
// The sample number must fall in this slot's block; the slot never grows.
// Writes outside the block are a caller contract violation.
func (s WriteSlot) Set(sampleNumber int, value float64) {
	s.blk.values[sampleNumber&s.store.blockMask] = value
}

// Publish records the block's min/max aggregate exactly once.
//
// It must be called after every sample in the block has been written and
// before the series' sample count is advanced past the block. A second call
// returns errs.ErrBlockAlreadyPublished, which indicates a producer
// coordination bug.
func (s WriteSlot) Publish(minValue, maxValue float64) error {
	return s.store.PublishBlockAggregate(s.blockIndex, minValue, maxValue)
}
