package store

import (
	"fmt"
	"math"
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/telemview/samplestore/errs"
)

const (
	// DefaultBlockSize is the number of samples per block when a series does
	// not specify its own. One block of float64 samples is 8MiB, large enough
	// that per-block bookkeeping is negligible at high sample rates.
	DefaultBlockSize = 1 << 20

	// MinBlockSize bounds how small a block may be configured. Smaller blocks
	// are only useful in tests.
	MinBlockSize = 2
)

// block is one fixed-size run of sample slots plus its cached aggregate.
//
// values is written by exactly one producer at a time (single-owner
// convention). min/max double as the running aggregate on the sequential
// write path and become the published aggregate once published is set.
type block struct {
	values    []float64
	min       float64
	max       float64
	published atomic.Bool
}

// publish records the block's min/max aggregate exactly once.
func (b *block) publish(minValue, maxValue float64) error {
	if !b.published.CompareAndSwap(false, true) {
		return errs.ErrBlockAlreadyPublished
	}
	b.min = minValue
	b.max = maxValue

	return nil
}

// BlockStore holds the raw samples of one series as an append-only sequence
// of fixed-size blocks, each with a cached min/max aggregate.
//
// Concurrency model:
//   - The block collection is behind an atomic pointer and grown
//     copy-on-write under a single mutex, so producers targeting
//     never-yet-created blocks can grow it concurrently while readers walk
//     it without locking.
//   - Each block is written by exactly one producer at a time. This is a
//     caller convention, not a runtime lock; violating it is a caller bug.
//   - The published sample count is the single publication point. It is
//     stored atomically after all samples below it are written and their
//     block aggregates recorded, so a reader that observes the count also
//     observes every write it covers.
type BlockStore struct {
	blockSize  int
	blockShift int
	blockMask  int

	mu     sync.Mutex // guards growth and sample-count bookkeeping only
	blocks atomic.Pointer[[]*block]
	count  atomic.Int64 // published sample count
}

// NewBlockStore creates a block store with the given samples-per-block.
//
// The block size must be a power of two no smaller than MinBlockSize, so
// sample numbers split into block index and offset with shift/mask
// arithmetic.
//
// Returns:
//   - *BlockStore: Empty store ready for writes
//   - error: errs.ErrInvalidBlockSize for a non-power-of-two or too-small size
func NewBlockStore(blockSize int) (*BlockStore, error) {
	if blockSize < MinBlockSize || blockSize&(blockSize-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidBlockSize, blockSize)
	}

	s := &BlockStore{
		blockSize:  blockSize,
		blockShift: bits.TrailingZeros(uint(blockSize)),
		blockMask:  blockSize - 1,
	}
	empty := make([]*block, 0)
	s.blocks.Store(&empty)

	return s, nil
}

// BlockSize returns the number of samples per block.
func (s *BlockStore) BlockSize() int {
	return s.blockSize
}

// BlockCount returns the number of blocks allocated so far, including blocks
// that were handed out as write slots but not yet published.
func (s *BlockStore) BlockCount() int {
	return len(s.loadBlocks())
}

// SampleCount returns the published sample count. Every index below it is
// fully written and safe to read.
func (s *BlockStore) SampleCount() int {
	return int(s.count.Load())
}

func (s *BlockStore) loadBlocks() []*block {
	return *s.blocks.Load()
}

// ensureBlock returns the block with the given index, lazily creating it and
// any missing blocks before it. Safe to call from multiple producers.
func (s *BlockStore) ensureBlock(blockIndex int) *block {
	if blocks := s.loadBlocks(); blockIndex < len(blocks) {
		return blocks[blockIndex]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := s.loadBlocks()
	if blockIndex < len(blocks) {
		return blocks[blockIndex]
	}

	grown := make([]*block, blockIndex+1)
	copy(grown, blocks)
	for i := len(blocks); i <= blockIndex; i++ {
		grown[i] = &block{
			values: make([]float64, s.blockSize),
			min:    math.Inf(1),
			max:    math.Inf(-1),
		}
	}
	s.blocks.Store(&grown)

	return grown[blockIndex]
}

// Slot returns the write slot for the block containing sampleNumber,
// creating the block (and any blocks before it) if absent.
//
// Different producers may request slots for different blocks concurrently.
// Requesting the same block from two producers at once is a caller error;
// at most one producer owns a block at a time by convention.
func (s *BlockStore) Slot(sampleNumber int) (WriteSlot, error) {
	if sampleNumber < 0 {
		return WriteSlot{}, fmt.Errorf("%w: got %d", errs.ErrInvalidSampleNumber, sampleNumber)
	}

	blockIndex := sampleNumber >> s.blockShift

	return WriteSlot{
		store:      s,
		blk:        s.ensureBlock(blockIndex),
		blockIndex: blockIndex,
	}, nil
}

// SetValue stores one sample on the sequential single-producer path.
//
// It tracks the running min/max of the block being filled and automatically
// publishes the block's aggregate when its last slot is written, so callers
// appending one sample at a time never call PublishBlockAggregate themselves.
//
// Samples must be appended in strictly increasing, contiguous sample-number
// order for the running aggregate to be correct. Producers filling whole
// blocks in parallel use Slot instead.
func (s *BlockStore) SetValue(sampleNumber int, value float64) error {
	if sampleNumber < 0 {
		return fmt.Errorf("%w: got %d", errs.ErrInvalidSampleNumber, sampleNumber)
	}

	blk := s.ensureBlock(sampleNumber >> s.blockShift)
	offset := sampleNumber & s.blockMask

	blk.values[offset] = value
	if value < blk.min {
		blk.min = value
	}
	if value > blk.max {
		blk.max = value
	}

	if offset == s.blockMask {
		if err := blk.publish(blk.min, blk.max); err != nil {
			return fmt.Errorf("%w: block %d", err, sampleNumber>>s.blockShift)
		}
	}

	return nil
}

// PublishBlockAggregate records the cached min/max for a completed block.
//
// It must be called after every sample in the block has been written and
// before the sample count is advanced past the block, and only once per
// block.
//
// Returns:
//   - error: errs.ErrBlockNotAllocated for a block never handed out,
//     errs.ErrBlockAlreadyPublished on double publication
func (s *BlockStore) PublishBlockAggregate(blockIndex int, minValue, maxValue float64) error {
	blocks := s.loadBlocks()
	if blockIndex < 0 || blockIndex >= len(blocks) {
		return fmt.Errorf("%w: block %d, allocated %d", errs.ErrBlockNotAllocated, blockIndex, len(blocks))
	}

	if err := blocks[blockIndex].publish(minValue, maxValue); err != nil {
		return fmt.Errorf("%w: block %d", err, blockIndex)
	}

	return nil
}

// SetSampleCount advances the published sample count to n.
//
// This is the single publication point: it must be called only after every
// sample below n is written and every complete block below n has its
// aggregate published. The count is monotonically non-decreasing and can
// never exceed the allocated block capacity.
func (s *BlockStore) SetSampleCount(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := int(s.count.Load())
	if n < current {
		return fmt.Errorf("%w: %d -> %d", errs.ErrSampleCountRegression, current, n)
	}

	capacity := len(s.loadBlocks()) * s.blockSize
	if n > capacity {
		return fmt.Errorf("%w: count %d, allocated capacity %d", errs.ErrInvalidSampleCount, n, capacity)
	}

	s.count.Store(int64(n))

	return nil
}

// checkRange validates a closed range of published sample numbers.
func (s *BlockStore) checkRange(first, last int) error {
	if first < 0 || last < first {
		return fmt.Errorf("%w: [%d, %d]", errs.ErrInvalidRange, first, last)
	}

	count := int(s.count.Load())
	if last >= count {
		return fmt.Errorf("%w: last sample %d, published count %d", errs.ErrSampleOutOfRange, last, count)
	}

	return nil
}

// Read returns the raw value at a published sample number.
//
// Reading at or beyond the published sample count is a contract violation
// and returns errs.ErrSampleOutOfRange; it is never clamped, since that
// would expose a possibly-unpublished value.
func (s *BlockStore) Read(sampleNumber int) (float64, error) {
	if err := s.checkRange(sampleNumber, sampleNumber); err != nil {
		return 0, err
	}

	blocks := s.loadBlocks()

	return blocks[sampleNumber>>s.blockShift].values[sampleNumber&s.blockMask], nil
}

// RangeAggregate returns the minimum and maximum over the closed range
// [first, last] of published samples.
//
// Blocks fully contained in the range contribute their cached aggregate in
// O(1); only the at most two partially covered boundary blocks are scanned.
// The result is always identical to a naive scan of every sample in the
// range: an unpublished fully-covered block (possible only if a producer
// skipped PublishBlockAggregate) falls back to scanning.
func (s *BlockStore) RangeAggregate(first, last int) (minValue float64, maxValue float64, err error) {
	if err := s.checkRange(first, last); err != nil {
		return 0, 0, err
	}

	blocks := s.loadBlocks()
	minValue = math.Inf(1)
	maxValue = math.Inf(-1)

	firstBlock := first >> s.blockShift
	lastBlock := last >> s.blockShift
	for blockIndex := firstBlock; blockIndex <= lastBlock; blockIndex++ {
		blk := blocks[blockIndex]
		blockFirst := blockIndex << s.blockShift
		blockLast := blockFirst + s.blockMask

		if first <= blockFirst && last >= blockLast && blk.published.Load() {
			if blk.min < minValue {
				minValue = blk.min
			}
			if blk.max > maxValue {
				maxValue = blk.max
			}

			continue
		}

		lo := max(first, blockFirst)
		hi := min(last, blockLast)
		for i := lo; i <= hi; i++ {
			v := blk.values[i&s.blockMask]
			if v < minValue {
				minValue = v
			}
			if v > maxValue {
				maxValue = v
			}
		}
	}

	return minValue, maxValue, nil
}

// CopyRange materializes the closed range [first, last] of published samples
// as one contiguous buffer of length last-first+1.
func (s *BlockStore) CopyRange(first, last int) ([]float64, error) {
	if err := s.checkRange(first, last); err != nil {
		return nil, err
	}

	dst := make([]float64, last-first+1)
	s.copyRange(dst, first, last)

	return dst, nil
}

// CopyRangeInto copies the closed range [first, last] of published samples
// into a caller-provided buffer, which must have length exactly
// last-first+1. It allows render loops to reuse one buffer across frames.
func (s *BlockStore) CopyRangeInto(dst []float64, first, last int) error {
	if err := s.checkRange(first, last); err != nil {
		return err
	}

	if len(dst) != last-first+1 {
		return fmt.Errorf("%w: buffer %d, range %d", errs.ErrBufferSizeMismatch, len(dst), last-first+1)
	}

	s.copyRange(dst, first, last)

	return nil
}

// copyRange copies samples block by block. Range must be validated.
func (s *BlockStore) copyRange(dst []float64, first, last int) {
	blocks := s.loadBlocks()

	written := 0
	for i := first; i <= last; {
		blk := blocks[i>>s.blockShift]
		offset := i & s.blockMask
		n := min(s.blockSize-offset, last-i+1)
		copy(dst[written:written+n], blk.values[offset:offset+n])
		written += n
		i += n
	}
}
