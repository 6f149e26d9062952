// Package errs defines the sentinel errors returned by the samplestore packages.
//
// Callers can match errors with errors.Is:
//
//	_, err := series.Sample(index)
//	if errors.Is(err, errs.ErrSampleOutOfRange) {
//	    // index is at or beyond the published sample count
//	}
//
// Errors are usually wrapped with additional context at the call site, so the
// message seen by the caller includes the offending index or block number.
package errs

import "errors"

// Block store errors.
var (
	// ErrInvalidBlockSize is returned when a block store is created with a
	// block size that is not a positive power of two.
	ErrInvalidBlockSize = errors.New("block size must be a positive power of two")

	// ErrSampleOutOfRange is returned when a read or aggregate request
	// references a sample at or beyond the published sample count.
	ErrSampleOutOfRange = errors.New("sample index out of published range")

	// ErrInvalidRange is returned when a range request is malformed
	// (negative index, or first index greater than last index).
	ErrInvalidRange = errors.New("invalid sample range")

	// ErrInvalidSampleNumber is returned when a write targets a negative
	// sample number.
	ErrInvalidSampleNumber = errors.New("invalid sample number")

	// ErrBlockAlreadyPublished is returned when a block's min/max aggregate
	// is published more than once. This indicates a producer coordination bug.
	ErrBlockAlreadyPublished = errors.New("block aggregate already published")

	// ErrBlockNotAllocated is returned when an aggregate is published for a
	// block that was never handed out as a write slot.
	ErrBlockNotAllocated = errors.New("block not allocated")

	// ErrSampleCountRegression is returned when the published sample count
	// is moved backwards. The count is monotonically non-decreasing.
	ErrSampleCountRegression = errors.New("published sample count cannot decrease")

	// ErrInvalidSampleCount is returned when the published sample count is
	// advanced beyond the allocated block capacity.
	ErrInvalidSampleCount = errors.New("published sample count exceeds allocated storage")

	// ErrBufferSizeMismatch is returned when a caller-provided buffer does
	// not match the requested range length.
	ErrBufferSizeMismatch = errors.New("buffer length does not match range length")
)

// Series errors.
var (
	// ErrInvalidConversionFactor is returned when conversion factor A is zero.
	ErrInvalidConversionFactor = errors.New("conversion factor A must be non-zero")

	// ErrInvalidBitRange is returned when a bitfield is attached with a
	// negative low bit or a low bit greater than the high bit.
	ErrInvalidBitRange = errors.New("invalid bit range")

	// ErrBitRangeTooWide is returned when a bitfield spans more bits than the
	// supported maximum, which would make the decoded state table unbounded.
	ErrBitRangeTooWide = errors.New("bit range too wide")
)

// Snapshot errors.
var (
	// ErrInvalidSnapshotHeader is returned when snapshot data is shorter than
	// the fixed header, or the header fields are inconsistent.
	ErrInvalidSnapshotHeader = errors.New("invalid snapshot header")

	// ErrInvalidMagicNumber is returned when snapshot data does not start
	// with the snapshot magic number.
	ErrInvalidMagicNumber = errors.New("invalid magic number")

	// ErrInvalidCompression is returned when a snapshot declares an unknown
	// compression type.
	ErrInvalidCompression = errors.New("invalid compression type")

	// ErrChecksumMismatch is returned when the snapshot payload checksum does
	// not match the checksum recorded in the header.
	ErrChecksumMismatch = errors.New("snapshot payload checksum mismatch")

	// ErrInvalidSnapshotIndex is returned when a snapshot index entry points
	// outside the decoded payload.
	ErrInvalidSnapshotIndex = errors.New("invalid snapshot index entry")

	// ErrInvalidSnapshotPayload is returned when a per-series payload is
	// truncated or malformed.
	ErrInvalidSnapshotPayload = errors.New("invalid snapshot payload")
)
