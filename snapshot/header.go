package snapshot

import (
	"fmt"

	"github.com/telemview/samplestore/endian"
	"github.com/telemview/samplestore/errs"
	"github.com/telemview/samplestore/format"
)

const (
	// HeaderSize is the fixed header size in bytes.
	HeaderSize = 32

	// IndexEntrySize is the fixed per-series index entry size in bytes.
	IndexEntrySize = 32

	// MagicSnapshotV1 is the version 1 magic number, stored in bits 4-15 of
	// the options word.
	MagicSnapshotV1 = 0xE510

	// Option word bit masks.
	endiannessMask = 0x0002 // bit 1: 0 = little endian, 1 = big endian
	magicMask      = 0xFFF0 // bits 4-15: magic number
)

// Header is the fixed-size section at the start of a session snapshot.
//
// Wire layout (32 bytes):
//
//	0-1   options word: endianness bit + magic number (always little endian)
//	2     compression type of the payload section
//	3     reserved
//	4-7   series count
//	8-11  index section offset
//	12-15 payload section offset
//	16-23 xxHash64 checksum of the (compressed) payload section
//	24-31 creation time, microseconds since the Unix epoch
type Header struct {
	Options       uint16
	Compression   format.CompressionType
	SeriesCount   uint32
	IndexOffset   uint32
	PayloadOffset uint32
	Checksum      uint64
	CreatedAt     int64
}

// NewHeader creates a header for a snapshot of the given number of series.
func NewHeader(seriesCount int, compression format.CompressionType, bigEndian bool) Header {
	var opts uint16 = MagicSnapshotV1
	if bigEndian {
		opts |= endiannessMask
	}

	return Header{
		Options:       opts,
		Compression:   compression,
		SeriesCount:   uint32(seriesCount),
		IndexOffset:   HeaderSize,
		PayloadOffset: HeaderSize + uint32(seriesCount)*IndexEntrySize,
	}
}

// IsBigEndian reports whether the snapshot body uses big-endian byte order.
func (h Header) IsBigEndian() bool {
	return h.Options&endiannessMask != 0
}

// Engine returns the byte-order engine for the snapshot body.
func (h Header) Engine() endian.EndianEngine {
	if h.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// Bytes serializes the header.
//
// The options word is always little endian so the endianness of the rest of
// the snapshot can be determined before anything else is parsed.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	b[0] = byte(h.Options)
	b[1] = byte(h.Options >> 8)
	b[2] = byte(h.Compression)
	b[3] = 0

	engine := h.Engine()
	engine.PutUint32(b[4:8], h.SeriesCount)
	engine.PutUint32(b[8:12], h.IndexOffset)
	engine.PutUint32(b[12:16], h.PayloadOffset)
	engine.PutUint64(b[16:24], h.Checksum)
	engine.PutUint64(b[24:32], uint64(h.CreatedAt))

	return b
}

// ParseHeader parses and validates a snapshot header.
//
// Returns:
//   - Header: Parsed header
//   - error: errs.ErrInvalidSnapshotHeader, errs.ErrInvalidMagicNumber, or
//     errs.ErrInvalidCompression
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: got %d bytes, need %d", errs.ErrInvalidSnapshotHeader, len(data), HeaderSize)
	}

	var h Header
	h.Options = uint16(data[0]) | uint16(data[1])<<8
	h.Compression = format.CompressionType(data[2])

	if h.Options&magicMask != MagicSnapshotV1 {
		return Header{}, fmt.Errorf("%w: 0x%04X", errs.ErrInvalidMagicNumber, h.Options&magicMask)
	}

	if !h.Compression.Valid() {
		return Header{}, fmt.Errorf("%w: 0x%02X", errs.ErrInvalidCompression, uint8(h.Compression))
	}

	engine := h.Engine()
	h.SeriesCount = engine.Uint32(data[4:8])
	h.IndexOffset = engine.Uint32(data[8:12])
	h.PayloadOffset = engine.Uint32(data[12:16])
	h.Checksum = engine.Uint64(data[16:24])
	h.CreatedAt = int64(engine.Uint64(data[24:32]))

	if h.IndexOffset != HeaderSize || h.PayloadOffset != HeaderSize+h.SeriesCount*IndexEntrySize {
		return Header{}, fmt.Errorf("%w: inconsistent section offsets", errs.ErrInvalidSnapshotHeader)
	}

	return h, nil
}
