package snapshot

import (
	"fmt"
	"strconv"

	"github.com/telemview/samplestore/endian"
	"github.com/telemview/samplestore/errs"
	"github.com/telemview/samplestore/internal/hash"
)

// IndexEntry locates one series inside the uncompressed payload section.
//
// Wire layout (32 bytes):
//
//	0-7   series ID (xxHash64 of connection, location, and name)
//	8-11  location
//	12-15 published sample count
//	16-23 payload offset of the series record (metadata, then samples)
//	24-27 metadata length in bytes
//	28-31 reserved
//
// The series record is the metadata block immediately followed by
// sampleCount raw float64 samples.
type IndexEntry struct {
	SeriesID      uint64
	Location      uint32
	SampleCount   uint32
	PayloadOffset uint64
	MetaLength    uint32
}

// SeriesID computes the snapshot identifier for a series, stable across
// encode/decode cycles and unique per (connection, location, name).
func SeriesID(connectionName string, location int, name string) uint64 {
	return hash.ID(connectionName + "\x00" + strconv.Itoa(location) + "\x00" + name)
}

// Bytes serializes the index entry with the given byte-order engine.
func (e IndexEntry) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, IndexEntrySize)

	engine.PutUint64(b[0:8], e.SeriesID)
	engine.PutUint32(b[8:12], e.Location)
	engine.PutUint32(b[12:16], e.SampleCount)
	engine.PutUint64(b[16:24], e.PayloadOffset)
	engine.PutUint32(b[24:28], e.MetaLength)

	return b
}

// ParseIndexEntry parses one index entry.
func ParseIndexEntry(data []byte, engine endian.EndianEngine) (IndexEntry, error) {
	if len(data) < IndexEntrySize {
		return IndexEntry{}, fmt.Errorf("%w: got %d bytes, need %d", errs.ErrInvalidSnapshotIndex, len(data), IndexEntrySize)
	}

	return IndexEntry{
		SeriesID:      engine.Uint64(data[0:8]),
		Location:      engine.Uint32(data[8:12]),
		SampleCount:   engine.Uint32(data[12:16]),
		PayloadOffset: engine.Uint64(data[16:24]),
		MetaLength:    engine.Uint32(data[24:28]),
	}, nil
}
