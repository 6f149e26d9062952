// Package samplestore provides the in-memory time-series sample store behind
// a live telemetry visualization tool.
//
// It accepts a continuous, high-rate stream of numeric samples from one or
// more concurrent producers (protocol decoders running in parallel), retains
// them for the life of a session, and answers range and min/max aggregate
// queries fast enough to redraw charts at interactive frame rates even when
// a series holds tens of millions of samples.
//
// # Core Features
//
//   - Block-chunked, append-only sample storage with cached per-block
//     min/max aggregates for O(blocks) zoomed-out range queries
//   - Block-granular write slots so decoder threads ingest in parallel
//     without per-sample synchronization
//   - A single atomic publication point: readers never observe a partially
//     written block
//   - Unit conversion from raw decoded values to engineering units
//   - Bit-decoded sub-fields with per-value state-transition logs
//   - Session snapshots with optional compression (Zstd, S2, LZ4)
//
// # Basic Usage
//
// Creating a session and appending samples:
//
//	import "github.com/telemview/samplestore"
//
//	session := samplestore.NewSession()
//	conn := session.AddConnection("telemetry")
//
//	voltage, _ := conn.NewSeries(0,
//	    store.WithName("voltage"),
//	    store.WithUnit("V"),
//	    store.WithConversionFactors(4096, 3.3), // 4096 LSBs = 3.3V
//	)
//
//	for i, raw := range decodedValues {
//	    voltage.Append(i, raw)
//	}
//	voltage.SetSampleCount(len(decodedValues))
//
// Querying for rendering:
//
//	lo, hi, _ := voltage.RangeAggregate(0, voltage.SampleCount()-1)
//	text, _ := voltage.SampleText(voltage.SampleCount() - 1)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the store and
// snapshot packages, simplifying the most common use cases. For fine-grained
// control (write slots, custom block sizes, snapshot byte order), use those
// packages directly.
package samplestore

import (
	"github.com/telemview/samplestore/format"
	"github.com/telemview/samplestore/internal/hash"
	"github.com/telemview/samplestore/snapshot"
	"github.com/telemview/samplestore/store"
)

var defaultSnapshotOptions = []snapshot.Option{
	snapshot.WithLittleEndian(),
	snapshot.WithCompression(format.CompressionZstd),
}

// NewSession creates an empty capture session: the container for every
// connection and series of one recording.
func NewSession() *store.Session {
	return store.NewSession()
}

// NewSeries creates a standalone series not attached to any connection.
//
// Most callers create series through Connection.NewSeries so labels are
// disambiguated automatically; standalone series are useful for derived or
// computed channels.
//
// Parameters:
//   - location: Stable identifier of the column/field (immutable)
//   - opts: Optional configuration (name, unit, color, conversion factors,
//     block size)
//
// Returns:
//   - *store.Series: Series with an empty block store
//   - error: Option validation error
func NewSeries(location int, opts ...store.SeriesOption) (*store.Series, error) {
	return store.NewSeries(location, opts...)
}

// NewSnapshotEncoder creates a session snapshot encoder with custom options.
//
// Available options:
//   - snapshot.WithCompression(format.CompressionNone|Zstd|S2|LZ4)
//   - snapshot.WithLittleEndian() / snapshot.WithBigEndian()
func NewSnapshotEncoder(opts ...snapshot.Option) (*snapshot.Encoder, error) {
	return snapshot.NewEncoder(opts...)
}

// NewDefaultSnapshotEncoder creates a snapshot encoder with recommended
// defaults: little-endian byte order and Zstd compression, the best ratio
// for raw float64 sample runs from slowly-changing telemetry.
func NewDefaultSnapshotEncoder() (*snapshot.Encoder, error) {
	return snapshot.NewEncoder(defaultSnapshotOptions...)
}

// DecodeSnapshot reconstructs a session from snapshot bytes, verifying the
// payload checksum before any decoding work.
func DecodeSnapshot(data []byte) (*store.Session, error) {
	return snapshot.Decode(data)
}

// SeriesID converts a series label to its 64-bit xxHash64 identifier.
//
// Use this to key series in application-side lookup tables; the same label
// always produces the same ID.
func SeriesID(label string) uint64 {
	return hash.ID(label)
}
