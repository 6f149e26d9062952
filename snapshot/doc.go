// Package snapshot serializes a whole capture session — connections, series
// metadata, bitfield definitions, and every published sample — into one
// self-describing byte slice, and reconstructs an identical session from it.
//
// This is the surface the session/project persistence layer consumes: it
// owns where the bytes go (a project file, a network peer); this package
// only converts between the live in-memory store and bytes.
//
// # Format
//
// A snapshot is three sections:
//
//	header   32 bytes: magic, endianness, compression, counts, offsets,
//	         xxHash64 checksum of the payload section, creation time
//	index    one fixed 32-byte entry per series
//	payload  per-series records (metadata + raw float64 samples),
//	         concatenated and compressed as a single unit
//
// Only the published prefix of each series is captured. Transition logs are
// not stored: decoding replays samples through the normal append path, which
// rebuilds block aggregates and bitfield transition logs exactly.
//
// # Example
//
//	encoder, _ := snapshot.NewEncoder(
//	    snapshot.WithCompression(format.CompressionZstd))
//	data, err := encoder.Encode(session)
//	// ... hand data to the project file writer ...
//
//	restored, err := snapshot.Decode(data)
package snapshot
