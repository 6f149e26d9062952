package snapshot

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/telemview/samplestore/compress"
	"github.com/telemview/samplestore/endian"
	"github.com/telemview/samplestore/errs"
	"github.com/telemview/samplestore/store"
)

// Decode reconstructs a session from a snapshot produced by Encoder.Encode.
//
// The payload checksum is verified before decompression, so corrupted
// snapshots fail fast with errs.ErrChecksumMismatch rather than produce a
// half-loaded session. Samples are replayed through the normal append path
// in sample-number order, so block aggregates and bitfield transition logs
// come out identical to the live session they were captured from.
func Decode(data []byte) (*store.Session, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	if uint32(len(data)) < header.PayloadOffset {
		return nil, fmt.Errorf("%w: truncated before payload section", errs.ErrInvalidSnapshotHeader)
	}

	compressed := data[header.PayloadOffset:]
	if checksum := xxhash.Sum64(compressed); checksum != header.Checksum {
		return nil, fmt.Errorf("%w: header 0x%016x, payload 0x%016x", errs.ErrChecksumMismatch, header.Checksum, checksum)
	}

	codec, err := compress.GetCodec(header.Compression)
	if err != nil {
		return nil, err
	}

	payload, err := codec.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("snapshot payload decompression failed: %w", err)
	}

	engine := header.Engine()
	session := store.NewSession()
	connections := make(map[string]*store.Connection)

	for i := range int(header.SeriesCount) {
		offset := int(header.IndexOffset) + i*IndexEntrySize
		entry, err := ParseIndexEntry(data[offset:], engine)
		if err != nil {
			return nil, err
		}

		if err := decodeSeries(session, connections, payload, entry, engine); err != nil {
			return nil, fmt.Errorf("series 0x%016x: %w", entry.SeriesID, err)
		}
	}

	return session, nil
}

// decodeSeries rebuilds one series: metadata, bitfields, then sample replay.
func decodeSeries(session *store.Session, connections map[string]*store.Connection, payload []byte, entry IndexEntry, engine endian.EndianEngine) error {
	end := entry.PayloadOffset + uint64(entry.MetaLength) + 8*uint64(entry.SampleCount)
	if entry.PayloadOffset > uint64(len(payload)) || end > uint64(len(payload)) {
		return fmt.Errorf("%w: record [%d, %d) outside payload of %d bytes",
			errs.ErrInvalidSnapshotIndex, entry.PayloadOffset, end, len(payload))
	}

	meta, err := parseSeriesMeta(payload[entry.PayloadOffset:entry.PayloadOffset+uint64(entry.MetaLength)], engine)
	if err != nil {
		return err
	}

	conn, ok := connections[meta.connectionName]
	if !ok {
		conn = session.AddConnection(meta.connectionName)
		connections[meta.connectionName] = conn
	}

	series, err := conn.NewSeries(int(entry.Location),
		store.WithName(meta.name),
		store.WithUnit(meta.unit),
		store.WithColor(meta.color),
		store.WithConversionFactors(meta.factorA, meta.factorB),
		store.WithBlockSize(meta.blockSize),
	)
	if err != nil {
		return err
	}

	for _, bits := range meta.bitfields {
		if _, err := series.AddBitfield(bits[0], bits[1]); err != nil {
			return err
		}
	}

	samples := payload[entry.PayloadOffset+uint64(entry.MetaLength) : end]
	for i := range int(entry.SampleCount) {
		value := math.Float64frombits(engine.Uint64(samples[i*8 : i*8+8]))
		if err := series.AppendConverted(i, value); err != nil {
			return err
		}
	}

	return series.SetSampleCount(int(entry.SampleCount))
}

// seriesMeta is the decoded metadata record of one series.
type seriesMeta struct {
	connectionName string
	name           string
	unit           string
	color          store.Color
	factorA        float64
	factorB        float64
	blockSize      int
	bitfields      [][2]int // (msb, lsb) pairs in attachment order
}

// parseSeriesMeta parses a metadata record; see appendSeriesMeta for layout.
func parseSeriesMeta(data []byte, engine endian.EndianEngine) (seriesMeta, error) {
	var meta seriesMeta
	var err error

	meta.connectionName, data, err = readString(data, engine)
	if err != nil {
		return meta, err
	}
	meta.name, data, err = readString(data, engine)
	if err != nil {
		return meta, err
	}
	meta.unit, data, err = readString(data, engine)
	if err != nil {
		return meta, err
	}

	// color(4) + factors(16) + block size(4) + bitfield count(2)
	if len(data) < 26 {
		return meta, fmt.Errorf("%w: truncated metadata record", errs.ErrInvalidSnapshotPayload)
	}

	meta.color = store.Color{R: data[0], G: data[1], B: data[2], A: data[3]}
	meta.factorA = math.Float64frombits(engine.Uint64(data[4:12]))
	meta.factorB = math.Float64frombits(engine.Uint64(data[12:20]))
	meta.blockSize = int(engine.Uint32(data[20:24]))

	bitfieldCount := int(engine.Uint16(data[24:26]))
	data = data[26:]
	if len(data) < bitfieldCount*2 {
		return meta, fmt.Errorf("%w: truncated bitfield list", errs.ErrInvalidSnapshotPayload)
	}

	meta.bitfields = make([][2]int, bitfieldCount)
	for i := range bitfieldCount {
		meta.bitfields[i] = [2]int{int(data[i*2]), int(data[i*2+1])}
	}

	return meta, nil
}

// readString reads a uint16-length-prefixed string and returns the remainder.
func readString(data []byte, engine endian.EndianEngine) (string, []byte, error) {
	if len(data) < 2 {
		return "", nil, fmt.Errorf("%w: truncated string length", errs.ErrInvalidSnapshotPayload)
	}

	n := int(engine.Uint16(data[0:2]))
	if len(data) < 2+n {
		return "", nil, fmt.Errorf("%w: truncated string of %d bytes", errs.ErrInvalidSnapshotPayload, n)
	}

	return string(data[2 : 2+n]), data[2+n:], nil
}
