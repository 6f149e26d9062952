package snapshot

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/telemview/samplestore/compress"
	"github.com/telemview/samplestore/endian"
	"github.com/telemview/samplestore/errs"
	"github.com/telemview/samplestore/format"
	"github.com/telemview/samplestore/internal/options"
	"github.com/telemview/samplestore/internal/pool"
	"github.com/telemview/samplestore/store"
)

// Encoder serializes a whole session — every connection, series, and sample —
// into a single self-describing byte slice.
//
// The Encoder is safe for concurrent use: each Encode call works on its own
// buffers. Samples appended to a series after its count was read are simply
// not part of the snapshot; the snapshot is a consistent published-prefix
// view of every series.
type Encoder struct {
	compression format.CompressionType
	bigEndian   bool
}

// Option represents a functional option for configuring an Encoder.
type Option = options.Option[*Encoder]

// WithCompression selects the compression applied to the payload section.
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(e *Encoder) error {
		if !compression.Valid() {
			return fmt.Errorf("%w: %s", errs.ErrInvalidCompression, compression)
		}
		e.compression = compression

		return nil
	})
}

// WithLittleEndian stores the snapshot body in little-endian byte order.
// This is the default.
func WithLittleEndian() Option {
	return options.NoError(func(e *Encoder) {
		e.bigEndian = false
	})
}

// WithBigEndian stores the snapshot body in big-endian byte order.
func WithBigEndian() Option {
	return options.NoError(func(e *Encoder) {
		e.bigEndian = true
	})
}

// NewEncoder creates a snapshot encoder.
//
// Defaults: Zstd compression, little-endian byte order.
func NewEncoder(opts ...Option) (*Encoder, error) {
	e := &Encoder{
		compression: format.CompressionZstd,
	}

	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Encoder) engine() endian.EndianEngine {
	if e.bigEndian {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// seriesRecord is one serialized series awaiting assembly: its index entry
// (offset filled in during assembly) and its payload bytes.
type seriesRecord struct {
	entry IndexEntry
	buf   *pool.ByteBuffer
}

// Encode serializes the session.
//
// Per-series records (metadata plus raw samples) are built in parallel, one
// goroutine per series bounded by GOMAXPROCS, then concatenated, compressed
// as one payload, and checksummed with xxHash64.
//
// Returns:
//   - []byte: Complete snapshot (header, index, compressed payload)
//   - error: Read or compression error
func (e *Encoder) Encode(session *store.Session) ([]byte, error) {
	seriesList := session.AllSeries()
	engine := e.engine()

	records := make([]seriesRecord, len(seriesList))
	defer func() {
		for i := range records {
			if records[i].buf != nil {
				pool.PutSnapshotBuffer(records[i].buf)
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range seriesList {
		g.Go(func() error {
			record, err := encodeSeries(engine, s)
			if err != nil {
				return err
			}
			records[i] = record

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Assemble the uncompressed payload and assign offsets.
	total := 0
	for i := range records {
		total += records[i].buf.Len()
	}

	payload := make([]byte, 0, total)
	for i := range records {
		records[i].entry.PayloadOffset = uint64(len(payload))
		payload = append(payload, records[i].buf.Bytes()...)
	}

	codec, err := compress.GetCodec(e.compression)
	if err != nil {
		return nil, err
	}

	compressed, err := codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("snapshot payload compression failed: %w", err)
	}

	header := NewHeader(len(seriesList), e.compression, e.bigEndian)
	header.Checksum = xxhash.Sum64(compressed)
	header.CreatedAt = time.Now().UnixMicro()

	out := make([]byte, 0, HeaderSize+len(records)*IndexEntrySize+len(compressed))
	out = append(out, header.Bytes()...)
	for i := range records {
		out = append(out, records[i].entry.Bytes(engine)...)
	}
	out = append(out, compressed...)

	return out, nil
}

// encodeSeries serializes one series into a pooled buffer: the metadata
// record followed by the published samples as raw float64 bits.
func encodeSeries(engine endian.EndianEngine, s *store.Series) (seriesRecord, error) {
	count := s.SampleCount()

	bb := pool.GetSnapshotBuffer()
	b := appendSeriesMeta(bb.Bytes(), engine, s)
	metaLength := len(b)

	if count > 0 {
		samples, release := pool.GetFloat64Slice(count)
		if err := s.CopySamplesInto(samples, 0, count-1); err != nil {
			release()
			pool.PutSnapshotBuffer(bb)

			return seriesRecord{}, err
		}

		for _, v := range samples {
			b = engine.AppendUint64(b, math.Float64bits(v))
		}
		release()
	}
	bb.B = b

	return seriesRecord{
		entry: IndexEntry{
			SeriesID:    SeriesID(s.ConnectionName(), s.Location(), s.Name()),
			Location:    uint32(s.Location()),
			SampleCount: uint32(count),
			MetaLength:  uint32(metaLength),
		},
		buf: bb,
	}, nil
}

// appendSeriesMeta appends the series metadata record:
// connection name, name, unit (each length-prefixed), RGBA color, the two
// conversion factors, block size, and the attached bitfield bit ranges.
func appendSeriesMeta(b []byte, engine endian.EndianEngine, s *store.Series) []byte {
	b = appendString(b, engine, s.ConnectionName())
	b = appendString(b, engine, s.Name())
	b = appendString(b, engine, s.Unit())

	color := s.Color()
	b = append(b, color.R, color.G, color.B, color.A)

	factorA, factorB := s.ConversionFactors()
	b = engine.AppendUint64(b, math.Float64bits(factorA))
	b = engine.AppendUint64(b, math.Float64bits(factorB))
	b = engine.AppendUint32(b, uint32(s.BlockSize()))

	bitfields := s.Bitfields()
	b = engine.AppendUint16(b, uint16(len(bitfields)))
	for _, bf := range bitfields {
		b = append(b, byte(bf.MSBit()), byte(bf.LSBit()))
	}

	return b
}

// appendString appends a uint16-length-prefixed string.
func appendString(b []byte, engine endian.EndianEngine, s string) []byte {
	b = engine.AppendUint16(b, uint16(len(s)))

	return append(b, s...)
}
