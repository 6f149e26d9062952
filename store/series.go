package store

import (
	"fmt"
	"sync"

	"github.com/telemview/samplestore/internal/options"
)

// Series describes one column or packet field of a telemetry stream and
// stores all of its samples.
//
// A series owns exactly one BlockStore plus the calibration constants that
// turn raw decoded values into engineering units, display metadata, and zero
// or more attached bitfields. Samples are appended for the life of a session
// and discarded with the session.
//
// Write access follows the block store's discipline: either the sequential
// Append/AppendConverted path, or block-granular write slots acquired with
// AcquireWriteSlot for decoder threads filling whole blocks in parallel.
// Readers only ever observe published samples and never block on producers.
type Series struct {
	location int

	factorA float64
	factorB float64
	factor  float64 // factorB / factorA, applied to every raw value

	connectionName string

	mu    sync.RWMutex // guards mutable display metadata
	name  string
	unit  string
	color Color

	floats *BlockStore

	bitfields []*Bitfield
}

// NewSeries creates a series for the given location (CSV column number or
// binary byte offset), which is immutable for the series' lifetime.
//
// Returns:
//   - *Series: Series with an empty block store
//   - error: Option validation error (invalid block size or conversion factor)
func NewSeries(location int, opts ...SeriesOption) (*Series, error) {
	cfg := newSeriesConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	floats, err := NewBlockStore(cfg.blockSize)
	if err != nil {
		return nil, err
	}

	return &Series{
		location:       location,
		factorA:        cfg.factorA,
		factorB:        cfg.factorB,
		factor:         cfg.factorB / cfg.factorA,
		connectionName: cfg.connectionName,
		name:           cfg.name,
		unit:           cfg.unit,
		color:          cfg.color,
		floats:         floats,
	}, nil
}

// Location returns the stable identifier of the column/field this series
// represents.
func (s *Series) Location() int {
	return s.location
}

// Name returns the series' descriptive name.
func (s *Series) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.name
}

// Unit returns the series' unit text.
func (s *Series) Unit() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.unit
}

// Color returns the series' display color.
func (s *Series) Color() Color {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.color
}

// ConnectionName returns the name of the connection this series belongs to.
func (s *Series) ConnectionName() string {
	return s.connectionName
}

// ConversionFactor returns the linear scale applied to raw values
// (factorB / factorA).
func (s *Series) ConversionFactor() float64 {
	return s.factor
}

// ConversionFactors returns the two calibration constants: factorA raw LSBs
// equal factorB engineering units.
func (s *Series) ConversionFactors() (factorA, factorB float64) {
	return s.factorA, s.factorB
}

// BlockSize returns the samples-per-block of the backing block store.
func (s *Series) BlockSize() int {
	return s.floats.BlockSize()
}

// SetNameColorUnit updates the display metadata of this series.
// Metadata never affects stored values.
func (s *Series) SetNameColorUnit(name string, color Color, unit string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.name = name
	s.color = color
	s.unit = unit
}

// Label returns a text description that uniquely identifies this series.
//
// When more than one connection is active the label is prefixed with the
// owning connection's name. The caller supplies the live connection count
// (see Session.Label), so labeling needs no global state.
func (s *Series) Label(connectionCount int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if connectionCount <= 1 || s.connectionName == "" {
		return s.name
	}

	return s.connectionName + ": " + s.name
}

// Append converts a raw decoded value to engineering units and stores it at
// the given sample number, driving any attached bitfields with the converted,
// integer-truncated value before returning.
func (s *Series) Append(sampleNumber int, rawValue float64) error {
	return s.AppendConverted(sampleNumber, rawValue*s.factor)
}

// AppendConverted stores a value that is already in engineering units,
// skipping conversion. Attached bitfields are still driven in the same call,
// keeping transition logs causally consistent with the sample stream.
func (s *Series) AppendConverted(sampleNumber int, value float64) error {
	if err := s.floats.SetValue(sampleNumber, value); err != nil {
		return err
	}

	for _, bf := range s.bitfields {
		bf.process(int(value), sampleNumber)
	}

	return nil
}

// AcquireWriteSlot exposes the block store's per-block slot so a decoder
// thread can write many samples directly without per-sample call overhead.
//
// The caller must publish the slot's aggregate once the block is fully
// populated, before advancing the series' sample count. Series with attached
// bitfields cannot use the direct-slot path, since it bypasses transition
// detection; they must append through Append/AppendConverted.
func (s *Series) AcquireWriteSlot(sampleNumber int) (WriteSlot, error) {
	if len(s.bitfields) > 0 {
		return WriteSlot{}, fmt.Errorf("series %d has bitfields; direct slot writes would bypass transition detection", s.location)
	}

	return s.floats.Slot(sampleNumber)
}

// SampleCount returns the published sample count of this series.
func (s *Series) SampleCount() int {
	return s.floats.SampleCount()
}

// SetSampleCount advances the published sample count. This is the single
// publication point; see BlockStore.SetSampleCount.
func (s *Series) SetSampleCount(n int) error {
	return s.floats.SetSampleCount(n)
}

// Sample returns one published sample in engineering units.
func (s *Series) Sample(sampleNumber int) (float64, error) {
	return s.floats.Read(sampleNumber)
}

// SampleText returns one published sample formatted for display: zero-padded
// binary for bitfield series, a 5-significant-digit number with unit suffix
// otherwise.
func (s *Series) SampleText(sampleNumber int) (string, error) {
	value, err := s.floats.Read(sampleNumber)
	if err != nil {
		return "", err
	}

	if len(s.bitfields) > 0 {
		return fmt.Sprintf("0b%08b", int64(value)), nil
	}

	s.mu.RLock()
	unit := s.unit
	s.mu.RUnlock()

	return formatNumber(value, 5) + " " + unit, nil
}

// SamplesBetween materializes the closed range [first, last] of published
// samples as a freshly allocated contiguous buffer.
func (s *Series) SamplesBetween(first, last int) ([]float64, error) {
	return s.floats.CopyRange(first, last)
}

// CopySamplesInto copies the closed range [first, last] of published samples
// into a caller-owned buffer, which must hold exactly last-first+1 elements.
// It is the allocation-free variant of SamplesBetween for callers that
// recycle buffers.
func (s *Series) CopySamplesInto(dst []float64, first, last int) error {
	return s.floats.CopyRangeInto(dst, first, last)
}

// RangeAggregate returns the minimum and maximum over the closed range
// [first, last] of published samples, using the cached per-block aggregates.
func (s *Series) RangeAggregate(first, last int) (minValue, maxValue float64, err error) {
	return s.floats.RangeAggregate(first, last)
}

// Samples is a reusable bulk query result for rendering: a contiguous run of
// sample values plus the exact min/max of that run.
//
// The buffer is a snapshot valid until the next FillSamples call that reuses
// the same object; callers must not hold it across refills.
type Samples struct {
	Values []float64
	Min    float64
	Max    float64
}

// FillSamples fills a Samples object with the closed range [first, last],
// reusing its buffer when the capacity suffices.
//
// The min/max are taken from the cached block aggregates and are always
// identical to scanning every element of the filled buffer.
func (s *Series) FillSamples(first, last int, samples *Samples) error {
	if err := s.floats.checkRange(first, last); err != nil {
		return err
	}

	n := last - first + 1
	if cap(samples.Values) < n {
		samples.Values = make([]float64, n)
	} else {
		samples.Values = samples.Values[:n]
	}

	s.floats.copyRange(samples.Values, first, last)

	minValue, maxValue, err := s.floats.RangeAggregate(first, last)
	if err != nil {
		return err
	}
	samples.Min = minValue
	samples.Max = maxValue

	return nil
}

// AddBitfield attaches a new bitfield occupying the inclusive bit range
// [lsb, msb] of this series' integer-truncated samples.
//
// Bitfields must be attached before samples are appended; attachment is not
// synchronized against concurrent producers.
func (s *Series) AddBitfield(msb, lsb int) (*Bitfield, error) {
	bf, err := newBitfield(s, msb, lsb)
	if err != nil {
		return nil, err
	}

	s.bitfields = append(s.bitfields, bf)

	return bf, nil
}

// Bitfields returns the bitfields attached to this series, in attachment
// order.
func (s *Series) Bitfields() []*Bitfield {
	return s.bitfields
}

// IsBitfield reports whether this series has at least one attached bitfield,
// which switches SampleText to binary formatting.
func (s *Series) IsBitfield() bool {
	return len(s.bitfields) > 0
}
