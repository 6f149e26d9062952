package store

import (
	"fmt"
	"iter"
	"sync"

	"github.com/telemview/samplestore/errs"
)

// MaxBitfieldWidth is the widest bit range a bitfield may span. The decoded
// state table holds one entry per possible value, so the width bounds it at
// 2^16 entries.
const MaxBitfieldWidth = 16

// StateRef identifies one decoded state without holding object pointers:
// the owning series' location, the bit range, and the decoded value. It is
// what legend and marker renderers carry around instead of back-references.
type StateRef struct {
	SeriesLocation int
	MSBit          int
	LSBit          int
	Value          int
}

// Bitfield extracts a contiguous bit range from each integer-truncated
// sample of a series and keeps, per decoded value, the ordered list of
// sample numbers at which the decoded stream transitioned into that value.
//
// A bitfield is driven synchronously by its series as each sample is
// appended, in sample-number order, so its transition logs are always
// consistent with the published sample stream.
type Bitfield struct {
	series *Series

	msb  int
	lsb  int
	mask int // (raw value >> lsb) & mask = decoded state

	mu     sync.Mutex // guards transition appends vs. reader snapshots
	states []*BitfieldState

	previousValue int
	previousState int
}

// BitfieldState describes one possible decoded value of a bitfield.
type BitfieldState struct {
	bf *Bitfield

	// Value is the decoded value this state represents.
	Value int

	// Label is the auto-generated description, e.g. "Bits [3:2] = 1".
	Label string

	// Name is the user-assigned description shown on chart markers. Mutable
	// display metadata.
	Name string

	// Color is the marker color. Defaults to the owning series' color.
	Color Color

	// Ref identifies this state for sorting and display without an object
	// back-pointer.
	Ref StateRef

	transitions []int
}

func newBitfield(series *Series, msb, lsb int) (*Bitfield, error) {
	if lsb < 0 || msb < lsb {
		return nil, fmt.Errorf("%w: [%d:%d]", errs.ErrInvalidBitRange, msb, lsb)
	}

	width := msb - lsb + 1
	if width > MaxBitfieldWidth {
		return nil, fmt.Errorf("%w: [%d:%d] spans %d bits, max %d", errs.ErrBitRangeTooWide, msb, lsb, width, MaxBitfieldWidth)
	}

	bf := &Bitfield{
		series: series,
		msb:    msb,
		lsb:    lsb,
		mask:   (1 << width) - 1,
	}

	bf.states = make([]*BitfieldState, 1<<width)
	for value := range bf.states {
		label := fmt.Sprintf("Bits [%d:%d] = %d", msb, lsb, value)
		if msb == lsb {
			label = fmt.Sprintf("Bit %d = %d", msb, value)
		}

		bf.states[value] = &BitfieldState{
			bf:    bf,
			Value: value,
			Label: label,
			Color: series.Color(),
			Ref: StateRef{
				SeriesLocation: series.location,
				MSBit:          msb,
				LSBit:          lsb,
				Value:          value,
			},
		}
	}

	return bf, nil
}

// MSBit returns the most-significant bit occupied by this bitfield.
func (bf *Bitfield) MSBit() int {
	return bf.msb
}

// LSBit returns the least-significant bit occupied by this bitfield.
func (bf *Bitfield) LSBit() int {
	return bf.lsb
}

// StateCount returns the number of possible decoded values, 2^width.
func (bf *Bitfield) StateCount() int {
	return len(bf.states)
}

// States returns one entry per possible decoded value, ordered by ascending
// value.
func (bf *Bitfield) States() []*BitfieldState {
	return bf.states
}

// decode extracts this bitfield's state from a raw integer sample value.
func (bf *Bitfield) decode(value int) int {
	return (value >> bf.lsb) & bf.mask
}

// process checks one sample value for a change of decoded state.
//
// Sample 0 records the baseline without emitting a transition. Later samples
// short-circuit when the raw value is unchanged: decoding is a pure function
// of the raw value, so the decoded state cannot have changed either. On a
// raw-value change the decoded state is recomputed, and sample numbers are
// appended to the entered state's transition log only on a real change.
//
// Called by the owning series in sample-number order.
func (bf *Bitfield) process(value int, sampleNumber int) {
	if sampleNumber == 0 {
		bf.previousValue = value
		bf.previousState = bf.decode(value)

		return
	}

	if value == bf.previousValue {
		return
	}

	state := bf.decode(value)
	if state != bf.previousState {
		bf.mu.Lock()
		bf.states[state].transitions = append(bf.states[state].transitions, sampleNumber)
		bf.mu.Unlock()
		bf.previousState = state
	}
	bf.previousValue = value
}

// StateAt returns the decoded state at the given sample number.
//
// The state is recomputed from the raw sample rather than looked up in the
// transition log, so it is correct for any published index, including
// indices between recorded transitions.
func (bf *Bitfield) StateAt(sampleNumber int) (int, error) {
	value, err := bf.series.Sample(sampleNumber)
	if err != nil {
		return 0, err
	}

	return bf.decode(int(value)), nil
}

// Compare orders bitfields for display: within the same series, fields
// occupying less-significant bits come first; across series, by series
// position.
func (bf *Bitfield) Compare(other *Bitfield) int {
	if bf.series == other.series {
		return bf.lsb - other.lsb
	}

	return bf.series.location - other.series.location
}

// TransitionCount returns the number of recorded transitions into this state.
func (s *BitfieldState) TransitionCount() int {
	s.bf.mu.Lock()
	defer s.bf.mu.Unlock()

	return len(s.transitions)
}

// Transitions iterates over the sample numbers at which the decoded stream
// entered this state, in ascending order.
//
// The iteration walks a snapshot, so it is safe while a producer is still
// appending samples.
func (s *BitfieldState) Transitions() iter.Seq[int] {
	snapshot := s.TransitionSlice()

	return func(yield func(int) bool) {
		for _, sampleNumber := range snapshot {
			if !yield(sampleNumber) {
				return
			}
		}
	}
}

// TransitionSlice returns a copy of this state's transition log.
func (s *BitfieldState) TransitionSlice() []int {
	s.bf.mu.Lock()
	defer s.bf.mu.Unlock()

	out := make([]int, len(s.transitions))
	copy(out, s.transitions)

	return out
}

// Compare orders states for display: within the same bitfield, smaller
// decoded values first; within the same series, lower fields first; across
// series, by series position.
func (s *BitfieldState) Compare(other *BitfieldState) int {
	if s.Ref.SeriesLocation == other.Ref.SeriesLocation {
		if s.Ref.MSBit == other.Ref.MSBit && s.Ref.LSBit == other.Ref.LSBit {
			return s.Value - other.Value
		}

		return s.Ref.MSBit - other.Ref.MSBit
	}

	return s.Ref.SeriesLocation - other.Ref.SeriesLocation
}
