package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telemview/samplestore/errs"
)

// ==============================================================================
// Helper Functions
// ==============================================================================

// newBitfieldSeries builds a series with one attached bitfield and feeds it
// the given raw values through the converting append path.
func newBitfieldSeries(t *testing.T, msb, lsb int, raw []float64) (*Series, *Bitfield) {
	t.Helper()

	s, err := NewSeries(0, WithName("Status"), WithBlockSize(8))
	require.NoError(t, err)

	bf, err := s.AddBitfield(msb, lsb)
	require.NoError(t, err)

	for i, v := range raw {
		require.NoError(t, s.Append(i, v))
	}
	require.NoError(t, s.SetSampleCount(len(raw)))

	return s, bf
}

// ==============================================================================
// Validation
// ==============================================================================

func TestAddBitfield_Validation(t *testing.T) {
	s, err := NewSeries(0)
	require.NoError(t, err)

	t.Run("NegativeLSB", func(t *testing.T) {
		_, err := s.AddBitfield(3, -1)
		require.ErrorIs(t, err, errs.ErrInvalidBitRange)
	})

	t.Run("MSBBelowLSB", func(t *testing.T) {
		_, err := s.AddBitfield(2, 5)
		require.ErrorIs(t, err, errs.ErrInvalidBitRange)
	})

	t.Run("TooWide", func(t *testing.T) {
		_, err := s.AddBitfield(16, 0) // 17 bits
		require.ErrorIs(t, err, errs.ErrBitRangeTooWide)
	})

	t.Run("WidestAllowed", func(t *testing.T) {
		bf, err := s.AddBitfield(15, 0)
		require.NoError(t, err)
		require.Equal(t, 1<<16, bf.StateCount())
	})

	t.Run("SingleBit", func(t *testing.T) {
		bf, err := s.AddBitfield(7, 7)
		require.NoError(t, err)
		require.Equal(t, 2, bf.StateCount())
		require.Equal(t, "Bit 7 = 1", bf.States()[1].Label)
	})
}

func TestBitfield_StateTable(t *testing.T) {
	s, err := NewSeries(4, WithColor(Color{0, 0, 255, 255}))
	require.NoError(t, err)

	bf, err := s.AddBitfield(3, 2)
	require.NoError(t, err)
	require.Equal(t, 3, bf.MSBit())
	require.Equal(t, 2, bf.LSBit())
	require.Equal(t, 4, bf.StateCount())

	for value, state := range bf.States() {
		require.Equal(t, value, state.Value)
		require.Equal(t, Color{0, 0, 255, 255}, state.Color)
		require.Equal(t, StateRef{SeriesLocation: 4, MSBit: 3, LSBit: 2, Value: value}, state.Ref)
	}
	require.Equal(t, "Bits [3:2] = 2", bf.States()[2].Label)
}

// ==============================================================================
// Transition Detection
// ==============================================================================

func TestBitfield_Transitions(t *testing.T) {
	// Bits [3:2] decode raw [0,4,4,8,8,8,12] as states [0,1,1,2,2,2,3].
	_, bf := newBitfieldSeries(t, 3, 2, []float64{0, 4, 4, 8, 8, 8, 12})

	require.Empty(t, bf.States()[0].TransitionSlice()) // baseline, never re-entered
	require.Equal(t, []int{1}, bf.States()[1].TransitionSlice())
	require.Equal(t, []int{3}, bf.States()[2].TransitionSlice())
	require.Equal(t, []int{6}, bf.States()[3].TransitionSlice())
	require.Equal(t, 1, bf.States()[1].TransitionCount())
}

func TestBitfield_Process(t *testing.T) {
	t.Run("BaselineNotATransition", func(t *testing.T) {
		// A nonzero state at sample 0 is the baseline, not an entry.
		_, bf := newBitfieldSeries(t, 3, 2, []float64{8, 8, 8})
		require.Empty(t, bf.States()[2].TransitionSlice())
	})

	t.Run("OutsideBitsIgnored", func(t *testing.T) {
		// Bit 4 flips on samples 1 and 2 but bits [3:2] never change.
		_, bf := newBitfieldSeries(t, 3, 2, []float64{4, 20, 4, 20})
		for _, state := range bf.States() {
			require.Empty(t, state.TransitionSlice())
		}
	})

	t.Run("ReenteredState", func(t *testing.T) {
		_, bf := newBitfieldSeries(t, 1, 0, []float64{0, 1, 0, 1, 0})
		require.Equal(t, []int{1, 3}, bf.States()[1].TransitionSlice())
		require.Equal(t, []int{2, 4}, bf.States()[0].TransitionSlice())
	})

	t.Run("TruncatesFractionalSamples", func(t *testing.T) {
		// 1.9 truncates to 1; the decoded stream is [0, 1, 1].
		_, bf := newBitfieldSeries(t, 1, 0, []float64{0, 1.9, 1.2})
		require.Equal(t, []int{1}, bf.States()[1].TransitionSlice())
	})
}

func TestBitfieldState_Transitions(t *testing.T) {
	_, bf := newBitfieldSeries(t, 1, 0, []float64{0, 1, 0, 1, 0, 1})

	var collected []int
	for sampleNumber := range bf.States()[1].Transitions() {
		collected = append(collected, sampleNumber)
	}
	require.Equal(t, []int{1, 3, 5}, collected)

	// Early break must not panic or misbehave.
	for range bf.States()[1].Transitions() {
		break
	}
}

func TestBitfield_StateAt(t *testing.T) {
	_, bf := newBitfieldSeries(t, 3, 2, []float64{0, 4, 4, 8, 8, 8, 12})

	wantStates := []int{0, 1, 1, 2, 2, 2, 3}
	for i, want := range wantStates {
		got, err := bf.StateAt(i)
		require.NoError(t, err)
		require.Equal(t, want, got, "sample %d", i)
	}

	_, err := bf.StateAt(7)
	require.ErrorIs(t, err, errs.ErrSampleOutOfRange)
}

// ==============================================================================
// Ordering
// ==============================================================================

func TestBitfield_Compare(t *testing.T) {
	s0, err := NewSeries(0)
	require.NoError(t, err)
	s1, err := NewSeries(1)
	require.NoError(t, err)

	low, err := s0.AddBitfield(3, 0)
	require.NoError(t, err)
	high, err := s0.AddBitfield(7, 4)
	require.NoError(t, err)
	other, err := s1.AddBitfield(1, 0)
	require.NoError(t, err)

	t.Run("SameSeriesByLSB", func(t *testing.T) {
		require.Negative(t, low.Compare(high))
		require.Positive(t, high.Compare(low))
		require.Zero(t, low.Compare(low))
	})

	t.Run("AcrossSeriesByLocation", func(t *testing.T) {
		require.Negative(t, high.Compare(other))
		require.Positive(t, other.Compare(low))
	})

	t.Run("StateOrdering", func(t *testing.T) {
		require.Negative(t, low.States()[0].Compare(low.States()[1]))
		require.Negative(t, low.States()[3].Compare(high.States()[0]))
		require.Negative(t, high.States()[1].Compare(other.States()[0]))
	})
}
