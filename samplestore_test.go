package samplestore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telemview/samplestore/format"
	"github.com/telemview/samplestore/snapshot"
	"github.com/telemview/samplestore/store"
)

// TestLiveSessionWorkflow walks the path a telemetry receiver takes: register
// a connection and its fields, stream samples, publish, query for rendering,
// then snapshot and restore.
func TestLiveSessionWorkflow(t *testing.T) {
	sess := NewSession()
	conn := sess.AddConnection("UART COM3")

	voltage, err := conn.NewSeries(0,
		store.WithName("Voltage"),
		store.WithUnit("V"),
		store.WithConversionFactors(4096, 3.3),
		store.WithBlockSize(64),
	)
	require.NoError(t, err)

	status, err := conn.NewSeries(4, store.WithName("Status"), store.WithBlockSize(64))
	require.NoError(t, err)
	motor, err := status.AddBitfield(1, 0)
	require.NoError(t, err)

	// Stream a batch of telemetry packets.
	const n = 500
	for i := range n {
		require.NoError(t, voltage.Append(i, float64(i%4096)))
		require.NoError(t, status.Append(i, float64((i/100)%4)))
	}
	require.NoError(t, voltage.SetSampleCount(n))
	require.NoError(t, status.SetSampleCount(n))

	// Rendering-side queries.
	require.Equal(t, "Voltage", sess.Label(voltage))

	var samples store.Samples
	require.NoError(t, voltage.FillSamples(0, n-1, &samples))
	require.Len(t, samples.Values, n)
	require.Equal(t, 0.0, samples.Min)

	state, err := motor.StateAt(150)
	require.NoError(t, err)
	require.Equal(t, 1, state)
	require.Equal(t, []int{100}, motor.States()[1].TransitionSlice())

	// Snapshot and restore.
	enc, err := NewDefaultSnapshotEncoder()
	require.NoError(t, err)
	data, err := enc.Encode(sess)
	require.NoError(t, err)

	restored, err := DecodeSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, 1, restored.ConnectionCount())

	restoredVoltage := restored.Connections()[0].SeriesByLocation(0)
	require.NotNil(t, restoredVoltage)
	require.Equal(t, n, restoredVoltage.SampleCount())

	want, err := voltage.Sample(123)
	require.NoError(t, err)
	got, err := restoredVoltage.Sample(123)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestNewSnapshotEncoder_Options(t *testing.T) {
	enc, err := NewSnapshotEncoder(snapshot.WithCompression(format.CompressionS2))
	require.NoError(t, err)

	sess := NewSession()
	data, err := enc.Encode(sess)
	require.NoError(t, err)

	header, err := snapshot.ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, format.CompressionS2, header.Compression)
}

func TestSeriesID(t *testing.T) {
	require.Equal(t, SeriesID("Voltage"), SeriesID("Voltage"))
	require.NotEqual(t, SeriesID("Voltage"), SeriesID("Current"))
}
