package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_Connections(t *testing.T) {
	sess := NewSession()
	require.Equal(t, 0, sess.ConnectionCount())

	uart := sess.AddConnection("UART COM3")
	tcp := sess.AddConnection("TCP :8080")
	require.Equal(t, 2, sess.ConnectionCount())
	require.Equal(t, []*Connection{uart, tcp}, sess.Connections())
	require.Equal(t, "UART COM3", uart.Name())
}

func TestConnection_NewSeries(t *testing.T) {
	sess := NewSession()
	conn := sess.AddConnection("UART COM3")

	voltage, err := conn.NewSeries(0, WithName("Voltage"), WithUnit("V"))
	require.NoError(t, err)
	current, err := conn.NewSeries(4, WithName("Current"), WithUnit("A"))
	require.NoError(t, err)

	t.Run("InheritsConnectionName", func(t *testing.T) {
		require.Equal(t, "UART COM3", voltage.ConnectionName())
	})

	t.Run("RegistrationOrder", func(t *testing.T) {
		require.Equal(t, []*Series{voltage, current}, conn.Series())
	})

	t.Run("ByLocation", func(t *testing.T) {
		require.Same(t, current, conn.SeriesByLocation(4))
		require.Nil(t, conn.SeriesByLocation(2))
	})

	t.Run("PropagatesOptionErrors", func(t *testing.T) {
		_, err := conn.NewSeries(8, WithConversionFactors(0, 1))
		require.Error(t, err)
	})
}

func TestSession_Label(t *testing.T) {
	sess := NewSession()
	uart := sess.AddConnection("UART COM3")

	voltage, err := uart.NewSeries(0, WithName("Voltage"))
	require.NoError(t, err)

	t.Run("SingleConnection", func(t *testing.T) {
		require.Equal(t, "Voltage", sess.Label(voltage))
	})

	t.Run("MultipleConnections", func(t *testing.T) {
		sess.AddConnection("TCP :8080")
		require.Equal(t, "UART COM3: Voltage", sess.Label(voltage))
	})
}

func TestSession_AllSeries(t *testing.T) {
	sess := NewSession()
	a := sess.AddConnection("A")
	b := sess.AddConnection("B")

	s1, err := a.NewSeries(0, WithName("one"))
	require.NoError(t, err)
	s2, err := b.NewSeries(0, WithName("two"))
	require.NoError(t, err)
	s3, err := a.NewSeries(4, WithName("three"))
	require.NoError(t, err)

	require.Equal(t, []*Series{s1, s3, s2}, sess.AllSeries())
}

func TestSession_Clear(t *testing.T) {
	sess := NewSession()
	conn := sess.AddConnection("A")
	_, err := conn.NewSeries(0, WithName("one"))
	require.NoError(t, err)

	sess.Clear()
	require.Equal(t, 0, sess.ConnectionCount())
	require.Empty(t, sess.AllSeries())
}
