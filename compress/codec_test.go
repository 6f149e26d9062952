package compress

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telemview/samplestore/format"
)

// ==============================================================================
// Helper Functions
// ==============================================================================

// sampleRun builds a payload shaped like real snapshot data: a slowly varying
// float64 stream serialized to little-endian bytes.
func sampleRun(n int) []byte {
	b := make([]byte, 0, n*8)
	for i := range n {
		v := math.Sin(float64(i)*0.01) * 100
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}

	return b
}

// repetitiveRun builds a payload from a short repeating cycle of samples,
// the shape a steady-state telemetry stream takes.
func repetitiveRun(n int) []byte {
	b := make([]byte, 0, n*8)
	for i := range n {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(float64(i%8)))
	}

	return b
}

func randomRun(n int) []byte {
	rng := rand.New(rand.NewSource(42))
	b := make([]byte, n)
	rng.Read(b)

	return b
}

func allCodecs(t *testing.T) map[string]Codec {
	t.Helper()

	codecs := make(map[string]Codec)
	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)
		codecs[ct.String()] = codec
	}

	return codecs
}

// ==============================================================================
// Codec Registry
// ==============================================================================

func TestGetCodec(t *testing.T) {
	t.Run("AllBuiltins", func(t *testing.T) {
		require.Len(t, allCodecs(t), 4)
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := GetCodec(format.CompressionType(0x7F))
		require.Error(t, err)
	})
}

// ==============================================================================
// Round Trips
// ==============================================================================

func TestCodec_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"Empty":          {},
		"Tiny":           []byte("x"),
		"SampleRun":      sampleRun(10_000),
		"Incompressible": randomRun(64 * 1024),
	}

	for codecName, codec := range allCodecs(t) {
		for payloadName, payload := range payloads {
			t.Run(codecName+"/"+payloadName, func(t *testing.T) {
				compressed, err := codec.Compress(payload)
				require.NoError(t, err)

				restored, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.True(t, bytes.Equal(payload, restored),
					"payload of %d bytes did not survive the round trip", len(payload))
			})
		}
	}
}

func TestCodec_CompressesSampleData(t *testing.T) {
	// Repetitive telemetry streams must actually shrink under the real
	// codecs; this guards against a codec accidentally wired as a no-op.
	payload := repetitiveRun(50_000)

	for _, ct := range []format.CompressionType{
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(payload))
		})
	}
}

func TestCodec_DecompressGarbage(t *testing.T) {
	garbage := randomRun(1024)

	for _, ct := range []format.CompressionType{
		format.CompressionZstd,
		format.CompressionS2,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			_, err = codec.Decompress(garbage)
			require.Error(t, err)
		})
	}
}

func TestNoOpCompressor(t *testing.T) {
	codec := NewNoOpCompressor()
	payload := sampleRun(100)

	compressed, err := codec.Compress(payload)
	require.NoError(t, err)
	require.Equal(t, payload, compressed)

	restored, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, payload, restored)
}
