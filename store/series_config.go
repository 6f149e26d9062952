package store

import (
	"fmt"

	"github.com/telemview/samplestore/errs"
	"github.com/telemview/samplestore/internal/options"
)

// Color is the display color carried alongside a series. It is pure metadata
// and never affects stored values.
type Color struct {
	R, G, B, A uint8
}

// Floats returns the color as normalized RGBA components, the form consumed
// by GPU vertex attributes.
func (c Color) Floats() [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

// seriesConfig collects the construction-time parameters of a Series.
type seriesConfig struct {
	name           string
	unit           string
	color          Color
	connectionName string
	factorA        float64
	factorB        float64
	blockSize      int
}

func newSeriesConfig() *seriesConfig {
	return &seriesConfig{
		color:     Color{R: 255, G: 255, B: 255, A: 255},
		factorA:   1,
		factorB:   1,
		blockSize: DefaultBlockSize,
	}
}

// SeriesOption represents a functional option for configuring a Series.
type SeriesOption = options.Option[*seriesConfig]

// WithName sets the descriptive name of what the samples represent.
func WithName(name string) SeriesOption {
	return options.NoError(func(c *seriesConfig) {
		c.name = name
	})
}

// WithUnit sets the descriptive name of how the samples are quantified.
func WithUnit(unit string) SeriesOption {
	return options.NoError(func(c *seriesConfig) {
		c.unit = unit
	})
}

// WithColor sets the color used when visualizing the samples.
func WithColor(color Color) SeriesOption {
	return options.NoError(func(c *seriesConfig) {
		c.color = color
	})
}

// WithConnectionName sets the name of the connection the series belongs to,
// used to disambiguate labels when several connections are active.
func WithConnectionName(name string) SeriesOption {
	return options.NoError(func(c *seriesConfig) {
		c.connectionName = name
	})
}

// WithConversionFactors sets the calibration constants: factorA unprocessed
// LSBs equal factorB engineering units. factorA must be non-zero.
func WithConversionFactors(factorA, factorB float64) SeriesOption {
	return options.New(func(c *seriesConfig) error {
		if factorA == 0 {
			return errs.ErrInvalidConversionFactor
		}
		c.factorA = factorA
		c.factorB = factorB

		return nil
	})
}

// WithBlockSize overrides the samples-per-block of the backing block store.
// Must be a power of two no smaller than MinBlockSize.
func WithBlockSize(blockSize int) SeriesOption {
	return options.New(func(c *seriesConfig) error {
		if blockSize < MinBlockSize || blockSize&(blockSize-1) != 0 {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidBlockSize, blockSize)
		}
		c.blockSize = blockSize

		return nil
	})
}
