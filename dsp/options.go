package dsp

import (
	"fmt"

	"github.com/arloliu/xdf/internal/options"
)

// DefaultMaxFactor bounds the interpolation and decimation factors.
const DefaultMaxFactor = 1024

// Config holds the factory settings.
type Config struct {
	maxFactor int
}

// Option configures a Factory.
type Option = options.Option[*Config]

// WithMaxFactor sets the largest L or M the factory accepts.
//
// Filter length grows linearly with max(L, M), so this also bounds the
// memory of one resampler.
func WithMaxFactor(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("max factor must be positive, got %d", n)
		}
		c.maxFactor = n

		return nil
	})
}
