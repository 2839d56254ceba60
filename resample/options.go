package resample

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/arloliu/xdf/internal/options"
)

// Config holds the orchestrator settings.
type Config struct {
	logger      *zap.Logger
	concurrency int
	quality     Quality
}

// Option configures an Orchestrator.
type Option = options.Option[*Config]

func newConfig() *Config {
	return &Config{
		logger:      zap.NewNop(),
		concurrency: runtime.GOMAXPROCS(0),
		quality:     DefaultQuality(),
	}
}

// WithLogger sets the logger for skipped streams and per-stream timing.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

// WithConcurrency bounds the number of streams resampled in parallel.
// The default is GOMAXPROCS.
func WithConcurrency(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		c.concurrency = n

		return nil
	})
}

// WithQuality overrides DefaultQuality.
func WithQuality(q Quality) Option {
	return options.NoError(func(c *Config) {
		c.quality = q
	})
}
