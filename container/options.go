package container

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/xdf/internal/options"
)

// DefaultMaxChunkSize bounds the payload of a single chunk (1GiB).
//
// A corrupt length field would otherwise make the decoder try to allocate
// up to 2^64 bytes.
const DefaultMaxChunkSize = 1 << 30

// DecoderConfig holds the decoder settings.
type DecoderConfig struct {
	logger       *zap.Logger
	maxChunkSize uint64
}

// DecoderOption configures a Decoder.
type DecoderOption = options.Option[*DecoderConfig]

func newDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		logger:       zap.NewNop(),
		maxChunkSize: DefaultMaxChunkSize,
	}
}

// WithLogger sets the logger for non-fatal decode irregularities.
// A nil logger disables logging.
func WithLogger(logger *zap.Logger) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

// WithMaxChunkSize sets the largest chunk length the decoder accepts.
func WithMaxChunkSize(size uint64) DecoderOption {
	return options.New(func(c *DecoderConfig) error {
		if size < 2 {
			return fmt.Errorf("max chunk size must be at least 2, got %d", size)
		}
		c.maxChunkSize = size

		return nil
	})
}
