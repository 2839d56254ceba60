package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type decodeConfig struct {
	maxChunk int
	name     string
	applied  []string
}

var errNonPositive = errors.New("must be positive")

func withMaxChunk(n int) Option[*decodeConfig] {
	return New(func(c *decodeConfig) error {
		if n <= 0 {
			return errNonPositive
		}
		c.maxChunk = n
		c.applied = append(c.applied, "maxChunk")

		return nil
	})
}

func withName(name string) Option[*decodeConfig] {
	return NoError(func(c *decodeConfig) {
		c.name = name
		c.applied = append(c.applied, "name")
	})
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &decodeConfig{}
		err := Apply(cfg, withName("eeg"), withMaxChunk(1024))

		require.NoError(t, err)
		require.Equal(t, 1024, cfg.maxChunk)
		require.Equal(t, "eeg", cfg.name)
		require.Equal(t, []string{"name", "maxChunk"}, cfg.applied)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &decodeConfig{}
		err := Apply(cfg, withMaxChunk(8), withMaxChunk(-1), withName("unreached"))

		require.ErrorIs(t, err, errNonPositive)
		require.Equal(t, 8, cfg.maxChunk)
		require.Empty(t, cfg.name)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &decodeConfig{}
		var conditional Option[*decodeConfig]
		err := Apply(cfg, conditional, withName("x"))

		require.NoError(t, err)
		require.Equal(t, "x", cfg.name)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &decodeConfig{}
		require.NoError(t, Apply(cfg))
		require.Empty(t, cfg.applied)
	})
}

func TestOption_PrimitiveTarget(t *testing.T) {
	var workers int
	opt := NoError(func(n *int) { *n = 4 })

	require.NoError(t, opt.apply(&workers))
	require.Equal(t, 4, workers)
}
