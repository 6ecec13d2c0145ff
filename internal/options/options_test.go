package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type levelConfig struct {
	level int
	limit int
}

func withLevel(level int) Option[*levelConfig] {
	return New(func(c *levelConfig) error {
		if level < 0 {
			return errors.New("level cannot be negative")
		}
		c.level = level

		return nil
	})
}

func withLimit(limit int) Option[*levelConfig] {
	return NoError(func(c *levelConfig) {
		c.limit = limit
	})
}

func TestApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &levelConfig{}
		err := Apply(cfg, withLevel(3), withLimit(100), withLevel(5))
		require.NoError(t, err)
		require.Equal(t, 5, cfg.level)
		require.Equal(t, 100, cfg.limit)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &levelConfig{}
		err := Apply(cfg, withLimit(10), withLevel(-1), withLimit(20))
		require.Error(t, err)
		require.Contains(t, err.Error(), "negative")
		require.Equal(t, 10, cfg.limit)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &levelConfig{}
		require.NoError(t, Apply[*levelConfig](cfg, nil, withLimit(7)))
		require.Equal(t, 7, cfg.limit)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &levelConfig{level: 1}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 1, cfg.level)
	})
}
