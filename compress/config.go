package compress

import (
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/format"
	"github.com/Spreads/Spreads-sub007/internal/options"
	"github.com/cockroachdb/errors"
)

// Defaults used by DefaultConfig.
const (
	DefaultZlibLevel        = 5
	DefaultLZ4Level         = 0
	DefaultZstdLevel        = 1
	DefaultCompressionLimit = 1024

	MaxZstdLevel = 22
)

// Config carries the compression settings threaded through Compress,
// CompressWithHeader and the serialization codec. A nil *Config means
// DefaultConfig.
type Config struct {
	// ZlibLevel is the flate level, MinZlibLevel..MaxZlibLevel.
	ZlibLevel int
	// LZ4Level is 0 for the fast compressor or 1..MaxLZ4Level for HC.
	LZ4Level int
	// ZstdLevel is the zstd command line level, 1..MaxZstdLevel.
	ZstdLevel int
	// CompressionLimit is the payload size below which frames are stored raw.
	CompressionLimit int
	// Shuffle enables byte shuffling of fixed-size element arrays before
	// compression.
	Shuffle bool
	// Metrics receives compression counters. Optional.
	Metrics *Metrics
}

// Option configures a Config.
type Option = options.Option[*Config]

// DefaultConfig returns a new Config with the default levels and limit.
func DefaultConfig() *Config {
	return &Config{
		ZlibLevel:        DefaultZlibLevel,
		LZ4Level:         DefaultLZ4Level,
		ZstdLevel:        DefaultZstdLevel,
		CompressionLimit: DefaultCompressionLimit,
	}
}

// NewConfig returns DefaultConfig with opts applied.
//
// Example:
//
//	cfg, err := compress.NewConfig(
//	    compress.WithZstdLevel(9),
//	    compress.WithCompressionLimit(4096),
//	)
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Level returns the configured level for method.
func (c *Config) Level(method format.CompressionMethod) int {
	switch method {
	case format.CompressionZlib:
		return c.ZlibLevel
	case format.CompressionLZ4:
		return c.LZ4Level
	case format.CompressionZstd:
		return c.ZstdLevel
	default:
		return 0
	}
}

func orDefault(cfg *Config) *Config {
	if cfg == nil {
		return defaultConfig
	}

	return cfg
}

var defaultConfig = DefaultConfig()

// WithZlibLevel sets the zlib level.
func WithZlibLevel(level int) Option {
	return options.New(func(c *Config) error {
		if level < MinZlibLevel || level > MaxZlibLevel {
			return errors.Wrapf(errs.ErrNotSupported, "zlib level %d", level)
		}
		c.ZlibLevel = level

		return nil
	})
}

// WithLZ4Level sets the LZ4 level.
func WithLZ4Level(level int) Option {
	return options.New(func(c *Config) error {
		if level < 0 || level > MaxLZ4Level {
			return errors.Wrapf(errs.ErrNotSupported, "lz4 level %d", level)
		}
		c.LZ4Level = level

		return nil
	})
}

// WithZstdLevel sets the zstd level.
func WithZstdLevel(level int) Option {
	return options.New(func(c *Config) error {
		if level < 1 || level > MaxZstdLevel {
			return errors.Wrapf(errs.ErrNotSupported, "zstd level %d", level)
		}
		c.ZstdLevel = level

		return nil
	})
}

// WithCompressionLimit sets the payload size below which frames are stored raw.
func WithCompressionLimit(limit int) Option {
	return options.New(func(c *Config) error {
		if limit < 0 {
			return errors.Wrapf(errs.ErrInvalidLength, "compression limit %d", limit)
		}
		c.CompressionLimit = limit

		return nil
	})
}

// WithShuffle enables or disables byte shuffling of fixed-size element arrays.
func WithShuffle(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.Shuffle = enabled
	})
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return options.NoError(func(c *Config) {
		c.Metrics = m
	})
}
