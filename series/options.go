package series

import (
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/internal/base"
	"github.com/Spreads/Spreads-sub007/internal/options"
	"github.com/cockroachdb/errors"
)

// DefaultMaxRetries is the default number of times an optimistic read is
// retried before it fails with errs.ErrBusy.
const DefaultMaxRetries = 1 << 12

type config struct {
	maxRetries      int
	logger          base.Logger
	maxLeafSize     int
	maxNodeSize     int
	initialCapacity int
}

func defaultConfig() *config {
	return &config{
		maxRetries: DefaultMaxRetries,
		logger:     base.DefaultLogger{},
	}
}

// Option configures a Series.
type Option = options.Option[*config]

// WithMaxRetries sets how many times a read is retried while it races the
// writer. Zero means a read is attempted once.
func WithMaxRetries(n int) Option {
	return options.New(func(c *config) error {
		if n < 0 {
			return errors.Wrapf(errs.ErrInvalidOperation, "negative retry budget %d", n)
		}
		c.maxRetries = n

		return nil
	})
}

// WithLogger sets the logger that reports exhausted retry budgets. A nil
// logger discards them.
func WithLogger(logger base.Logger) Option {
	return options.NoError(func(c *config) {
		if logger == nil {
			logger = base.NoopLogger{}
		}
		c.logger = logger
	})
}

// WithTreeOptions sets the block sizes of the underlying block tree. Zero
// values keep the blocktree defaults.
func WithTreeOptions(maxLeafSize, maxNodeSize, initialCapacity int) Option {
	return options.NoError(func(c *config) {
		c.maxLeafSize = maxLeafSize
		c.maxNodeSize = maxNodeSize
		c.initialCapacity = initialCapacity
	})
}
