package sqllog

import (
	"fmt"
	"log/slog"

	"github.com/sqllog/sqllog-go/internal/encoding"
	"github.com/sqllog/sqllog-go/internal/segment"
)

// Option configures Open and ParseFile using the functional options
// pattern.
type Option func(*config)

// config holds internal configuration for reading and parsing.
type config struct {
	encoding    string
	bufferSize  int
	parallelism int
	logger      *slog.Logger
}

// defaultConfig returns a config with sensible defaults.
func defaultConfig() *config {
	return &config{
		bufferSize:  segment.DefaultBufferSize,
		parallelism: 1,
	}
}

// applyOptions applies functional options to a config.
func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// validate checks for invalid option combinations.
func (c *config) validate() error {
	if c.bufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", c.bufferSize)
	}
	if c.parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.parallelism)
	}
	if _, err := encoding.Resolve(c.encoding); err != nil {
		return err
	}
	return nil
}

// WithEncoding sets the source encoding of the log file. Supported
// values are "utf-8" (default), "gbk" and "gb18030". Legacy encodings
// are converted to UTF-8 before parsing; undecodable bytes become
// U+FFFD.
func WithEncoding(name string) Option {
	return func(c *config) {
		c.encoding = name
	}
}

// WithBufferSize sets the read buffer size in bytes.
// Default: 64 KiB.
func WithBufferSize(n int) Option {
	return func(c *config) {
		c.bufferSize = n
	}
}

// WithParallelism sets how many goroutines ParseFile uses for the
// field-parsing stage. Segmentation is inherently sequential and record
// order in the result is always preserved. Open ignores this option.
// Default: 1.
func WithParallelism(n int) Option {
	return func(c *config) {
		c.parallelism = n
	}
}

// WithLogger sets a custom logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
