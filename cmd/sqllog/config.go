package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// maxConfigSize caps config files at 1 MiB; a defaults file has no
// business being bigger.
const maxConfigSize = 1 << 20

// cliConfig holds file-based defaults for all subcommands. Flags given
// on the command line win over these values.
type cliConfig struct {
	// Encoding is the source encoding of log files ("utf-8", "gbk",
	// "gb18030").
	Encoding string `yaml:"encoding"`

	// BufferSize is the read buffer size in bytes (0 = library default).
	BufferSize int `yaml:"buffer_size"`

	// Parallel is the default worker count for the parse stage
	// (0 = sequential).
	Parallel int `yaml:"parallel"`

	// BatchSize is the default SQLite insert batch size
	// (0 = library default).
	BatchSize int `yaml:"batch_size"`
}

func defaultCLIConfig() *cliConfig {
	return &cliConfig{}
}

// loadCLIConfig reads and validates a YAML config file. Unknown keys are
// rejected so typos surface instead of silently doing nothing.
func loadCLIConfig(path string) (*cliConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(io.LimitReader(f, maxConfigSize))
	dec.KnownFields(true)

	c := defaultCLIConfig()
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return c, nil
}

func (c *cliConfig) validate() error {
	if c.BufferSize < 0 {
		return fmt.Errorf("buffer_size must be non-negative, got %d", c.BufferSize)
	}
	if c.Parallel < 0 {
		return fmt.Errorf("parallel must be non-negative, got %d", c.Parallel)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must be non-negative, got %d", c.BatchSize)
	}
	return nil
}
