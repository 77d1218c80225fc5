package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqllog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCLIConfig(t *testing.T) {
	t.Parallel()

	c, err := loadCLIConfig(writeConfig(t, `
encoding: gbk
buffer_size: 131072
parallel: 4
batch_size: 5000
`))
	require.NoError(t, err)
	assert.Equal(t, "gbk", c.Encoding)
	assert.Equal(t, 131072, c.BufferSize)
	assert.Equal(t, 4, c.Parallel)
	assert.Equal(t, 5000, c.BatchSize)
}

func TestLoadCLIConfigEmpty(t *testing.T) {
	t.Parallel()

	c, err := loadCLIConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, defaultCLIConfig(), c)
}

func TestLoadCLIConfigUnknownKey(t *testing.T) {
	t.Parallel()

	_, err := loadCLIConfig(writeConfig(t, "encodng: gbk\n"))
	assert.Error(t, err, "typos must not pass silently")
}

func TestLoadCLIConfigInvalidValues(t *testing.T) {
	t.Parallel()

	_, err := loadCLIConfig(writeConfig(t, "buffer_size: -1\n"))
	assert.Error(t, err)
	_, err = loadCLIConfig(writeConfig(t, "parallel: -2\n"))
	assert.Error(t, err)
}

func TestLoadCLIConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := loadCLIConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
