package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	res := execute(t, dir, "", "--log-level", "debug", "init")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, path+"\n", res.stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# molang ")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, map[string]any{"log-level": "debug"}, doc)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestInit_Exists(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "log-level: error\n")

	res := execute(t, dir, "", "init")
	require.ErrorIs(t, res.err, ErrWriteConfig)
	assert.ErrorIs(t, res.err, ErrFileExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log-level: error\n", string(data), "existing file modified")

	res = execute(t, dir, "", "init", "--force")
	require.NoError(t, res.err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "log-level: warn")
}
