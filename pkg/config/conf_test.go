package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	dir := t.TempDir()

	c1, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c1)
	assert.Equal(t, Default(), c1)

	c1.Port = 9090
	c1.History = false
	c1.ModelPath = "/opt/model.json"

	err = Save(dir, c1)
	require.NoError(t, err)

	c2, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestReadOrCreate_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "app")
	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, PortDefault, c.Port)
	_, err = os.Stat(filepath.Join(dir, configFileName))
	assert.NoError(t, err)
}

func TestReadOrCreate_FillsMissingValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("history: false\nport: 0\n"), fileMode))

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.False(t, c.History)
	assert.Equal(t, PortDefault, c.Port)
	assert.Equal(t, ModelPathDefault, c.ModelPath)
	assert.Equal(t, LogLevelDefault, c.LogLevel)
	assert.Equal(t, BatchConcurrencyDefault, c.BatchConcurrency)
}

func TestReadOrCreate_Invalid(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("port: [nope"), fileMode))
	_, err = ReadOrCreate(dir)
	assert.Error(t, err)
}

func TestSave_Invalid(t *testing.T) {
	assert.Error(t, Save("", Default()))
	assert.Error(t, Save(t.TempDir(), nil))
}

func TestGetOrCreateHomeDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, created, err := GetOrCreateHomeDir("dropout")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ".dropout", filepath.Base(dir))

	_, created, err = GetOrCreateHomeDir(".dropout")
	require.NoError(t, err)
	assert.False(t, created)

	_, _, err = GetOrCreateHomeDir("")
	assert.Error(t, err)
}
