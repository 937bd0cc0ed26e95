package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	assert.False(t, newLogger(false, "").Core().Enabled(zap.ErrorLevel))

	file := filepath.Join(t.TempDir(), "richacme.log")
	log := newLogger(false, file)
	log.Debug("hidden")
	log.Info("loaded", zap.Int("paragraphs", 3))
	require.NoError(t, log.Sync())

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(got), `"msg":"loaded"`)
	assert.Contains(t, string(got), `"paragraphs":3`)
	assert.NotContains(t, string(got), "hidden")
}

func TestLoadEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, loadEnv(), "a missing file is fine")

	require.NoError(t, os.Mkdir(filepath.Join(home, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "lib", "richacme.env"), []byte("RICHACME_TEST_WORDS=/usr/share/dict/words\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("RICHACME_TEST_WORDS") })

	require.NoError(t, loadEnv())
	assert.Equal(t, "/usr/share/dict/words", os.Getenv("RICHACME_TEST_WORDS"))
}
