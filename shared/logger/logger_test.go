package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.InfoLevel, parseLevel("").Level())
	assert.Equal(t, zap.DebugLevel, parseLevel("DEBUG").Level())
	assert.Equal(t, zap.InfoLevel, parseLevel("verbose").Level())
}

func TestNormalizeEncoding(t *testing.T) {
	assert.Equal(t, "console", normalizeEncoding("Console"))
	assert.Equal(t, "json", normalizeEncoding("xml"))
	assert.Equal(t, "json", normalizeEncoding(""))
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Config{Level: "warn", OutputPath: path})
	require.NoError(t, err)
	defer log.Sync() //nolint:errcheck

	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))
}
