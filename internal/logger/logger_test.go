package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFilePath(t *testing.T) {
	assert.Equal(t, "RuBox.log", FilePath(""))
	assert.Equal(t, filepath.Join("/var/log/rubox", "RuBox.log"), FilePath("/var/log/rubox"))
}

func TestNewWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	log, err := New(Options{LogPath: dir, Console: zapcore.AddSync(&buf)})
	require.NoError(t, err)

	log.Info("pass finished", zap.Int("uploads", 3))
	log.Debug("hidden at info level")
	_ = log.Sync()

	assert.Contains(t, buf.String(), "pass finished")
	assert.NotContains(t, buf.String(), "hidden at info level")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"pass finished"`)
	assert.Contains(t, string(data), `"uploads":3`)
}

func TestNewDebugLevel(t *testing.T) {
	var buf bytes.Buffer

	log, err := New(Options{Debug: true, LogPath: t.TempDir(), Console: zapcore.AddSync(&buf)})
	require.NoError(t, err)

	log.Debug("listing remote")
	_ = log.Sync()

	assert.Contains(t, buf.String(), "listing remote")
}
