package iologger_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gnbundle/internal/iologger"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFile(t *testing.T) {
	dir := t.TempDir()
	defer slog.SetDefault(slog.Default())
	cfg := config.LogConfig{Format: "json", Level: "debug", Destination: "file"}

	require.NoError(t, iologger.Init(dir, cfg, false))
	slog.Debug("first")
	require.NoError(t, iologger.Init(dir, cfg, true))
	slog.Info("second")

	data, err := os.ReadFile(filepath.Join(dir, iologger.LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"first"`)
	assert.Contains(t, string(data), `"msg":"second"`)

	require.NoError(t, iologger.Init(dir, cfg, false))
	data, err = os.ReadFile(filepath.Join(dir, iologger.LogFile))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestInitBadDir(t *testing.T) {
	cfg := config.LogConfig{Destination: "file"}
	err := iologger.Init(filepath.Join(t.TempDir(), "missing"), cfg, false)
	assert.Error(t, err)
}
