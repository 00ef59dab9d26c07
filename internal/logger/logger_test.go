package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rumahkopi/api/internal/config"
	"github.com/rumahkopi/api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")

	l, err := logger.New(config.LoggingConfig{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)

	l.WithComponent("orders").Info("dropped")
	l.WithComponent("orders").Warn("kept")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"message":"kept"`)
	assert.Contains(t, out, `"component":"orders"`)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestGlobal(t *testing.T) {
	assert.NotNil(t, logger.Global())

	nop := logger.Nop()
	logger.SetGlobal(nop)
	t.Cleanup(func() { logger.SetGlobal(nil) })

	assert.Same(t, nop, logger.Global())
}
