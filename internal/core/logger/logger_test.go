package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuildWritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := Build(Options{Level: "info", JSON: true, Rotate: Rotate{Filename: file, MaxSizeMB: 1}})
	l.Info("recipe created", zap.String("recipe_id", "r-1"))
	l.Debug("dropped by level")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"recipe created"`)
	assert.Contains(t, string(b), `"recipe_id":"r-1"`)
	assert.NotContains(t, string(b), "dropped by level")
}

func TestBuildFallsBackToInfo(t *testing.T) {
	l, cleanup := Build(Options{Level: "loud"})
	defer cleanup()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestStdLogger(t *testing.T) {
	l, cleanup := New("debug", true)
	defer cleanup()
	std := StdLogger(l, zapcore.WarnLevel)
	require.NotNil(t, std)
	std.Println("slow sql")
}
