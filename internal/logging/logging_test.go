package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{"": zapcore.InfoLevel, "debug": zapcore.DebugLevel, "WARN": zapcore.WarnLevel, "error": zapcore.ErrorLevel} {
		got, err := parseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cardscan.log")
	log, err := New(Options{Level: "debug", File: p})
	require.NoError(t, err)
	log.Debug("hello", zap.String("k", "v"))
	_ = log.Sync()

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
	assert.Contains(t, string(b), `"k":"v"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}
