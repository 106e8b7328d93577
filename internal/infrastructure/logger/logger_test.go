package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dateideas/core/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		cfg          config.LoggerConfig
		debugEnabled bool
	}{
		{
			name:         "json info",
			cfg:          config.LoggerConfig{Level: "info", Format: "json", Output: "stdout"},
			debugEnabled: false,
		},
		{
			name:         "console debug",
			cfg:          config.LoggerConfig{Level: "debug", Format: "console", Output: "stdout"},
			debugEnabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Equal(t, tt.debugEnabled, l.Desugar().Core().Enabled(zapcore.DebugLevel))
			assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json", Output: "stdout"})
	assert.Error(t, err)
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(config.LoggerConfig{Level: "info", Format: "json", Output: "file", Filename: path})
	require.NoError(t, err)

	l.WithComponent("test").Infow("hello", "k", "v")
	l.LogSecurityEvent("failed_login", "127.0.0.1", map[string]interface{}{"path": "/login"})
	l.WithError(errors.New("boom")).LogStorageOperation("update", "date_ideas.json", 1.5, errors.New("boom"))
	_ = l.Close()

	assert.FileExists(t, path)
}

func TestHelpersReportCallerSite(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core, zap.AddCaller()).Sugar()}

	l.LogSecurityEvent("failed_login", "127.0.0.1", map[string]interface{}{"path": "/login"})
	l.LogStorageOperation("download", "date_ideas.json", 2, nil)
	l.LogStorageOperation("update", "date_ideas.json", 2, errors.New("boom"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	for _, entry := range entries {
		require.True(t, entry.Caller.Defined)
		assert.Equal(t, "logger_test.go", filepath.Base(entry.Caller.File), entry.Message)
	}

	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "failed_login", entries[0].ContextMap()["security_event"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestWithRequestIDAndError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.WithRequestID("req-1").WithError(errors.New("boom")).Errorw("Request failed")

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "boom", fields["error"])
}
