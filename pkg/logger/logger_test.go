package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		give    string
		want    zapcore.Level
		wantErr string
	}{
		{give: "", want: zapcore.InfoLevel},
		{give: "debug", want: zapcore.DebugLevel},
		{give: "WARN", want: zapcore.WarnLevel},
		{give: "error", want: zapcore.ErrorLevel},
		{give: "loud", wantErr: `invalid log level "loud"`},
	}

	for _, tt := range tests {
		t.Run(tt.give, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.give)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObservedNamedWith(t *testing.T) {
	t.Parallel()

	lggr, logs := TestObserved(t, zapcore.InfoLevel)
	child := lggr.Named("provider").With("session", "abc")
	child.Debugw("hidden")
	child.Infow("resolved", "type", "ethereum")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "resolved", entries[0].Message)
	assert.Equal(t, "provider", entries[0].LoggerName)
	assert.Equal(t, "abc", entries[0].ContextMap()["session"])
	assert.Equal(t, "ethereum", entries[0].ContextMap()["type"])
}

func TestNop(t *testing.T) {
	t.Parallel()

	lggr := Nop()
	lggr.Errorw("ignored", "k", "v")
	assert.Empty(t, lggr.Name())
}

func TestConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lggr := newConsole(&buf, zapcore.WarnLevel, false).Named("cmd")
	lggr.Infow("hidden")
	lggr.Warnw("keyring is locked", "network", "testnet")
	require.NoError(t, lggr.Sync())

	line := buf.String()
	assert.NotContains(t, line, "hidden")
	assert.Contains(t, line, "WARN")
	assert.Contains(t, line, "cmd")
	assert.Contains(t, line, "keyring is locked")
	assert.Contains(t, line, `{"network": "testnet"}`)
	assert.NotContains(t, line, "\x1b[", "no color codes when color is off")
}
