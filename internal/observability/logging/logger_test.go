package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJSONLoggerToWritesServiceAndEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, "tutor-api", "info")

	logger.Info("api_listening", "addr", ":10000")
	logger.Debug("hidden_at_info")

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	require.Equal(t, "tutor-api", record["service"])
	require.Equal(t, "api_listening", record["event"])
	require.Equal(t, ":10000", record["addr"])
	require.NotContains(t, record, "msg")
	require.NotContains(t, buf.String(), "hidden_at_info")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		require.Equal(t, want, ParseLevel(input), "level %q", input)
	}
}
