package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/numguess/internal/logger"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logger.Level
	}{
		{"debug", logger.DEBUG},
		{"INFO", logger.INFO},
		{"warning", logger.WARN},
		{"WARN", logger.WARN},
		{"error", logger.ERROR},
		{"nonsense", logger.INFO},
		{"", logger.INFO},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.ParseLevel(tt.in))
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSON(true), logger.WithLevel(logger.WARN))

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown %d", 1)
	log.Error("also shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "shown 1", lines[0]["message"])
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "error", lines[1]["level"])
}

func TestLogger_PrefixAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSON(true), logger.WithLevel(logger.DEBUG))

	log.WithPrefix("session_repo").WithPrefix("game_service").
		WithField("user_id", "u-1").
		WithFields(map[string]any{"attempt": 3}).
		Info("guess recorded")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "game_service", lines[0]["component"])
	assert.Equal(t, "u-1", lines[0]["user_id"])
	assert.EqualValues(t, 3, lines[0]["attempt"])
}

func TestLogger_MessageWithoutArgsKeepsPercent(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSON(true))

	log.Info("100% done")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "100% done", lines[0]["message"])
}

func TestContextPropagation(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSON(true)).WithField("request_id", "abc")

	ctx := logger.NewContext(context.Background(), log)
	logger.FromContext(ctx).Info("from context")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "abc", lines[0]["request_id"])

	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
