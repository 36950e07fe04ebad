package util

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter("warn", "production", &buf)
	t.Cleanup(func() { InitLoggerWithWriter("info", "test", &bytes.Buffer{}) })

	Log().Info().Msg("hidden")
	Log().Warn().Str("k", "v").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "v", entry["k"])
	assert.Equal(t, "shown", entry["message"])
}

func TestInitLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter("loud", "production", &buf)
	t.Cleanup(func() { InitLoggerWithWriter("info", "test", &bytes.Buffer{}) })

	Log().Debug().Msg("debug")
	Log().Info().Msg("info")
	assert.NotContains(t, buf.String(), `"debug"`)
	assert.Contains(t, buf.String(), `"info"`)
}
