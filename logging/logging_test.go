package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"info":     zerolog.InfoLevel,
		"warn":     zerolog.WarnLevel,
		"":         zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(LevelInfo, FormatJSON, &buf)
		require.NoError(t, err)

		log.Debug().Msg("hidden")
		log.Info().Str("file", "a.mb").Msg("compiling")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "a.mb", entry["file"])
		assert.Equal(t, "compiling", entry["message"])
	})

	t.Run("Console", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(LevelWarn, FormatConsole, &buf)
		require.NoError(t, err)

		log.Info().Msg("hidden")
		log.Warn().Str("module", "x.mb").Msg("module missing")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "module missing")
		assert.Contains(t, out, "module=x.mb")
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := New("loud", FormatJSON, &bytes.Buffer{})
		assert.Error(t, err)
		_, err = New(LevelInfo, "xml", &bytes.Buffer{})
		assert.Error(t, err)
	})
}
