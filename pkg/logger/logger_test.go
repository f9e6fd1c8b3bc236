package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_AddsServiceField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Service: "order-service", Level: "info", Output: &buf})

	log.Debug().Msg("hidden")
	log.Info().Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order-service", entry["service"])
	assert.Equal(t, "visible", entry["message"])
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(prev)
	})
	Reset()

	var first, second bytes.Buffer
	Init(Options{Service: "first", Output: &first})
	Init(Options{Service: "second", Output: &second})

	l := Get()
	l.Info().Msg("hello")
	assert.Contains(t, first.String(), `"service":"first"`)
	assert.Empty(t, second.String())
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	assert.Panics(t, func() { Get() })
}
