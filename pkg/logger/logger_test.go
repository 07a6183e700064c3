package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-traslados/pkg/logger"
)

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", Service: "api", Output: &buf})

	c := l.Component("transfer")
	c.Info().Str("transfer_id", "t-1").Msg("traslado aprobado")
	c.Debug().Msg("no se escribe")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "api", line["service"])
	assert.Equal(t, "transfer", line["component"])
	assert.Equal(t, "t-1", line["transfer_id"])
	assert.Equal(t, "info", line["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("ruido"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
}
