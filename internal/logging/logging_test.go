package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, time.UTC)
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	l.Info("server_started", map[string]any{"addr": "0.0.0.0:5000"})
	l.Error("shutdown_failed", errors.New("deadline exceeded"), nil)

	dec := json.NewDecoder(&buf)

	var first map[string]any
	require.NoError(t, dec.Decode(&first))
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "server_started", first["msg"])
	assert.Equal(t, "0.0.0.0:5000", first["addr"])
	assert.Equal(t, "2024-01-02T03:04:05Z", first["ts"])

	var second map[string]any
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "error", second["level"])
	assert.Equal(t, "deadline exceeded", second["error"])
}

func TestReservedFieldsWin(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)

	l.Info("real", map[string]any{"msg": "spoofed", "level": "debug"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "real", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}
