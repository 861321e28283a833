package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger() (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewSlogLogger(slog.New(slog.NewJSONHandler(buf, nil))), buf
}

func TestSlogLogger_Info(t *testing.T) {
	log, buf := newBufferLogger()

	log.Info(context.Background(), "sign-in", "email", "a@b.com")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "sign-in", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "a@b.com", rec["email"])
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newBufferLogger()

	child := log.With("module", "auth")
	child.Error(context.Background(), "boom")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "auth", rec["module"])
	assert.Equal(t, "ERROR", rec["level"])
}
