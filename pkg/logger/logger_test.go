package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.WithField("user_id", "u1").Info("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "info", line["severity"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Contains(t, line, "timestamp")
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "text", Output: &buf})

	log.Info("dropped")
	assert.Empty(t, buf.String())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	log := New(Config{Level: "chatty"})
	assert.Equal(t, logrus.InfoLevel, log.Level)
}

func TestContextRoundTrip(t *testing.T) {
	log := New(Config{Level: "debug"})
	entry := log.WithField("request_id", "abc")

	ctx := WithContext(context.Background(), entry)
	assert.Same(t, entry, FromContext(ctx))
}

func TestFromContext_Fallback(t *testing.T) {
	entry := FromContext(context.Background())
	require.NotNil(t, entry)
	assert.Same(t, logrus.StandardLogger(), entry.Logger)
}
