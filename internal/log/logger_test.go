// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureAttachesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "bridged", Version: "v9.9.9"})
	defer Configure(Config{})

	logger := WithComponent("jobs")
	logger.Info().Str("event", "test.emit").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bridged", entry["service"])
	assert.Equal(t, "v9.9.9", entry["version"])
	assert.Equal(t, "jobs", entry["component"])
	assert.Equal(t, "test.emit", entry["event"])
}

func TestWithContextAddsCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "bridged"})
	defer Configure(Config{})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithJobID(ctx, "job-1")
	ctx = ContextWithWorkerID(ctx, "worker-1")

	logger := WithComponentFromContext(ctx, "api")
	logger.Info().Msg("correlated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry[FieldRequestID])
	assert.Equal(t, "job-1", entry[FieldJobID])
	assert.Equal(t, "worker-1", entry[FieldWorkerID])
}

func TestWithContextWithoutFieldsReturnsSameLogger(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "bridged"})
	defer Configure(Config{})

	logger := WithComponentFromContext(context.Background(), "api")
	logger.Info().Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, hasRequestID := entry[FieldRequestID]
	assert.False(t, hasRequestID)
}
