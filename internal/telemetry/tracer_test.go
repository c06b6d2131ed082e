// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, p.Shutdown(context.Background()))

	tr := Tracer("test")
	_, span := tr.Start(context.Background(), "op")
	assert.False(t, span.SpanContext().IsValid(), "noop spans carry no context")
	span.End()
}

func TestUnsupportedProtocol(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:  true,
		Protocol: "carrier-pigeon",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}
