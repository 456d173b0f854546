package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	provider, shutdown, err := Init(context.Background(), Config{
		Enabled:     false,
		ServiceName: "aptstage",
	})
	require.NoError(t, err)
	require.NotNil(t, provider)
	require.NotNil(t, provider.Tracer)
	require.NotNil(t, provider.Meter)
	require.NoError(t, shutdown(context.Background()))
}

func TestStartSpanNilProvider(t *testing.T) {
	var provider *Provider

	ctx, span := provider.StartSpan(context.Background(), "configure")
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	span.End()
}

func TestStartSpanDisabledProvider(t *testing.T) {
	provider, _, err := Init(context.Background(), Config{ServiceName: "aptstage"})
	require.NoError(t, err)

	ctx, span := provider.StartSpan(context.Background(), "deconfigure")
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	span.End()
}
