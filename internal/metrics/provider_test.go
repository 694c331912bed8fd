package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Run("Success_CreateProviderWithNamespace", func(t *testing.T) {
		provider, err := NewProvider("test_app")

		require.NoError(t, err)
		assert.NotNil(t, provider.MeterProvider())
		assert.NotNil(t, provider.exporter)
		assert.NotNil(t, provider.registry)
	})

	t.Run("Success_CreateProviderWithEmptyNamespace", func(t *testing.T) {
		provider, err := NewProvider("")

		require.NoError(t, err)
		assert.NotContains(t, scrape(t, provider), `service_name="test_app"`)
	})
}

func TestProvider_Handler(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	output := scrape(t, provider)

	assert.Contains(t, output, "go_goroutines")
	assert.Contains(t, output, "go_build_info")
	assertMetricLine(t, output, "target_info", `service_name="test_app"`, "1")
}

func TestProvider_Shutdown(t *testing.T) {
	t.Run("Success_ShutdownProvider", func(t *testing.T) {
		provider, err := NewProvider("test_app")
		require.NoError(t, err)

		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	t.Run("Success_ShutdownZeroProvider", func(t *testing.T) {
		assert.NoError(t, (&Provider{}).Shutdown(context.Background()))
	})
}
