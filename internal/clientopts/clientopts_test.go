package clientopts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/plainspeak/internal/config"
)

func TestCompletionOptions_UnconfiguredEndpoint(t *testing.T) {
	opts, err := completionOptions(config.NewEndpoint())
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestCompletionOptions_Providers(t *testing.T) {
	for _, name := range []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini} {
		t.Run(name, func(t *testing.T) {
			endpoint := config.NewEndpointWithOptions(
				config.WithProvider(name),
				config.WithAPIKey("test-key"),
			)
			opts, err := completionOptions(endpoint)
			require.NoError(t, err)
			assert.Len(t, opts, 2)
		})
	}
}

func TestCompletionOptions_UnknownProvider(t *testing.T) {
	endpoint := config.NewEndpointWithOptions(
		config.WithProvider("mystery"),
		config.WithAPIKey("test-key"),
	)
	_, err := completionOptions(endpoint)
	assert.ErrorContains(t, err, "mystery")
}

func TestOptions_WrapsCompletionError(t *testing.T) {
	cfg := config.NewAppConfigWithOptions(config.WithCompletionEndpoint(
		config.NewEndpointWithOptions(config.WithProvider("mystery"), config.WithAPIKey("k")),
	))
	_, err := Options(cfg)
	assert.ErrorContains(t, err, "completion config")
}

func TestOptions_Defaults(t *testing.T) {
	opts, err := Options(config.NewAppConfig())
	require.NoError(t, err)
	// cache URL, purge interval and the three OCR options
	assert.Len(t, opts, 5)
}

func TestOCROptions_GeminiOnlyWithKey(t *testing.T) {
	base := config.NewOCRConfig()
	assert.Len(t, ocrOptions(base), 3)
	assert.Len(t, ocrOptions(base.WithAPIKey("vision-key")), 4)
}

func TestRateLimiter(t *testing.T) {
	limiter, err := RateLimiter(config.NewRateLimitConfig().WithEnabled(false))
	require.NoError(t, err)
	assert.Nil(t, limiter)

	limiter, err = RateLimiter(config.NewRateLimitConfig().WithEnabled(true).WithRequests(1).WithWindow(time.Minute))
	require.NoError(t, err)
	require.NotNil(t, limiter)
	assert.True(t, limiter.Allow("a").Allowed)
	assert.False(t, limiter.Allow("a").Allowed)
}
