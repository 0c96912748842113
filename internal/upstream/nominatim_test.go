package upstream_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func TestNominatimProvider_Geocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				// Verify request parameters
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "02108", req.URL.Query().Get("postalcode"))
				assert.Equal(t, "us", req.URL.Query().Get("countrycodes"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Equal(
					t,
					"Meridian-Routing-Proxy/1.0 (https://github.com/UnknownOlympus/meridian)",
					req.Header.Get("User-Agent"),
				)

				// Return mock response
				return jsonResponse(http.StatusOK,
					`[{"lat":"42.3576","lon":"-71.0637","display_name":"Boston, Massachusetts, 02108"}]`), nil
			},
		}

		provider := upstream.NewNominatimProviderWithClient(mockClient, "US", logger)
		data, err := provider.Geocode(ctx, "02108")

		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"FeatureCollection","features":[{"type":"Feature",`+
			`"geometry":{"type":"Point","coordinates":[-71.0637,42.3576]},`+
			`"properties":{"label":"Boston, Massachusetts, 02108","postalcode":"02108"}}]}`, string(data))
	})

	t.Run("empty response from API", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := upstream.NewNominatimProviderWithClient(mockClient, "US", logger)
		data, err := provider.Geocode(ctx, "00000")

		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `rate limited`), nil
			},
		}

		provider := upstream.NewNominatimProviderWithClient(mockClient, "US", logger)
		data, err := provider.Geocode(ctx, "02108")

		require.Error(t, err)
		require.Nil(t, data)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `invalid json`), nil
			},
		}

		provider := upstream.NewNominatimProviderWithClient(mockClient, "US", logger)
		data, err := provider.Geocode(ctx, "02108")

		require.Error(t, err)
		require.Nil(t, data)
		assert.Contains(t, err.Error(), "failed to decode nominatim response")
	})

	t.Run("invalid latitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"invalid","lon":"-71.0637"}]`), nil
			},
		}

		provider := upstream.NewNominatimProviderWithClient(mockClient, "US", logger)
		data, err := provider.Geocode(ctx, "02108")

		require.Error(t, err)
		require.Nil(t, data)
		require.ErrorIs(t, err, upstream.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid latitude")
	})

	t.Run("invalid longitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"42.3576","lon":"invalid"}]`), nil
			},
		}

		provider := upstream.NewNominatimProviderWithClient(mockClient, "US", logger)
		data, err := provider.Geocode(ctx, "02108")

		require.Error(t, err)
		require.Nil(t, data)
		require.ErrorIs(t, err, upstream.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid longitude")
	})

	t.Run("HTTP client returns error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := upstream.NewNominatimProviderWithClient(mockClient, "US", logger)
		data, err := provider.Geocode(ctx, "02108")

		require.Error(t, err)
		require.Nil(t, data)
		assert.Contains(t, err.Error(), "failed to execute geocoding request")
	})

	t.Run("context cancellation", func(t *testing.T) {
		newCtx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, req.Context().Err()
			},
		}

		provider := upstream.NewNominatimProviderWithClient(mockClient, "US", logger)
		data, err := provider.Geocode(newCtx, "02108")

		require.ErrorIs(t, err, context.Canceled)
		require.Nil(t, data)
	})
}

func TestNewNominatimProvider(t *testing.T) {
	provider := upstream.NewNominatimProvider("US", 0, slog.Default())

	require.NotNil(t, provider)
}
