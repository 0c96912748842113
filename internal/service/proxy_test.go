package service_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/UnknownOlympus/meridian/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*service.ProxyService, *mocks.Geocoder, *mocks.Router, *metrics.Metrics) {
	t.Helper()

	mockGeocoder := mocks.NewGeocoder(t)
	mockRouter := mocks.NewRouter(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	return service.NewProxyService(logger, mockGeocoder, mockRouter, "ors", appMetrics), mockGeocoder, mockRouter, appMetrics
}

func TestProxyService_Geocode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	t.Run("successful geocoding relays payload", func(t *testing.T) {
		svc, mockGeocoder, _, appMetrics := newTestService(t)
		payload := json.RawMessage(`{"type":"FeatureCollection","features":[{"type":"Feature",` +
			`"geometry":{"type":"Point","coordinates":[-73.99,40.75]}}]}`)

		mockGeocoder.On("Geocode", ctx, "10001").Return(payload, nil).Once()

		data, err := svc.Geocode(ctx, " 10001 ")

		require.NoError(t, err)
		assert.JSONEq(t, string(payload), string(data))
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.UpstreamCalls.WithLabelValues("geocode", "success")), 0)
		assert.InDelta(t, 0, testutil.ToFloat64(appMetrics.InFlight), 0)
	})

	t.Run("missing zip", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		data, err := svc.Geocode(ctx, "   ")

		require.ErrorIs(t, err, service.ErrMissingZip)
		assert.True(t, service.IsValidation(err))
		assert.Nil(t, data)
	})

	t.Run("zero features", func(t *testing.T) {
		svc, mockGeocoder, _, _ := newTestService(t)

		mockGeocoder.On("Geocode", ctx, "00000").
			Return(json.RawMessage(`{"type":"FeatureCollection","features":[]}`), nil).Once()

		data, err := svc.Geocode(ctx, "00000")

		require.ErrorIs(t, err, service.ErrZipNotFound)
		assert.EqualError(t, err, "ZIP code not found: 00000")
		assert.False(t, service.IsValidation(err))
		assert.Nil(t, data)
	})

	t.Run("upstream error", func(t *testing.T) {
		svc, mockGeocoder, _, appMetrics := newTestService(t)

		mockGeocoder.On("Geocode", ctx, "10001").Return(nil, assert.AnError).Once()

		_, err := svc.Geocode(ctx, "10001")

		require.ErrorIs(t, err, assert.AnError)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.UpstreamErrors.WithLabelValues("geocode")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.UpstreamCalls.WithLabelValues("geocode", "failure")), 0)
	})
}

func TestProxyService_Route(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	from := models.NewGeoPoint(-73.99, 40.75)
	to := models.NewGeoPoint(-71.06, 42.36)

	t.Run("successful routing", func(t *testing.T) {
		svc, _, mockRouter, _ := newTestService(t)
		payload := json.RawMessage(`{"type":"FeatureCollection","features":[]}`)

		mockRouter.On("Route", ctx, from, to).Return(payload, nil).Once()

		data, err := svc.Route(ctx, &from, &to)

		require.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("missing to", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.Route(ctx, &from, nil)

		require.ErrorIs(t, err, service.ErrMissingEndpoints)
		assert.EqualError(t, err, "from/to required")
	})

	t.Run("missing from", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.Route(ctx, nil, &to)

		require.ErrorIs(t, err, service.ErrMissingEndpoints)
	})

	t.Run("upstream error", func(t *testing.T) {
		svc, _, mockRouter, _ := newTestService(t)

		mockRouter.On("Route", ctx, mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

		_, err := svc.Route(ctx, &from, &to)

		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestProxyService_Export(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	bbox := models.BoundingBox{
		SouthWest: models.NewGeoPoint(8.681495, 49.41461),
		NorthEast: models.NewGeoPoint(8.686507, 49.41943),
	}

	t.Run("successful export", func(t *testing.T) {
		svc, _, mockRouter, appMetrics := newTestService(t)
		payload := json.RawMessage(`{"nodes":[]}`)

		mockRouter.On("Export", ctx, bbox).Return(payload, nil).Once()

		data, err := svc.Export(ctx, &bbox)

		require.NoError(t, err)
		assert.Equal(t, payload, data)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.UpstreamCalls.WithLabelValues("export", "success")), 0)
	})

	t.Run("missing bbox", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.Export(ctx, nil)

		require.ErrorIs(t, err, service.ErrMissingBBox)
		assert.True(t, service.IsValidation(err))
	})
}
