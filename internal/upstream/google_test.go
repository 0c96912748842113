package upstream_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/upstream"
	"github.com/UnknownOlympus/meridian/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleProvider_Geocode(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := upstream.NewGoogleProvider(mockClient, "US", slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	t.Run("api returns error", func(t *testing.T) {
		req := &maps.GeocodingRequest{Components: map[maps.Component]string{
			maps.ComponentPostalCode: "99999",
			maps.ComponentCountry:    "US",
		}}

		mockClient.On("Geocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.Geocode(ctx, "99999")

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("api return empty response", func(t *testing.T) {
		req := &maps.GeocodingRequest{Components: map[maps.Component]string{
			maps.ComponentPostalCode: "00000",
			maps.ComponentCountry:    "US",
		}}

		mockClient.On("Geocode", ctx, req).Return(nil, nil).Once()

		data, err := provider.Geocode(ctx, "00000")

		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
		mockClient.AssertExpectations(t)
	})

	t.Run("successfull geocoding", func(t *testing.T) {
		req := &maps.GeocodingRequest{Components: map[maps.Component]string{
			maps.ComponentPostalCode: "10001",
			maps.ComponentCountry:    "US",
		}}
		mockReponse := []maps.GeocodingResult{
			{
				FormattedAddress: "New York, NY 10001, USA",
				Geometry:         maps.AddressGeometry{Location: maps.LatLng{Lat: 40.75, Lng: -73.99}},
			},
		}

		mockClient.On("Geocode", ctx, req).Return(mockReponse, nil).Once()

		data, err := provider.Geocode(ctx, "10001")

		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"FeatureCollection","features":[{"type":"Feature",`+
			`"geometry":{"type":"Point","coordinates":[-73.99,40.75]},`+
			`"properties":{"label":"New York, NY 10001, USA","postalcode":"10001"}}]}`, string(data))
		mockClient.AssertExpectations(t)
	})

	t.Run("empty zip", func(t *testing.T) {
		_, err := provider.Geocode(ctx, "")

		require.ErrorIs(t, err, upstream.ErrEmptyZip)
	})
}
