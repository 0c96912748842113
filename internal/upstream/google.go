package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It resolves ZIP codes through
// component filtering on postal code and country.
type GoogleProvider struct {
	client  GoogleAPIClient // client is the Google Maps API client
	country string          // country restricts the lookup
	log     *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given client, country and logger.
func NewGoogleProvider(client GoogleAPIClient, country string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, country: country, log: log}
}

// Geocode resolves zip with the Google Maps Geocoding API and shapes the top result
// into a one-feature collection. No result yields an empty collection.
func (gp *GoogleProvider) Geocode(ctx context.Context, zip string) (json.RawMessage, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "zip", zip)

	if zip == "" {
		return nil, ErrEmptyZip
	}

	req := maps.GeocodingRequest{
		Components: map[maps.Component]string{
			maps.ComponentPostalCode: zip,
		},
	}
	if gp.country != "" {
		req.Components[maps.ComponentCountry] = gp.country
	}

	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode zip: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return emptyCollection()
	}

	top := geocodeResponse[0]
	coords := top.Geometry.Location

	return pointCollection(coords.Lng, coords.Lat, top.FormattedAddress, zip)
}
