package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Geocoder resolves a ZIP code into a GeoJSON feature collection holding at most one point feature.
// A collection without features means the ZIP code matched nothing.
type Geocoder interface {
	Geocode(ctx context.Context, zip string) (json.RawMessage, error)
}

// Router computes driving routes and exports road networks.
// Both methods return the upstream payload untouched.
type Router interface {
	Route(ctx context.Context, from, to models.GeoPoint) (json.RawMessage, error)
	Export(ctx context.Context, bbox models.BoundingBox) (json.RawMessage, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrEmptyZip is returned when a geocoder is asked to resolve an empty ZIP code.
var ErrEmptyZip = errors.New("ZIP required")

// pointCollection wraps a single point into a one-feature collection, shaped like the
// ORS geocoding response so that every provider answers with the same contract.
func pointCollection(lon, lat float64, label, zip string) (json.RawMessage, error) {
	feature := geojson.NewFeature(orb.Point{lon, lat})
	feature.Properties["label"] = label
	feature.Properties["postalcode"] = zip

	collection := geojson.NewFeatureCollection()
	collection.Append(feature)

	return collection.MarshalJSON()
}

// emptyCollection is returned by providers that found no match.
func emptyCollection() (json.RawMessage, error) {
	return geojson.NewFeatureCollection().MarshalJSON()
}
