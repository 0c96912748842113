package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// ErrInvalidBoundingBox is returned when a bounding box does not consist of exactly two corners.
var ErrInvalidBoundingBox = errors.New("bounding box must have exactly two corners")

// GeoPoint is a geographical point in upstream order: longitude first, latitude second.
// On the wire it is a two-element JSON array [lon, lat].
type GeoPoint orb.Point

// NewGeoPoint builds a GeoPoint from a longitude and a latitude.
func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{lon, lat}
}

// Lon returns the longitude of the point.
func (p GeoPoint) Lon() float64 { return p[0] }

// Lat returns the latitude of the point.
func (p GeoPoint) Lat() float64 { return p[1] }

// LatLng swaps the point into drawing order.
func (p GeoPoint) LatLng() LatLng {
	return LatLng{Lat: p[1], Lng: p[0]}
}

// LatLng is a point in drawing order: latitude first, longitude second.
type LatLng struct {
	Lat float64 `json:"lat"` // Latitude of the point.
	Lng float64 `json:"lng"` // Longitude of the point.
}

// GeoPoint swaps the point back into upstream order.
func (l LatLng) GeoPoint() GeoPoint {
	return GeoPoint{l.Lng, l.Lat}
}

// BoundingBox delimits a rectangular export region by its south-west and north-east corners.
type BoundingBox struct {
	SouthWest GeoPoint // SouthWest is the lower-left corner.
	NorthEast GeoPoint // NorthEast is the upper-right corner.
}

// Bound converts the box into an orb.Bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.MultiPoint{orb.Point(b.SouthWest), orb.Point(b.NorthEast)}.Bound()
}

// MarshalJSON encodes the box as [[lon,lat],[lon,lat]].
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]GeoPoint{b.SouthWest, b.NorthEast})
}

// UnmarshalJSON decodes the box from [[lon,lat],[lon,lat]].
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var corners []GeoPoint
	if err := json.Unmarshal(data, &corners); err != nil {
		return fmt.Errorf("failed to decode bounding box: %w", err)
	}

	if len(corners) != 2 {
		return ErrInvalidBoundingBox
	}

	b.SouthWest, b.NorthEast = corners[0], corners[1]

	return nil
}
