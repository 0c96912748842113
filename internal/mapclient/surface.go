package mapclient

import (
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/paulmach/orb"
)

// LayerID identifies a layer drawn on a Surface.
type LayerID int

// Style describes how a line or circle layer is painted.
type Style struct {
	Color       string
	Weight      int
	Opacity     float64
	Radius      float64
	FillColor   string
	FillOpacity float64
}

// Bounds is a lat/lng rectangle on the map.
type Bounds struct {
	SouthWest models.LatLng
	NorthEast models.LatLng
}

// BoundsOf returns the smallest rectangle containing every point.
func BoundsOf(points []models.LatLng) Bounds {
	multi := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		multi = append(multi, orb.Point(p.GeoPoint()))
	}
	bound := multi.Bound()

	return Bounds{
		SouthWest: models.LatLng{Lat: bound.Min.Lat(), Lng: bound.Min.Lon()},
		NorthEast: models.LatLng{Lat: bound.Max.Lat(), Lng: bound.Max.Lon()},
	}
}

// Pad grows the rectangle on every side by ratio of its height and width.
func (b Bounds) Pad(ratio float64) Bounds {
	dLat := (b.NorthEast.Lat - b.SouthWest.Lat) * ratio
	dLng := (b.NorthEast.Lng - b.SouthWest.Lng) * ratio

	return Bounds{
		SouthWest: models.LatLng{Lat: b.SouthWest.Lat - dLat, Lng: b.SouthWest.Lng - dLng},
		NorthEast: models.LatLng{Lat: b.NorthEast.Lat + dLat, Lng: b.NorthEast.Lng + dLng},
	}
}

// Surface is the drawing target of a MapController. A browser map widget and
// the in-memory Canvas both satisfy it.
type Surface interface {
	AddPolyline(points []models.LatLng, style Style, popup string) LayerID
	AddMarker(at models.LatLng, title string) LayerID
	AddCircleMarker(at models.LatLng, style Style, popup string) LayerID
	RemoveLayer(id LayerID)
	FitBounds(bounds Bounds)
	SetView(center models.LatLng, zoom int)
}
