package mapclient

import (
	"slices"
	"sync"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LayerKind is the kind of a drawn layer.
type LayerKind string

const (
	KindPolyline LayerKind = "polyline"
	KindMarker   LayerKind = "marker"
	KindCircle   LayerKind = "circle"
)

// Layer is one drawn element of a Canvas.
type Layer struct {
	ID     LayerID
	Kind   LayerKind
	Points []models.LatLng
	Style  Style
	Title  string
	Popup  string
}

// View is the visible part of a Canvas. Bounds is set after a FitBounds and
// cleared by SetView.
type View struct {
	Center models.LatLng
	Zoom   int
	Bounds *Bounds
}

// Canvas is an in-memory Surface. It keeps every layer so the drawn map can be
// inspected or written out as GeoJSON.
type Canvas struct {
	mu     sync.Mutex
	nextID LayerID
	layers map[LayerID]Layer
	view   View
}

// NewCanvas returns an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{layers: make(map[LayerID]Layer)}
}

func (c *Canvas) add(layer Layer) LayerID {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	layer.ID = c.nextID
	c.layers[layer.ID] = layer

	return layer.ID
}

// AddPolyline draws a line through points and returns its layer id.
func (c *Canvas) AddPolyline(points []models.LatLng, style Style, popup string) LayerID {
	return c.add(Layer{Kind: KindPolyline, Points: slices.Clone(points), Style: style, Popup: popup})
}

// AddMarker places a titled marker at a point.
func (c *Canvas) AddMarker(at models.LatLng, title string) LayerID {
	return c.add(Layer{Kind: KindMarker, Points: []models.LatLng{at}, Title: title})
}

// AddCircleMarker draws a small styled circle at a point, with an optional popup.
func (c *Canvas) AddCircleMarker(at models.LatLng, style Style, popup string) LayerID {
	return c.add(Layer{Kind: KindCircle, Points: []models.LatLng{at}, Style: style, Popup: popup})
}

// RemoveLayer deletes a layer. Unknown ids are ignored.
func (c *Canvas) RemoveLayer(id LayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.layers, id)
}

// FitBounds centers the view on bounds and records them. The zoom is kept.
func (c *Canvas) FitBounds(bounds Bounds) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.view.Center = models.LatLng{
		Lat: (bounds.SouthWest.Lat + bounds.NorthEast.Lat) / 2,
		Lng: (bounds.SouthWest.Lng + bounds.NorthEast.Lng) / 2,
	}
	c.view.Bounds = &bounds
}

// SetView moves the view to center at zoom and drops any fitted bounds.
func (c *Canvas) SetView(center models.LatLng, zoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.view = View{Center: center, Zoom: zoom}
}

// View returns the current view.
func (c *Canvas) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.view
}

// Layers returns the drawn layers in drawing order.
func (c *Canvas) Layers() []Layer {
	c.mu.Lock()
	defer c.mu.Unlock()

	layers := make([]Layer, 0, len(c.layers))
	for _, layer := range c.layers {
		layers = append(layers, layer)
	}
	slices.SortFunc(layers, func(a, b Layer) int { return int(a.ID - b.ID) })

	return layers
}

// Count returns the number of drawn layers of the given kind.
func (c *Canvas) Count(kind LayerKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, layer := range c.layers {
		if layer.Kind == kind {
			n++
		}
	}

	return n
}

// FeatureCollection renders the drawn layers as GeoJSON in upstream [lon, lat] order.
func (c *Canvas) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, layer := range c.Layers() {
		var feature *geojson.Feature
		if layer.Kind == KindPolyline {
			line := make(orb.LineString, 0, len(layer.Points))
			for _, p := range layer.Points {
				line = append(line, orb.Point(p.GeoPoint()))
			}
			feature = geojson.NewFeature(line)
		} else {
			feature = geojson.NewFeature(orb.Point(layer.Points[0].GeoPoint()))
		}

		feature.Properties["kind"] = string(layer.Kind)
		if layer.Title != "" {
			feature.Properties["title"] = layer.Title
		}
		if layer.Popup != "" {
			feature.Properties["popup"] = layer.Popup
		}
		if layer.Style.Color != "" {
			feature.Properties["color"] = layer.Style.Color
		}
		fc.Append(feature)
	}

	return fc
}
