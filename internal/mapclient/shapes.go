package mapclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/paulmach/orb"
)

// Shape errors. The proxy never inspects payloads, so these are raised only here.
var (
	ErrUnrecognizedRouteShape  = errors.New("cannot find route coordinates in response data")
	ErrAmbiguousRouteShape     = errors.New("route response holds both a feature collection and a bare geometry")
	ErrNoRouteCoordinates      = errors.New("no route coordinates found")
	ErrUnrecognizedExportShape = errors.New("no data found in export response")
	ErrAmbiguousExportShape    = errors.New("export response holds both nodes and features")
)

// RouteShape tags which of the accepted route payload layouts was decoded.
type RouteShape int

const (
	// ShapeFeatureCollection is {"features":[{"geometry":{...},"properties":{"segments":[...]}}]}.
	ShapeFeatureCollection RouteShape = iota + 1
	// ShapeGeometry is {"geometry":{"coordinates":[...]}}.
	ShapeGeometry
)

func (s RouteShape) String() string {
	switch s {
	case ShapeFeatureCollection:
		return "feature-collection"
	case ShapeGeometry:
		return "geometry"
	default:
		return "unknown"
	}
}

// Segment is the per-segment summary the routing API attaches to a route feature.
type Segment struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
}

// Route is a route payload normalized to a single variant.
type Route struct {
	Shape    RouteShape
	Line     orb.LineString // upstream order: lon, lat
	Segments []Segment      // segments of the first feature, empty for ShapeGeometry
}

// LatLngs swaps every coordinate of the line into drawing order.
func (r *Route) LatLngs() []models.LatLng {
	points := make([]models.LatLng, 0, len(r.Line))
	for _, p := range r.Line {
		points = append(points, models.GeoPoint(p).LatLng())
	}

	return points
}

// Summary returns the first segment of the first feature. Multi-segment and
// multi-leg routes are summarized by that segment alone.
func (r *Route) Summary() (Segment, bool) {
	if len(r.Segments) == 0 {
		return Segment{}, false
	}

	return r.Segments[0], true
}

// lineGeometry is a geometry whose coordinates form a sequence. The type member
// is optional.
type lineGeometry struct {
	Type        string         `json:"type"`
	Coordinates orb.LineString `json:"coordinates"`
}

type routeEnvelope struct {
	Features []struct {
		Geometry   *lineGeometry `json:"geometry"`
		Properties struct {
			Segments []Segment `json:"segments"`
		} `json:"properties"`
	} `json:"features"`
	Geometry *lineGeometry `json:"geometry"`
}

// DecodeRoute decodes a route payload as a feature collection or a bare geometry.
// A payload matching neither, or both, is rejected.
func DecodeRoute(data []byte) (*Route, error) {
	var env routeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnrecognizedRouteShape, err)
	}

	hasCollection := len(env.Features) > 0 && hasCoordinates(env.Features[0].Geometry)
	hasGeometry := hasCoordinates(env.Geometry)

	switch {
	case hasCollection && hasGeometry:
		return nil, ErrAmbiguousRouteShape
	case hasCollection:
		feature := env.Features[0]
		if len(feature.Geometry.Coordinates) == 0 {
			return nil, ErrNoRouteCoordinates
		}
		return &Route{
			Shape:    ShapeFeatureCollection,
			Line:     feature.Geometry.Coordinates,
			Segments: feature.Properties.Segments,
		}, nil
	case hasGeometry:
		if len(env.Geometry.Coordinates) == 0 {
			return nil, ErrNoRouteCoordinates
		}
		return &Route{Shape: ShapeGeometry, Line: env.Geometry.Coordinates}, nil
	default:
		return nil, ErrUnrecognizedRouteShape
	}
}

func hasCoordinates(g *lineGeometry) bool {
	return g != nil && g.Coordinates != nil
}

// ExportShape tags which of the accepted export payload layouts was decoded.
type ExportShape int

const (
	// ExportNodes is {"nodes":[{"nodeId":1,"location":[lon,lat]}]}.
	ExportNodes ExportShape = iota + 1
	// ExportFeatures is a feature collection of road lines.
	ExportFeatures
)

// Node is one graph node of a road export.
type Node struct {
	ID       int64           `json:"nodeId"`
	Location models.GeoPoint `json:"location"`
}

// Road is one line feature of a road export.
type Road struct {
	Name string
	Line orb.LineString
}

// Export is an export payload normalized to a single variant. Raw keeps the
// payload as received for downloading.
type Export struct {
	Shape        ExportShape
	Nodes        []Node
	Roads        []Road // LineString features only
	FeatureCount int    // all features, including non-line ones
	Raw          json.RawMessage
}

// exportFeature is decoded member by member so one malformed feature, or one
// lacking "type":"Feature", costs only its own road.
type exportFeature struct {
	Geometry *struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// road returns the feature as a road when its geometry is a LineString.
func (f *exportFeature) road() (Road, bool) {
	if f == nil || f.Geometry == nil || f.Geometry.Type != "LineString" {
		return Road{}, false
	}

	var line orb.LineString
	if err := json.Unmarshal(f.Geometry.Coordinates, &line); err != nil {
		return Road{}, false
	}

	name, _ := f.Properties["name"].(string)
	if name == "" {
		name = unnamedRoad
	}

	return Road{Name: name, Line: line}, true
}

type exportEnvelope struct {
	Nodes    []Node            `json:"nodes"`
	Features []json.RawMessage `json:"features"`
}

// unnamedRoad labels features without a name property.
const unnamedRoad = "Unnamed"

// DecodeExport decodes an export payload as node records or line features.
func DecodeExport(data []byte) (*Export, error) {
	var env exportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnrecognizedExportShape, err)
	}

	switch {
	case len(env.Nodes) > 0 && len(env.Features) > 0:
		return nil, ErrAmbiguousExportShape
	case len(env.Nodes) > 0:
		return &Export{Shape: ExportNodes, Nodes: env.Nodes, Raw: data}, nil
	case len(env.Features) > 0:
		export := &Export{Shape: ExportFeatures, FeatureCount: len(env.Features), Raw: data}
		for _, raw := range env.Features {
			var feature *exportFeature
			if err := json.Unmarshal(raw, &feature); err != nil {
				continue
			}
			if road, ok := feature.road(); ok {
				export.Roads = append(export.Roads, road)
			}
		}
		return export, nil
	default:
		return nil, ErrUnrecognizedExportShape
	}
}
