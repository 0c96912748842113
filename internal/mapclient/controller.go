package mapclient

import (
	"fmt"
	"sync"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// Default view of the map: the contiguous United States.
var (
	DefaultCenter = models.LatLng{Lat: 39.5, Lng: -98.35}
	DefaultZoom   = 4
)

const fitPadding = 0.1

var (
	routeStyle = Style{Color: "#0066cc", Weight: 5}
	nodeStyle  = Style{Color: "green", Radius: 3, FillOpacity: 0.8}
	roadStyle  = Style{Color: "green", Weight: 2, Opacity: 0.7}
)

// MapController owns the route layer and its two endpoint markers. A route is
// replaced as a whole: either all three layers are drawn or none are.
type MapController struct {
	mu      sync.Mutex
	surface Surface

	route    LayerID
	start    LayerID
	end      LayerID
	hasRoute bool
}

// NewMapController wraps a surface and moves it to the default view.
func NewMapController(surface Surface) *MapController {
	surface.SetView(DefaultCenter, DefaultZoom)
	return &MapController{surface: surface}
}

// SetRoute replaces the displayed route with line and its start and end markers,
// then fits the view to the line. An empty line leaves the map unchanged.
func (mc *MapController) SetRoute(line []models.LatLng, start, end models.LatLng) error {
	if len(line) == 0 {
		return ErrNoRouteCoordinates
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.removeRoute()

	mc.route = mc.surface.AddPolyline(line, routeStyle, "")
	mc.start = mc.surface.AddMarker(start, "Start")
	mc.end = mc.surface.AddMarker(end, "End")
	mc.hasRoute = true

	mc.surface.FitBounds(BoundsOf(line).Pad(fitPadding))

	return nil
}

// Clear removes the route and its markers and resets the view. Export overlays stay.
func (mc *MapController) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.removeRoute()
	mc.surface.SetView(DefaultCenter, DefaultZoom)
}

func (mc *MapController) removeRoute() {
	if !mc.hasRoute {
		return
	}

	mc.surface.RemoveLayer(mc.route)
	mc.surface.RemoveLayer(mc.start)
	mc.surface.RemoveLayer(mc.end)
	mc.hasRoute = false
}

// DrawExport draws an export as overlay layers: a circle per node or a line per road.
// Overlays stay on the map for the rest of the session. It returns the number of
// layers drawn.
func (mc *MapController) DrawExport(export *Export) int {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	drawn := 0
	switch export.Shape {
	case ExportNodes:
		for _, node := range export.Nodes {
			at := node.Location.LatLng()
			popup := fmt.Sprintf("Node ID: %d\nLat: %v, Lng: %v", node.ID, at.Lat, at.Lng)
			mc.surface.AddCircleMarker(at, nodeStyle, popup)
			drawn++
		}
	case ExportFeatures:
		for _, road := range export.Roads {
			points := (&Route{Line: road.Line}).LatLngs()
			mc.surface.AddPolyline(points, roadStyle, "Road: "+road.Name)
			drawn++
		}
	}

	return drawn
}
