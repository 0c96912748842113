package mapclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// ErrMissingZips is returned when either ZIP field is blank.
var ErrMissingZips = errors.New("both ZIP codes are required")

// Status messages shown to the user.
const (
	MsgMissingZips = "Please enter both ZIP codes"
	MsgFinding     = "Finding route..."
	MsgRouteFound  = "Route found"
	MsgCleared     = "Map cleared"
	MsgExporting   = "Exporting roads from current view..."
	MsgNoExport    = "No data found in export response"
)

// DefaultExportBBox is the region exported when the caller supplies none.
var DefaultExportBBox = models.BoundingBox{
	SouthWest: models.NewGeoPoint(8.681495, 49.41461),
	NorthEast: models.NewGeoPoint(8.686507, 49.41943),
}

// API is what a Session needs from the proxy.
type API interface {
	Geocode(ctx context.Context, zip string) (models.GeoPoint, error)
	Route(ctx context.Context, from, to models.GeoPoint) (json.RawMessage, error)
	Export(ctx context.Context, bbox models.BoundingBox) (json.RawMessage, error)
}

// Session drives the map: it finds routes between ZIP codes, exports roads and
// keeps the one-line status message shown to the user.
type Session struct {
	api        API
	controller *MapController
	downloads  Downloader
	log        *slog.Logger
	now        func() time.Time

	mu     sync.Mutex
	status string
}

// NewSession wires a session. downloads may be nil to skip export downloads.
func NewSession(api API, controller *MapController, downloads Downloader, log *slog.Logger) *Session {
	return &Session{
		api:        api,
		controller: controller,
		downloads:  downloads,
		log:        log,
		now:        time.Now,
	}
}

// WithClock replaces the clock used to date export downloads.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// Status returns the latest status message.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

func (s *Session) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
}

// FindRoute geocodes both ZIP codes, fetches the route between them and draws it.
// On failure the map keeps whatever it showed before.
func (s *Session) FindRoute(ctx context.Context, fromZip, toZip string) error {
	fromZip = strings.TrimSpace(fromZip)
	toZip = strings.TrimSpace(toZip)

	if fromZip == "" || toZip == "" {
		s.setStatus(MsgMissingZips)
		return ErrMissingZips
	}

	s.setStatus(MsgFinding)
	s.log.InfoContext(ctx, "Finding route", "from", fromZip, "to", toZip)

	route, from, to, err := s.fetchRoute(ctx, fromZip, toZip)
	if err == nil {
		err = s.commitRoute(route, from, to)
	}
	if err != nil {
		s.setStatus("Error: " + err.Error())
		s.log.ErrorContext(ctx, "Failed to find route", "from", fromZip, "to", toZip, "error", err)
		return err
	}

	s.log.InfoContext(ctx, "Route drawn", "shape", route.Shape.String(), "points", len(route.Line))

	return nil
}

// commitRoute draws the route and sets its summary as one step under s.mu.
func (s *Session) commitRoute(route *Route, from, to models.GeoPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.controller.SetRoute(route.LatLngs(), from.LatLng(), to.LatLng()); err != nil {
		return err
	}
	s.status = routeMessage(route)

	return nil
}

func (s *Session) fetchRoute(ctx context.Context, fromZip, toZip string) (*Route, models.GeoPoint, models.GeoPoint, error) {
	from, err := s.api.Geocode(ctx, fromZip)
	if err != nil {
		return nil, models.GeoPoint{}, models.GeoPoint{}, err
	}

	to, err := s.api.Geocode(ctx, toZip)
	if err != nil {
		return nil, models.GeoPoint{}, models.GeoPoint{}, err
	}

	raw, err := s.api.Route(ctx, from, to)
	if err != nil {
		return nil, models.GeoPoint{}, models.GeoPoint{}, err
	}

	route, err := DecodeRoute(raw)
	if err != nil {
		return nil, models.GeoPoint{}, models.GeoPoint{}, err
	}

	return route, from, to, nil
}

// routeMessage formats distance in kilometers to one decimal and duration in whole minutes.
func routeMessage(route *Route) string {
	segment, ok := route.Summary()
	if !ok {
		return MsgRouteFound
	}

	minutes := int(math.Round(segment.Duration / 60))

	return fmt.Sprintf("%s: %s km, %d min", MsgRouteFound, formatKilometers(segment.Distance), minutes)
}

// formatKilometers renders meters as kilometers with one decimal. Ties round away
// from zero on the exact binary value, so 1250 m is "1.3" and 1450 m is "1.4".
func formatKilometers(meters float64) string {
	km := meters / 1000
	exact := new(big.Rat).SetFloat64(km)
	if exact == nil {
		return strconv.FormatFloat(km, 'f', 1, 64)
	}

	return exact.FloatString(1)
}

// Clear removes the displayed route and resets the view.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.controller.Clear()
	s.status = MsgCleared
}

// ExportRoads fetches the road graph inside bbox, draws it and downloads the raw payload.
func (s *Session) ExportRoads(ctx context.Context, bbox models.BoundingBox) error {
	s.setStatus(MsgExporting)
	s.log.InfoContext(ctx, "Exporting roads", "bbox", bbox.Bound())

	raw, err := s.api.Export(ctx, bbox)
	if err != nil {
		return s.exportFailed(ctx, err)
	}

	export, err := DecodeExport(raw)
	if errors.Is(err, ErrUnrecognizedExportShape) {
		s.setStatus(MsgNoExport)
		s.log.WarnContext(ctx, "Unknown export format", "error", err)
		return err
	}
	if err != nil {
		return s.exportFailed(ctx, err)
	}

	drawn := s.controller.DrawExport(export)

	if err := s.download(export); err != nil {
		return s.exportFailed(ctx, err)
	}

	if export.Shape == ExportNodes {
		s.setStatus(fmt.Sprintf("Export complete! Found %d nodes", len(export.Nodes)))
	} else {
		s.setStatus(fmt.Sprintf("Export complete! Found %d roads", export.FeatureCount))
	}
	s.log.InfoContext(ctx, "Export drawn", "layers", drawn)

	return nil
}

func (s *Session) download(export *Export) error {
	if s.downloads == nil {
		return nil
	}

	content, err := prettyJSON(export.Raw)
	if err != nil {
		return err
	}

	return s.downloads.Download(ExportFileName(s.now()), content)
}

func (s *Session) exportFailed(ctx context.Context, err error) error {
	s.setStatus("Export error: " + err.Error())
	s.log.ErrorContext(ctx, "Failed to export roads", "error", err)
	return err
}
