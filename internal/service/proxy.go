package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/upstream"
)

// Validation errors. Their messages are returned to clients as-is.
var (
	ErrMissingZip       = errors.New("ZIP required")
	ErrMissingEndpoints = errors.New("from/to required")
	ErrMissingBBox      = errors.New("bbox required")
)

// ErrZipNotFound is returned when the geocoder matched nothing for a ZIP code.
var ErrZipNotFound = errors.New("ZIP code not found")

// Operation names used as metric labels and log fields.
const (
	OpGeocode = "geocode"
	OpRoute   = "route"
	OpExport  = "export"
)

// IsValidation reports whether err was caused by missing client input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingZip) ||
		errors.Is(err, ErrMissingEndpoints) ||
		errors.Is(err, ErrMissingBBox)
}

// ProxyService validates client input, forwards it to the upstream API
// and records logs and metrics for every forwarded call.
// It keeps no state between requests.
type ProxyService struct {
	log          *slog.Logger      // Logger for logging service activities
	geocoder     upstream.Geocoder // Geocoder answering the geocode operation
	router       upstream.Router   // Router answering route and export operations
	providerName string            // Name of the geocoding provider for logging
	metrics      *metrics.Metrics  // Metrics for tracking upstream calls
}

// NewProxyService creates a new instance of ProxyService.
func NewProxyService(
	log *slog.Logger,
	geocoder upstream.Geocoder,
	router upstream.Router,
	providerName string,
	metrics *metrics.Metrics,
) *ProxyService {
	return &ProxyService{
		log:          log,
		geocoder:     geocoder,
		router:       router,
		providerName: providerName,
		metrics:      metrics,
	}
}

// Geocode resolves zip into the upstream feature collection.
// A collection without features is reported as ErrZipNotFound.
func (ps *ProxyService) Geocode(ctx context.Context, zip string) (json.RawMessage, error) {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return nil, ErrMissingZip
	}

	ps.log.DebugContext(ctx, "Forwarding geocode request", "zip", zip, "provider", ps.providerName)

	data, err := ps.observe(ctx, OpGeocode, func() (json.RawMessage, error) {
		return ps.geocoder.Geocode(ctx, zip)
	})
	if err != nil {
		return nil, err
	}

	var collection struct {
		Features []json.RawMessage `json:"features"`
	}
	if err = json.Unmarshal(data, &collection); err == nil && len(collection.Features) == 0 {
		ps.log.WarnContext(ctx, "Geocoder returned no match", "zip", zip)
		return nil, fmt.Errorf("%w: %s", ErrZipNotFound, zip)
	}

	return data, nil
}

// Route forwards a driving route request between from and to.
func (ps *ProxyService) Route(ctx context.Context, from, to *models.GeoPoint) (json.RawMessage, error) {
	if from == nil || to == nil {
		return nil, ErrMissingEndpoints
	}

	ps.log.DebugContext(ctx, "Forwarding route request", "from", *from, "to", *to)

	return ps.observe(ctx, OpRoute, func() (json.RawMessage, error) {
		return ps.router.Route(ctx, *from, *to)
	})
}

// Export forwards a road export request restricted to bbox.
func (ps *ProxyService) Export(ctx context.Context, bbox *models.BoundingBox) (json.RawMessage, error) {
	if bbox == nil {
		return nil, ErrMissingBBox
	}

	ps.log.DebugContext(ctx, "Forwarding export request", "bbox", *bbox)

	return ps.observe(ctx, OpExport, func() (json.RawMessage, error) {
		return ps.router.Export(ctx, *bbox)
	})
}

// observe runs one upstream call and records its duration and outcome.
func (ps *ProxyService) observe(
	ctx context.Context,
	operation string,
	call func() (json.RawMessage, error),
) (json.RawMessage, error) {
	ps.metrics.InFlight.Inc()
	defer ps.metrics.InFlight.Dec()

	startTime := time.Now()
	data, err := call()
	duration := time.Since(startTime).Seconds()
	ps.metrics.UpstreamSeconds.WithLabelValues(operation).Observe(duration)

	if err != nil {
		ps.log.ErrorContext(ctx, "Upstream call failed", "operation", operation, "error", err)
		ps.metrics.UpstreamCalls.WithLabelValues(operation, "failure").Inc()
		ps.metrics.UpstreamErrors.WithLabelValues(operation).Inc()
		return nil, err
	}

	ps.metrics.UpstreamCalls.WithLabelValues(operation, "success").Inc()
	ps.log.DebugContext(ctx, "Upstream call succeeded", "operation", operation, "bytes", len(data))

	return data, nil
}
