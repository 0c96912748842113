package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/meridian/internal/models"
	"golang.org/x/time/rate"
)

// ORSBaseURL -- OpenRouteService API base URL.
const ORSBaseURL = "https://api.openrouteservice.org"

// exportAccept is the Accept header the export endpoint expects.
const exportAccept = "application/json, application/geo+json, application/gpx+xml, img/png; charset=utf-8"

// ErrInvalidPayload is returned when the upstream answers 2xx with a body that is not JSON.
var ErrInvalidPayload = errors.New("upstream returned invalid JSON")

// ORSConfig holds the settings of an OpenRouteService client.
type ORSConfig struct {
	BaseURL string        // BaseURL of the API, defaults to ORSBaseURL
	APIKey  string        // APIKey sent in the Authorization header
	Country string        // Country restricts geocoding lookups (boundary.country)
	Profile string        // Profile used for directions and export, e.g. driving-car
	Timeout time.Duration // Timeout of one call, zero disables it
}

// ORSClient talks to the OpenRouteService geocoding, directions and export endpoints.
// It implements both Geocoder and Router and relays payloads verbatim.
type ORSClient struct {
	client  HTTPClient    // HTTP client for making requests
	cfg     ORSConfig     // Endpoint and credential settings
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// NewORSClient creates a new OpenRouteService client. A rateLimit of zero disables throttling.
func NewORSClient(cfg ORSConfig, rateLimit int, log *slog.Logger) *ORSClient {
	return NewORSClientWithClient(&http.Client{Timeout: cfg.Timeout}, cfg, newLimiter(rateLimit), log)
}

// NewORSClientWithClient allows injecting custom HTTP client and limiter.
func NewORSClientWithClient(client HTTPClient, cfg ORSConfig, limiter *rate.Limiter, log *slog.Logger) *ORSClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = ORSBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if limiter == nil {
		limiter = newLimiter(0)
	}

	return &ORSClient{
		client:  client,
		cfg:     cfg,
		log:     log,
		limiter: limiter,
	}
}

func newLimiter(rateLimit int) *rate.Limiter {
	if rateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}

	return rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
}

// Geocode looks a ZIP code up, asking for the single best match inside the configured country.
func (oc *ORSClient) Geocode(ctx context.Context, zip string) (json.RawMessage, error) {
	if zip == "" {
		return nil, ErrEmptyZip
	}

	reqURL, err := url.Parse(oc.cfg.BaseURL + "/geocode/search")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("text", zip)
	if oc.cfg.Country != "" {
		query.Set("boundary.country", oc.cfg.Country)
	}
	query.Set("size", "1")
	reqURL.RawQuery = query.Encode()

	oc.log.DebugContext(ctx, "ORS geocode request", "zip", zip, "url", reqURL.Redacted())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return oc.do(ctx, req, "Geocoding failed")
}

// Route requests a driving route between two points in GeoJSON (linear geometry) format.
func (oc *ORSClient) Route(ctx context.Context, from, to models.GeoPoint) (json.RawMessage, error) {
	body, err := json.Marshal(struct {
		Coordinates []models.GeoPoint `json:"coordinates"`
	}{Coordinates: []models.GeoPoint{from, to}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode route request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", oc.cfg.BaseURL, oc.cfg.Profile)
	oc.log.DebugContext(ctx, "ORS route request", "url", endpoint, "body", string(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return oc.do(ctx, req, "Routing failed")
}

// Export requests the road network of the routing profile restricted to bbox.
func (oc *ORSClient) Export(ctx context.Context, bbox models.BoundingBox) (json.RawMessage, error) {
	body, err := json.Marshal(struct {
		BBox models.BoundingBox `json:"bbox"`
	}{BBox: bbox})
	if err != nil {
		return nil, fmt.Errorf("failed to encode export request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/export/%s", oc.cfg.BaseURL, oc.cfg.Profile)
	oc.log.DebugContext(ctx, "ORS export request", "url", endpoint, "body", string(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", exportAccept)

	// an empty fallback makes the error embed status and body
	return oc.do(ctx, req, "")
}

// do attaches the credential, executes the request and returns the JSON body of a 2xx answer.
func (oc *ORSClient) do(ctx context.Context, req *http.Request, fallback string) (json.RawMessage, error) {
	if err := oc.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	req.Header.Set("Authorization", oc.cfg.APIKey)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := oc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute upstream request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	oc.log.DebugContext(ctx, "ORS response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		oc.log.ErrorContext(ctx, "ORS API error", "status", resp.StatusCode, "body", string(body))
		return nil, newAPIError(resp.StatusCode, body, fallback)
	}

	if !json.Valid(body) {
		return nil, ErrInvalidPayload
	}

	return json.RawMessage(body), nil
}
