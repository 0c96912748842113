package mapclient

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

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultProxyURL is where the proxy listens by default.
const DefaultProxyURL = "http://localhost:3000"

var (
	ErrZipNotFound        = errors.New("ZIP code not found")
	ErrGeocodingFailed    = errors.New("geocoding failed")
	ErrRoutingFailed      = errors.New("routing failed")
	ErrExportFailed       = errors.New("export failed")
	ErrUnexpectedGeometry = errors.New("geocode result is not a point")
)

// HTTPClient is the subset of *http.Client used to reach the proxy.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProxyClient calls the proxy's geocode, route and export endpoints.
type ProxyClient struct {
	client  HTTPClient
	baseURL string
	log     *slog.Logger
}

// NewProxyClient creates a client for the proxy at baseURL.
func NewProxyClient(baseURL string, log *slog.Logger) *ProxyClient {
	return NewProxyClientWithClient(&http.Client{}, baseURL, log)
}

// NewProxyClientWithClient creates a client with a custom HTTP client (for testing).
func NewProxyClientWithClient(client HTTPClient, baseURL string, log *slog.Logger) *ProxyClient {
	if baseURL == "" {
		baseURL = DefaultProxyURL
	}

	return &ProxyClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// Geocode resolves a ZIP code to the point of its first geocoding match.
func (pc *ProxyClient) Geocode(ctx context.Context, zip string) (models.GeoPoint, error) {
	endpoint := pc.baseURL + "/geocode?" + url.Values{"zip": {zip}}.Encode()

	body, err := pc.do(ctx, http.MethodGet, endpoint, nil, ErrGeocodingFailed)
	if err != nil {
		return models.GeoPoint{}, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	if len(fc.Features) == 0 {
		return models.GeoPoint{}, fmt.Errorf("%w: %s", ErrZipNotFound, zip)
	}

	point, ok := fc.Features[0].Geometry.(orb.Point)
	if !ok {
		return models.GeoPoint{}, ErrUnexpectedGeometry
	}

	pc.log.DebugContext(ctx, "Geocoded ZIP", "zip", zip, "lon", point.Lon(), "lat", point.Lat())

	return models.GeoPoint(point), nil
}

// Route requests a route between two points and returns the payload undecoded.
func (pc *ProxyClient) Route(ctx context.Context, from, to models.GeoPoint) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]models.GeoPoint{"from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("failed to encode route request: %w", err)
	}

	return pc.do(ctx, http.MethodPost, pc.baseURL+"/route", payload, ErrRoutingFailed)
}

// Export requests the road graph inside bbox and returns the payload undecoded.
func (pc *ProxyClient) Export(ctx context.Context, bbox models.BoundingBox) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]models.BoundingBox{"bbox": bbox})
	if err != nil {
		return nil, fmt.Errorf("failed to encode export request: %w", err)
	}

	return pc.do(ctx, http.MethodPost, pc.baseURL+"/export", payload, ErrExportFailed)
}

func (pc *ProxyClient) do(
	ctx context.Context,
	method, endpoint string,
	payload []byte,
	failure error,
) (json.RawMessage, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := pc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach proxy: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		pc.log.WarnContext(ctx, "Proxy request failed", "endpoint", endpoint, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s", failure, errorMessage(body))
	}

	return body, nil
}

// errorMessage extracts the proxy's {"error": "..."} message, falling back to the raw body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}

	return strings.TrimSpace(string(body))
}
