package mapclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/mapclient"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/proxy"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/UnknownOlympus/meridian/test/mocks"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fiberClient sends client requests straight into a fiber app.
type fiberClient struct {
	app *fiber.App
}

func (f *fiberClient) Do(req *http.Request) (*http.Response, error) {
	if req.ContentLength > 0 {
		req.Header.Set("Content-Length", strconv.FormatInt(req.ContentLength, 10))
	}
	return f.app.Test(req, -1)
}

func geocodeCollection(lon, lat float64) json.RawMessage {
	return json.RawMessage(`{"type":"FeatureCollection","features":[{"type":"Feature",` +
		`"geometry":{"type":"Point","coordinates":[` + jsonFloat(lon) + `,` + jsonFloat(lat) + `]},"properties":{}}]}`)
}

func jsonFloat(v float64) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func newEndToEnd(t *testing.T) (*mapclient.Session, *mapclient.Canvas, *mocks.Geocoder, *mocks.Router, afero.Fs) {
	t.Helper()

	logger := discardLogger()
	geocoder := mocks.NewGeocoder(t)
	router := mocks.NewRouter(t)
	svc := service.NewProxyService(logger, geocoder, router, "ors", metrics.NewMetrics(prometheus.NewRegistry()))
	app := proxy.NewApp(svc, proxy.Options{Logger: logger})

	canvas := mapclient.NewCanvas()
	fs := afero.NewMemMapFs()
	client := mapclient.NewProxyClientWithClient(&fiberClient{app: app}, "http://proxy.local", logger)
	session := mapclient.NewSession(client, mapclient.NewMapController(canvas),
		mapclient.NewFileDownloader(fs, downloadDir), logger)

	return session, canvas, geocoder, router, fs
}

func TestEndToEnd_FindRoute(t *testing.T) {
	t.Run("route between two zips", func(t *testing.T) {
		session, canvas, geocoder, router, _ := newEndToEnd(t)

		geocoder.On("Geocode", mock.Anything, "10001").Return(geocodeCollection(-73.99, 40.75), nil).Once()
		geocoder.On("Geocode", mock.Anything, "02108").Return(geocodeCollection(-71.06, 42.36), nil).Once()
		router.On("Route", mock.Anything, models.NewGeoPoint(-73.99, 40.75), models.NewGeoPoint(-71.06, 42.36)).
			Return(json.RawMessage(routeCollection), nil).Once()

		err := session.FindRoute(context.Background(), "10001", "02108")

		require.NoError(t, err)
		assert.Equal(t, "Route found: 306.4 km, 220 min", session.Status())
		assert.Equal(t, 1, canvas.Count(mapclient.KindPolyline))
		assert.Equal(t, 2, canvas.Count(mapclient.KindMarker))
	})

	t.Run("unknown zip", func(t *testing.T) {
		session, canvas, geocoder, _, _ := newEndToEnd(t)

		geocoder.On("Geocode", mock.Anything, "00000").
			Return(json.RawMessage(`{"type":"FeatureCollection","features":[]}`), nil).Once()

		err := session.FindRoute(context.Background(), "00000", "10001")

		require.ErrorIs(t, err, mapclient.ErrGeocodingFailed)
		assert.Contains(t, session.Status(), "ZIP code not found: 00000")
		assert.Empty(t, canvas.Layers())
	})
}

func TestEndToEnd_ExportRoads(t *testing.T) {
	session, canvas, _, router, fs := newEndToEnd(t)
	payload := `{"nodes":[{"nodeId":1,"location":[8.682,49.415]},{"nodeId":2,"location":[8.685,49.418]}]}`

	router.On("Export", mock.Anything, mapclient.DefaultExportBBox).Return(json.RawMessage(payload), nil).Once()

	err := session.ExportRoads(context.Background(), mapclient.DefaultExportBBox)

	require.NoError(t, err)
	assert.Equal(t, "Export complete! Found 2 nodes", session.Status())
	assert.Equal(t, 2, canvas.Count(mapclient.KindCircle))

	files, err := afero.ReadDir(fs, downloadDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
}
