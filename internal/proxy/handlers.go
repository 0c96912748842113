package proxy

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/gofiber/fiber/v2"
)

// Service is the proxy behaviour the HTTP handlers depend on.
type Service interface {
	Geocode(ctx context.Context, zip string) (json.RawMessage, error)
	Route(ctx context.Context, from, to *models.GeoPoint) (json.RawMessage, error)
	Export(ctx context.Context, bbox *models.BoundingBox) (json.RawMessage, error)
}

// RouteRequest is the body of POST /route.
type RouteRequest struct {
	From *models.GeoPoint `json:"from"` // From is the start point [lon, lat].
	To   *models.GeoPoint `json:"to"`   // To is the end point [lon, lat].
}

// ExportRequest is the body of POST /export.
type ExportRequest struct {
	BBox *models.BoundingBox `json:"bbox"` // BBox is [[lon,lat],[lon,lat]].
}

// GeocodeHandler handles GET /geocode?zip=<zip>.
func GeocodeHandler(svc Service, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := svc.Geocode(c.UserContext(), c.Query("zip"))
		if err != nil {
			return errFromService(c, log, err)
		}

		return sendRaw(c, data)
	}
}

// RouteHandler handles POST /route with {"from":[lon,lat],"to":[lon,lat]}.
func RouteHandler(svc Service, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RouteRequest
		if err := decodeBody(c, &req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		log.DebugContext(c.UserContext(), "Route request", "from", req.From, "to", req.To)

		data, err := svc.Route(c.UserContext(), req.From, req.To)
		if err != nil {
			return errFromService(c, log, err)
		}

		return sendRaw(c, data)
	}
}

// ExportHandler handles POST /export with {"bbox":[[lon,lat],[lon,lat]]}.
func ExportHandler(svc Service, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ExportRequest
		if err := decodeBody(c, &req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		log.DebugContext(c.UserContext(), "Export request", "bbox", req.BBox)

		data, err := svc.Export(c.UserContext(), req.BBox)
		if err != nil {
			return errFromService(c, log, err)
		}

		return sendRaw(c, data)
	}
}

// decodeBody decodes a JSON body; an empty body leaves dst untouched so that
// missing fields surface as validation errors.
func decodeBody(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}

	return json.Unmarshal(body, dst)
}

// sendRaw relays an upstream payload verbatim.
func sendRaw(c *fiber.Ctx, data json.RawMessage) error {
	c.Type("json")
	return c.Status(fiber.StatusOK).Send(data)
}
