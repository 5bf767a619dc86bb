package http

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// ListMethodsHandler returns the registered calibration methods.
func ListMethodsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Maps.Methods())
	}
}

// RequiredPointsHandler returns how many points a method needs (0 when unknown).
func RequiredPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		return c.JSON(fiber.Map{
			"method":          name,
			"required_points": deps.Maps.RequiredPointCount(name),
		})
	}
}

// ListMapsHandler returns a page of maps.
func ListMapsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		maps, total, err := deps.Maps.List(c.UserContext(), limit, offset)
		if err != nil {
			return mapError(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: maps, Pagination: pg})
	}
}

type createMapRequest struct {
	Name              string                    `json:"name"`
	WidthPx           int                       `json:"width_px"`
	HeightPx          int                       `json:"height_px"`
	CalibrationMethod string                    `json:"calibration_method"`
	Projection        *domain.ProjectionConfig  `json:"projection"`
	CalibrationPoints []domain.CalibrationPoint `json:"calibration_points"`
	Origin            string                    `json:"origin"`
}

// CreateMapHandler registers a new map. Points may be supplied up front;
// the map still starts uncalibrated.
func CreateMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createMapRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		m := &domain.Map{
			Name:              req.Name,
			WidthPx:           req.WidthPx,
			HeightPx:          req.HeightPx,
			CalibrationMethod: req.CalibrationMethod,
			Projection:        req.Projection,
			CalibrationPoints: req.CalibrationPoints,
			Origin:            req.Origin,
		}
		if err := deps.Maps.Create(c.UserContext(), m); err != nil {
			return mapError(c, err)
		}

		c.Location("/v1/maps/" + m.ID)
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

// GetMapHandler returns a single map by ID.
func GetMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := deps.Maps.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(m)
	}
}

// DeleteMapHandler removes a map.
func DeleteMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Maps.Delete(c.UserContext(), c.Params("id")); err != nil {
			return mapError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetPointsHandler returns the calibration points of a map in insertion order.
func GetPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		points, err := deps.Maps.CalibrationPoints(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(fiber.Map{"points": points})
	}
}

// SetPointsHandler replaces the calibration points of a map.
// Body: {"points":[{"pixel_x":0,"pixel_y":0,"lat":45.9,"lon":6.8}, ...]}
func SetPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Points []domain.CalibrationPoint `json:"points"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Points) > 1000 {
			return errBadRequest(c, "too many points (max 1000)")
		}

		m, err := deps.Maps.SetCalibrationPoints(c.UserContext(), c.Params("id"), req.Points)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(m)
	}
}

// ClearPointsHandler removes every calibration point of a map.
func ClearPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := deps.Maps.ClearCalibrationPoints(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(m)
	}
}

// SetMethodHandler selects the calibration method of a map.
func SetMethodHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Method string `json:"method"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		m, err := deps.Maps.SetCalibrationMethod(c.UserContext(), c.Params("id"), req.Method)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(m)
	}
}

// GetProjectionHandler returns the projection of a map; null when none is set.
func GetProjectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := deps.Maps.Projection(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(fiber.Map{"projection": p})
	}
}

// SetProjectionHandler selects the projection of a map.
// Body: {"projection":{"name":"utm","zone":32,"hemisphere":"N"}}, or
// {"projection":null} to remove it.
func SetProjectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Projection *domain.ProjectionConfig `json:"projection"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		m, err := deps.Maps.SetProjection(c.UserContext(), c.Params("id"), req.Projection)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(m)
	}
}

// CalibrationResponse is returned by the calibrate endpoint. An invalid
// calibration is not an HTTP error: the caller is expected to fix the points.
type CalibrationResponse struct {
	MapID  string            `json:"map_id"`
	Status string            `json:"status"`
	Reason string            `json:"reason,omitempty"`
	Bounds *domain.MapBounds `json:"bounds,omitempty"`
}

// CalibrateHandler recomputes the calibration of a map.
func CalibrateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := deps.Maps.Calibrate(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(CalibrationResponse{
			MapID:  m.ID,
			Status: m.Status.String(),
			Reason: m.StatusReason,
			Bounds: m.Bounds,
		})
	}
}

// BoundsHandler returns the bounds of the last successful calibration.
func BoundsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, err := deps.Maps.Bounds(c.UserContext(), c.Params("id"))
		if errors.Is(err, domain.ErrNotCalibrated) {
			return errNotFound(c, "map has no valid calibration")
		}
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(b)
	}
}

// PixelToGeoHandler converts a pixel position into lat/lon.
// GET /v1/maps/:id/pixel-to-geo?x=120&y=3400
func PixelToGeoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		x, err := queryFloat(c, "x")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		y, err := queryFloat(c, "y")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		g, err := deps.Maps.PixelToGeo(c.UserContext(), c.Params("id"), x, y)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(g)
	}
}

// GeoToPixelHandler converts lat/lon into a pixel position.
// GET /v1/maps/:id/geo-to-pixel?lat=45.83&lon=6.86
func GeoToPixelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := queryFloat(c, "lat")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		lon, err := queryFloat(c, "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		p, err := deps.Maps.GeoToPixel(c.UserContext(), c.Params("id"), lat, lon)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(p)
	}
}

// RecalibrateHandler schedules a background recalibration of many maps.
// Body: {"map_ids":["..."],"projection":{"name":"mercator"},"method":"SIMPLE_2_POINTS"}
func RecalibrateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Workflows == nil {
			return errUnavailable(c, "background recalibration is not configured")
		}

		var req domain.RecalibrationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.MapIDs) == 0 {
			return errBadRequest(c, "map_ids is required")
		}
		if len(req.MapIDs) > 500 {
			return errBadRequest(c, "too many maps (max 500)")
		}

		id, err := deps.Workflows.StartRecalibration(c.UserContext(), req)
		if err != nil {
			return mapError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"workflow_id": id})
	}
}

// queryFloat parses a required float query parameter. Zero is a valid value.
func queryFloat(c *fiber.Ctx, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}
