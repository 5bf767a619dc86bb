package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// footprintFeature renders a footprint as a GeoJSON polygon feature with a bbox.
func footprintFeature(fp *domain.Footprint) *geojson.Feature {
	ring := make(orb.Ring, 0, len(fp.Corners)+1)
	for _, p := range fp.Corners {
		ring = append(ring, orb.Point{p.Lon, p.Lat})
	}
	ring = append(ring, ring[0])
	poly := orb.Polygon{ring}

	f := geojson.NewFeature(poly)
	f.BBox = geojson.NewBBox(poly.Bound())
	f.Properties["map_id"] = fp.MapID
	f.Properties["diagonal_meters"] = fp.DiagonalMeters
	return f
}

// FootprintHandler returns the outline of a calibrated map as GeoJSON.
func FootprintHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fp, err := deps.Maps.Footprint(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err)
		}
		data, err := footprintFeature(fp).MarshalJSON()
		if err != nil {
			return errInternal(c, "encode footprint")
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}
