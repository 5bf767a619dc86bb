package projection

import (
	"fmt"
	"math"

	"github.com/wroge/wgs84"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// MercatorMaxLat is the latitude at which the square web map ends.
const MercatorMaxLat = 85.05112878

// Mercator is the spherical "Pseudo Mercator" used by web tile pyramids (EPSG:3857).
// Coordinates are in meters.
type Mercator struct {
	t transformer
}

func NewMercator() *Mercator {
	return &Mercator{}
}

func (m *Mercator) Init() error {
	if m.t.ready {
		return nil
	}
	m.t.forward = wgs84.Transform(wgs84.LonLat(), wgs84.WebMercator())
	m.t.inverse = wgs84.Transform(wgs84.WebMercator(), wgs84.LonLat())
	m.t.ready = true
	return nil
}

func (m *Mercator) Project(lat, lon float64) (float64, float64, error) {
	if !m.t.ready {
		return 0, 0, domain.ErrProjectionNotInitialized
	}
	if math.Abs(lat) > MercatorMaxLat {
		return 0, 0, fmt.Errorf("%w: latitude %v outside mercator range", domain.ErrInvalidCoordinate, lat)
	}
	return m.t.project(lat, lon)
}

func (m *Mercator) Unproject(x, y float64) (float64, float64, error) {
	return m.t.unproject(x, y)
}

func (m *Mercator) Name() string { return NameMercator }
