package projection

import (
	"fmt"
	"strings"

	"github.com/wroge/wgs84"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

const (
	utmScale         = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0 // southern hemisphere only
)

// UTM is the Universal Transverse Mercator projection on the WGS 84 ellipsoid.
// The zone and hemisphere must be set before Init.
type UTM struct {
	Zone       int
	Hemisphere string

	t transformer
}

func NewUTM(zone int, hemisphere string) *UTM {
	return &UTM{Zone: zone, Hemisphere: hemisphere}
}

func (u *UTM) Init() error {
	if u.t.ready {
		return nil
	}
	if u.Zone < 1 || u.Zone > 60 {
		return fmt.Errorf("%w: utm zone %d out of range 1-60", domain.ErrProjectionInit, u.Zone)
	}

	var northing float64
	switch strings.ToUpper(u.Hemisphere) {
	case "N", "":
		northing = 0
	case "S":
		northing = utmFalseNorthing
	default:
		return fmt.Errorf("%w: utm hemisphere %q must be N or S", domain.ErrProjectionInit, u.Hemisphere)
	}

	centralMeridian := float64(u.Zone)*6 - 183
	datum := wgs84.WGS84()
	proj := datum.TransverseMercator(centralMeridian, 0, utmScale, utmFalseEasting, northing)

	u.t.forward = wgs84.Transform(datum.LonLat(), proj)
	u.t.inverse = wgs84.Transform(proj, datum.LonLat())
	u.t.ready = true
	return nil
}

func (u *UTM) Project(lat, lon float64) (float64, float64, error) {
	return u.t.project(lat, lon)
}

func (u *UTM) Unproject(x, y float64) (float64, float64, error) {
	return u.t.unproject(x, y)
}

func (u *UTM) Name() string { return NameUTM }
