package projection

import "github.com/samirrijal/mapcal/internal/core/domain"

// Identity keeps geographic coordinates as they are: x is the longitude and
// y the latitude. Maps drawn in plain lat/lon use it.
type Identity struct {
	ready bool
}

func NewIdentity() *Identity {
	return &Identity{}
}

func (p *Identity) Init() error {
	p.ready = true
	return nil
}

func (p *Identity) Project(lat, lon float64) (float64, float64, error) {
	if !p.ready {
		return 0, 0, domain.ErrProjectionNotInitialized
	}
	return lon, lat, nil
}

func (p *Identity) Unproject(x, y float64) (float64, float64, error) {
	if !p.ready {
		return 0, 0, domain.ErrProjectionNotInitialized
	}
	return y, x, nil
}

func (p *Identity) Name() string { return NameIdentity }
