// Package projection converts WGS 84 latitude/longitude into the planar
// coordinates a map was drawn in, and back.
//
// A Projection must be initialised once with Init before Project or
// Unproject are called. Implementations are selected by name through New,
// never by inspecting their concrete type.
package projection

import (
	"fmt"
	"strings"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// Known projection names. These are persisted with each map and must stay stable.
const (
	NameMercator = "mercator"
	NameUTM      = "utm"
	NameIdentity = "identity"
)

// Projection converts between geographic and projected coordinates.
type Projection interface {
	// Init prepares internal constants. Calling it again after a success is a no-op.
	Init() error
	// Project converts (lat, lon) in degrees into planar (x, y).
	Project(lat, lon float64) (x, y float64, err error)
	// Unproject converts planar (x, y) back into (lat, lon) in degrees.
	Unproject(x, y float64) (lat, lon float64, err error)
	// Name returns the stable identifier of the projection.
	Name() string
}

// New returns an uninitialised projection for the given configuration.
func New(cfg domain.ProjectionConfig) (Projection, error) {
	switch strings.ToLower(cfg.Name) {
	case NameMercator:
		return NewMercator(), nil
	case NameUTM:
		return NewUTM(cfg.Zone, cfg.Hemisphere), nil
	case NameIdentity:
		return NewIdentity(), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProjection, cfg.Name)
}

// Names lists every projection New accepts.
func Names() []string {
	return []string{NameMercator, NameUTM, NameIdentity}
}

// transformer holds the forward and inverse functions shared by the
// wgs84-backed projections and guards them behind Init.
type transformer struct {
	forward func(a, b, c float64) (float64, float64, float64)
	inverse func(a, b, c float64) (float64, float64, float64)
	ready   bool
}

func (t *transformer) project(lat, lon float64) (float64, float64, error) {
	if !t.ready {
		return 0, 0, domain.ErrProjectionNotInitialized
	}
	x, y, _ := t.forward(lon, lat, 0)
	return x, y, nil
}

func (t *transformer) unproject(x, y float64) (float64, float64, error) {
	if !t.ready {
		return 0, 0, domain.ErrProjectionNotInitialized
	}
	lon, lat, _ := t.inverse(x, y, 0)
	return lat, lon, nil
}
