package calibration

import (
	"fmt"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// Simple2Points derives the map bounds from two points whose ProjX/ProjY are
// already in projected space. It fixes translation and per-axis scale, with no
// rotation or shear, and is exact for both points.
func Simple2Points(widthPx, heightPx int, points []domain.CalibrationPoint) (domain.MapBounds, error) {
	if len(points) < 2 {
		return domain.MapBounds{}, domain.ErrInsufficientPoints
	}
	p0, p1 := points[0], points[1]

	dpx := p1.PixelX - p0.PixelX
	dpy := p1.PixelY - p0.PixelY
	if dpx == 0 || dpy == 0 {
		return domain.MapBounds{}, fmt.Errorf("%w: pixel delta (%g, %g)", domain.ErrDegenerateCalibration, dpx, dpy)
	}

	sx := (p1.ProjX - p0.ProjX) / dpx
	sy := (p1.ProjY - p0.ProjY) / dpy

	x0 := p0.ProjX - sx*p0.PixelX
	y0 := p0.ProjY - sy*p0.PixelY

	return domain.MapBounds{
		X0: x0,
		Y0: y0,
		X1: x0 + sx*float64(widthPx),
		Y1: y0 + sy*float64(heightPx),
	}, nil
}
