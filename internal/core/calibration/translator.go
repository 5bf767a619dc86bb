package calibration

import "github.com/samirrijal/mapcal/internal/core/domain"

// Translator maps pixel coordinates onto the projected plane spanned by a
// map's bounds, and back. Inverted axes are handled naturally.
type Translator struct {
	width, height float64
	bounds        domain.MapBounds
}

func NewTranslator(widthPx, heightPx int, bounds domain.MapBounds) Translator {
	return Translator{width: float64(widthPx), height: float64(heightPx), bounds: bounds}
}

// ToProjected converts a pixel position into projected coordinates.
func (t Translator) ToProjected(px, py float64) (x, y float64) {
	b := t.bounds
	x = b.X0 + (b.X1-b.X0)*px/t.width
	y = b.Y0 + (b.Y1-b.Y0)*py/t.height
	return x, y
}

// ToPixel converts projected coordinates into a pixel position. The result
// may fall outside the image when the point is off the map.
func (t Translator) ToPixel(x, y float64) (px, py float64, err error) {
	b := t.bounds
	spanX, spanY := b.X1-b.X0, b.Y1-b.Y0
	if spanX == 0 || spanY == 0 {
		return 0, 0, domain.ErrDegenerateCalibration
	}
	px = (x - b.X0) / spanX * t.width
	py = (y - b.Y0) / spanY * t.height
	return px, py, nil
}
