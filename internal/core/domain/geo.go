package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ProjectedPoint is a planar coordinate produced by a projection.
type ProjectedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PixelPoint is a position on the full-resolution map image.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MapBounds holds the projected coordinates of the top-left pixel (X0, Y0)
// and of the bottom-right pixel (X1, Y1) of a map image.
// Axis direction follows the projection, so X0 < X1 or Y0 < Y1 is not guaranteed.
type MapBounds struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}
