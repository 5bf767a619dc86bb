package domain

import "time"

// ProjectionConfig selects one of the known projections and carries its parameters.
type ProjectionConfig struct {
	Name       string `json:"name"`
	Zone       int    `json:"zone,omitempty"`       // UTM only
	Hemisphere string `json:"hemisphere,omitempty"` // UTM only: "N" or "S"
}

// Map is a raster map together with its calibration.
type Map struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	WidthPx           int                `json:"width_px"`
	HeightPx          int                `json:"height_px"`
	CalibrationMethod string             `json:"calibration_method"`
	Projection        *ProjectionConfig  `json:"projection,omitempty"`
	CalibrationPoints []CalibrationPoint `json:"calibration_points"`
	Status            CalibrationStatus  `json:"calibration_status"`
	StatusReason      string             `json:"status_reason,omitempty"`
	Bounds            *MapBounds         `json:"bounds,omitempty"`
	Origin            string             `json:"origin,omitempty"` // generated_by
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ProjectionName returns the configured projection name, if any.
func (m *Map) ProjectionName() string {
	if m.Projection == nil {
		return ""
	}
	return m.Projection.Name
}

// Footprint is the geographic outline of a calibrated map.
type Footprint struct {
	MapID string `json:"map_id"`
	// Corners in order: top-left, top-right, bottom-right, bottom-left.
	Corners        [4]GeoPoint `json:"corners"`
	DiagonalMeters float64     `json:"diagonal_meters"`
}
