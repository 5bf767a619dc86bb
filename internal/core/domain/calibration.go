package domain

import (
	"fmt"
	"strings"
	"time"
)

// Calibration method identifiers, as stored in map configurations.
const (
	MethodSimple2Points = "SIMPLE_2_POINTS"
)

// CalibrationPoint pairs a pixel position with a geographic position.
// When the map has no projection, ProjX/ProjY are used directly as the
// projected coordinates; otherwise they are derived from Lat/Lon.
type CalibrationPoint struct {
	PixelX float64 `json:"pixel_x"`
	PixelY float64 `json:"pixel_y"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	ProjX  float64 `json:"proj_x"`
	ProjY  float64 `json:"proj_y"`
}

// CalibrationStatus is the outcome of the last calibration attempt.
type CalibrationStatus int

const (
	StatusUncalibrated CalibrationStatus = iota
	StatusValid
	StatusInvalid
)

func (s CalibrationStatus) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return "uncalibrated"
	}
}

// ParseCalibrationStatus is the inverse of CalibrationStatus.String.
func ParseCalibrationStatus(s string) (CalibrationStatus, error) {
	switch strings.ToLower(s) {
	case "uncalibrated", "":
		return StatusUncalibrated, nil
	case "valid":
		return StatusValid, nil
	case "invalid":
		return StatusInvalid, nil
	}
	return StatusUncalibrated, fmt.Errorf("unknown calibration status %q", s)
}

func (s CalibrationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *CalibrationStatus) UnmarshalText(b []byte) error {
	v, err := ParseCalibrationStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CalibrationEvent is published every time a map is (re)calibrated.
type CalibrationEvent struct {
	MapID      string            `json:"map_id"`
	Status     CalibrationStatus `json:"status"`
	Method     string            `json:"method"`
	Projection string            `json:"projection,omitempty"`
	Bounds     *MapBounds        `json:"bounds,omitempty"`
	Time       time.Time         `json:"time"`
}

// RecalibrationRequest asks for a batch of maps to be recalibrated, optionally
// switching their projection or method first.
type RecalibrationRequest struct {
	MapIDs     []string          `json:"map_ids"`
	Projection *ProjectionConfig `json:"projection,omitempty"`
	Method     string            `json:"method,omitempty"`
}

// RecalibrationResult summarises a recalibration batch by map id.
type RecalibrationResult struct {
	Valid   []string `json:"valid"`
	Invalid []string `json:"invalid"`
	Failed  []string `json:"failed"`
}
