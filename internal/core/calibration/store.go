package calibration

import "github.com/samirrijal/mapcal/internal/core/domain"

// PointStore is the ordered set of calibration points of one map.
// It is replaced wholesale, never diffed.
type PointStore struct {
	points []domain.CalibrationPoint
}

// SetPoints replaces every stored point. The count is not validated here.
func (s *PointStore) SetPoints(points []domain.CalibrationPoint) {
	s.points = append([]domain.CalibrationPoint(nil), points...)
}

func (s *PointStore) Clear() {
	s.points = nil
}

// Points returns a copy of the stored points, in insertion order.
func (s *PointStore) Points() []domain.CalibrationPoint {
	return append([]domain.CalibrationPoint{}, s.points...)
}

func (s *PointStore) Len() int {
	return len(s.points)
}
