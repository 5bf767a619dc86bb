package calibration

import (
	"fmt"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// TransformFunc turns projected calibration points into map bounds.
type TransformFunc func(widthPx, heightPx int, points []domain.CalibrationPoint) (domain.MapBounds, error)

// Method is one calibration strategy. Adding a strategy means adding an
// entry to the registry below.
type Method struct {
	Name           string        `json:"name"`
	RequiredPoints int           `json:"required_points"`
	Transform      TransformFunc `json:"-"`
}

var methods = []Method{
	{Name: domain.MethodSimple2Points, RequiredPoints: 2, Transform: Simple2Points},
}

// LookupMethod resolves a stored method name.
func LookupMethod(name string) (Method, error) {
	for _, m := range methods {
		if m.Name == name {
			return m, nil
		}
	}
	return Method{}, fmt.Errorf("%w: %q", domain.ErrUnknownCalibrationMethod, name)
}

// Methods lists every registered method.
func Methods() []Method {
	return append([]Method(nil), methods...)
}

// RequiredPointCount returns how many points the method needs, or 0 for an unknown method.
func RequiredPointCount(name string) int {
	m, err := LookupMethod(name)
	if err != nil {
		return 0
	}
	return m.RequiredPoints
}
