// Package calibration establishes the mapping between the pixels of a raster
// map and projected geographic coordinates from a handful of reference points.
//
// An Engine is owned by a single map and performs no locking; callers that
// share one across goroutines must serialise access themselves.
package calibration

import (
	"errors"
	"fmt"

	"github.com/samirrijal/mapcal/internal/core/domain"
	"github.com/samirrijal/mapcal/internal/core/projection"
)

// Engine tracks the calibration inputs and the resulting bounds of one map.
type Engine struct {
	widthPx, heightPx int
	method            string
	proj              projection.Projection
	store             PointStore

	status domain.CalibrationStatus
	bounds *domain.MapBounds
	reason error
}

// NewEngine returns an uncalibrated engine for a widthPx x heightPx image.
func NewEngine(widthPx, heightPx int, method string) *Engine {
	return &Engine{widthPx: widthPx, heightPx: heightPx, method: method}
}

func (e *Engine) Size() (widthPx, heightPx int) {
	return e.widthPx, e.heightPx
}

func (e *Engine) SetCalibrationPoints(points []domain.CalibrationPoint) {
	e.store.SetPoints(points)
}

func (e *Engine) ClearCalibrationPoints() {
	e.store.Clear()
}

func (e *Engine) CalibrationPoints() []domain.CalibrationPoint {
	return e.store.Points()
}

func (e *Engine) SetCalibrationMethod(name string) {
	e.method = name
}

func (e *Engine) CalibrationMethod() string {
	return e.method
}

// RequiredPointCount returns the number of points a method needs, 0 when unknown.
func (e *Engine) RequiredPointCount(method string) int {
	return RequiredPointCount(method)
}

// SetProjection sets the projection used on the next Calibrate. nil removes it.
func (e *Engine) SetProjection(p projection.Projection) {
	e.proj = p
}

// Projection returns the configured projection, or nil.
func (e *Engine) Projection() projection.Projection {
	return e.proj
}

func (e *Engine) ProjectionName() (string, bool) {
	if e.proj == nil {
		return "", false
	}
	return e.proj.Name(), true
}

func (e *Engine) Status() domain.CalibrationStatus {
	return e.status
}

// Reason explains the last Invalid status. It is nil otherwise.
func (e *Engine) Reason() error {
	return e.reason
}

// Bounds returns the bounds of the last successful calibration.
func (e *Engine) Bounds() (domain.MapBounds, bool) {
	if e.bounds == nil {
		return domain.MapBounds{}, false
	}
	return *e.bounds, true
}

// Restore reinstates a previously persisted outcome without recomputing it.
func (e *Engine) Restore(status domain.CalibrationStatus, bounds *domain.MapBounds) {
	e.status = status
	e.reason = nil
	e.bounds = nil
	if bounds != nil {
		b := *bounds
		e.bounds = &b
	}
}

// Reset forgets any calibration outcome. Inputs are kept.
func (e *Engine) Reset() {
	e.status = domain.StatusUncalibrated
	e.bounds = nil
	e.reason = nil
}

// Calibrate re-evaluates the calibration from the current inputs.
//
// Projection failures are returned as errors and leave the state as it was.
// Every other failure (unknown method, missing or degenerate points, a point
// the projection cannot represent) yields StatusInvalid with a nil error; the
// previous bounds are kept and Reason reports the cause.
func (e *Engine) Calibrate() (domain.CalibrationStatus, error) {
	if e.proj != nil {
		if err := e.proj.Init(); err != nil {
			return e.status, fmt.Errorf("init projection %s: %w", e.proj.Name(), err)
		}
	}

	m, err := LookupMethod(e.method)
	if err != nil {
		return e.invalidate(err), nil
	}

	if e.store.Len() < m.RequiredPoints {
		return e.invalidate(fmt.Errorf("%w: %s needs %d, have %d",
			domain.ErrInsufficientPoints, m.Name, m.RequiredPoints, e.store.Len())), nil
	}

	points := e.store.Points()[:m.RequiredPoints]
	if e.proj != nil {
		for i := range points {
			x, y, err := e.proj.Project(points[i].Lat, points[i].Lon)
			if errors.Is(err, domain.ErrInvalidCoordinate) {
				return e.invalidate(fmt.Errorf("calibration point %d: %w", i, err)), nil
			}
			if err != nil {
				return e.status, fmt.Errorf("project calibration point %d: %w", i, err)
			}
			points[i].ProjX, points[i].ProjY = x, y
		}
	}

	bounds, err := m.Transform(e.widthPx, e.heightPx, points)
	if err != nil {
		if errors.Is(err, domain.ErrDegenerateCalibration) || errors.Is(err, domain.ErrInsufficientPoints) {
			return e.invalidate(err), nil
		}
		return e.status, err
	}

	e.bounds = &bounds
	e.status = domain.StatusValid
	e.reason = nil
	return e.status, nil
}

func (e *Engine) invalidate(reason error) domain.CalibrationStatus {
	e.status = domain.StatusInvalid
	e.reason = reason
	return e.status
}

func (e *Engine) translator() (Translator, error) {
	if e.bounds == nil {
		return Translator{}, domain.ErrNotCalibrated
	}
	return NewTranslator(e.widthPx, e.heightPx, *e.bounds), nil
}

// PixelToProjected converts a pixel position using the current bounds.
func (e *Engine) PixelToProjected(px, py float64) (domain.ProjectedPoint, error) {
	t, err := e.translator()
	if err != nil {
		return domain.ProjectedPoint{}, err
	}
	x, y := t.ToProjected(px, py)
	return domain.ProjectedPoint{X: x, Y: y}, nil
}

// PixelToGeo converts a pixel position into latitude/longitude. Without a
// projection the projected plane is read as plain lon/lat.
func (e *Engine) PixelToGeo(px, py float64) (domain.GeoPoint, error) {
	p, err := e.PixelToProjected(px, py)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	if e.proj == nil {
		return domain.GeoPoint{Lat: p.Y, Lon: p.X}, nil
	}
	if err := e.proj.Init(); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("init projection %s: %w", e.proj.Name(), err)
	}
	lat, lon, err := e.proj.Unproject(p.X, p.Y)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

// GeoToPixel converts latitude/longitude into a pixel position.
func (e *Engine) GeoToPixel(lat, lon float64) (domain.PixelPoint, error) {
	t, err := e.translator()
	if err != nil {
		return domain.PixelPoint{}, err
	}
	x, y := lon, lat
	if e.proj != nil {
		if err := e.proj.Init(); err != nil {
			return domain.PixelPoint{}, fmt.Errorf("init projection %s: %w", e.proj.Name(), err)
		}
		if x, y, err = e.proj.Project(lat, lon); err != nil {
			return domain.PixelPoint{}, err
		}
	}
	px, py, err := t.ToPixel(x, y)
	if err != nil {
		return domain.PixelPoint{}, err
	}
	return domain.PixelPoint{X: px, Y: py}, nil
}
