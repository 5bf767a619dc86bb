package domain

import "errors"

var (
	// ErrProjectionInit means a projection is missing a required parameter.
	ErrProjectionInit = errors.New("projection init failed")
	// ErrProjectionNotInitialized means Project was called before Init.
	ErrProjectionNotInitialized = errors.New("projection not initialized")
	ErrUnknownProjection        = errors.New("unknown projection")

	ErrUnknownCalibrationMethod = errors.New("unknown calibration method")
	ErrInsufficientPoints       = errors.New("not enough calibration points")
	// ErrDegenerateCalibration means two calibration points share a pixel row or column.
	ErrDegenerateCalibration = errors.New("degenerate calibration points")
	ErrNotCalibrated         = errors.New("map is not calibrated")

	ErrMapNotFound = errors.New("map not found")
	ErrInvalidMap  = errors.New("invalid map")
	// ErrInvalidCoordinate means a latitude/longitude lies outside WGS 84 ranges.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)
