package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// Error types carried by non-retryable activity failures.
const (
	ErrTypeProjectionInit = "ProjectionInit"
	ErrTypeMapNotFound    = "MapNotFound"
	ErrTypeInvalidInput   = "InvalidInput"
)

// MapCalibrator is the part of the map service the activities drive.
type MapCalibrator interface {
	Get(ctx context.Context, id string) (*domain.Map, error)
	SetProjection(ctx context.Context, id string, cfg *domain.ProjectionConfig) (*domain.Map, error)
	SetCalibrationMethod(ctx context.Context, id, method string) (*domain.Map, error)
	Calibrate(ctx context.Context, id string) (*domain.Map, error)
}

// CalibrationOutcome is what CalibrateMap reports back to the workflow.
type CalibrationOutcome struct {
	MapID  string
	Status string
	Reason string
}

// RecalibrationActivities holds the activity implementations for the recalibration workflow.
type RecalibrationActivities struct {
	Maps MapCalibrator
}

// ApplyProjection switches the projection of a map and returns the previous one.
func (a *RecalibrationActivities) ApplyProjection(ctx context.Context, mapID string, cfg *domain.ProjectionConfig) (*domain.ProjectionConfig, error) {
	m, err := a.Maps.Get(ctx, mapID)
	if err != nil {
		return nil, classify(fmt.Errorf("get map %s: %w", mapID, err))
	}
	previous := m.Projection
	if _, err := a.Maps.SetProjection(ctx, mapID, cfg); err != nil {
		return nil, classify(fmt.Errorf("set projection on %s: %w", mapID, err))
	}
	return previous, nil
}

// RestoreProjection puts back a projection replaced by ApplyProjection (saga compensation).
func (a *RecalibrationActivities) RestoreProjection(ctx context.Context, mapID string, cfg *domain.ProjectionConfig) error {
	if _, err := a.Maps.SetProjection(ctx, mapID, cfg); err != nil {
		return classify(fmt.Errorf("restore projection on %s: %w", mapID, err))
	}
	slog.Info("projection restored", "map_id", mapID)
	return nil
}

// ApplyCalibrationMethod switches the calibration method of a map.
func (a *RecalibrationActivities) ApplyCalibrationMethod(ctx context.Context, mapID, method string) error {
	if _, err := a.Maps.SetCalibrationMethod(ctx, mapID, method); err != nil {
		return classify(fmt.Errorf("set method on %s: %w", mapID, err))
	}
	return nil
}

// CalibrateMap recalibrates a map from its stored inputs.
func (a *RecalibrationActivities) CalibrateMap(ctx context.Context, mapID string) (CalibrationOutcome, error) {
	m, err := a.Maps.Calibrate(ctx, mapID)
	if err != nil {
		return CalibrationOutcome{}, classify(fmt.Errorf("calibrate %s: %w", mapID, err))
	}
	return CalibrationOutcome{MapID: m.ID, Status: m.Status.String(), Reason: m.StatusReason}, nil
}

// classify marks errors that retrying cannot fix as non-retryable.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrProjectionInit):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeProjectionInit, err)
	case errors.Is(err, domain.ErrMapNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeMapNotFound, err)
	case errors.Is(err, domain.ErrUnknownProjection),
		errors.Is(err, domain.ErrInvalidMap):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	}
	return err
}
