package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// RecalibrationWorkflow applies an optional projection or method change to a
// batch of maps and recalibrates each of them.
//
// A map whose new projection cannot be initialised, or whose method change
// fails after the projection was swapped, gets its previous projection back
// (saga compensation) and is reported as failed. One map
// failing never stops the rest of the batch.
func RecalibrationWorkflow(ctx workflow.Context, input domain.RecalibrationRequest) (domain.RecalibrationResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting recalibration workflow", "maps", len(input.MapIDs))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	result := domain.RecalibrationResult{Valid: []string{}, Invalid: []string{}, Failed: []string{}}

	// restore puts back the projection a map had before ApplyProjection.
	restore := func(id string, previous *domain.ProjectionConfig) {
		if err := workflow.ExecuteActivity(ctx, "RestoreProjection", id, previous).Get(ctx, nil); err != nil {
			logger.Error("restore projection failed", "map_id", id, "error", err)
		}
	}

	for _, id := range input.MapIDs {
		var (
			previous *domain.ProjectionConfig
			swapped  bool
		)

		if input.Projection != nil {
			if err := workflow.ExecuteActivity(ctx, "ApplyProjection", id, input.Projection).Get(ctx, &previous); err != nil {
				logger.Warn("apply projection failed", "map_id", id, "error", err)
				result.Failed = append(result.Failed, id)
				continue
			}
			swapped = true
		}

		if input.Method != "" {
			if err := workflow.ExecuteActivity(ctx, "ApplyCalibrationMethod", id, input.Method).Get(ctx, nil); err != nil {
				logger.Warn("apply method failed", "map_id", id, "error", err)
				if swapped {
					restore(id, previous)
				}
				result.Failed = append(result.Failed, id)
				continue
			}
		}

		var outcome CalibrationOutcome
		err := workflow.ExecuteActivity(ctx, "CalibrateMap", id).Get(ctx, &outcome)
		if err != nil {
			logger.Warn("calibration failed", "map_id", id, "error", err)
			if swapped && isProjectionInit(err) {
				restore(id, previous)
			}
			result.Failed = append(result.Failed, id)
			continue
		}

		if outcome.Status == domain.StatusValid.String() {
			result.Valid = append(result.Valid, id)
		} else {
			result.Invalid = append(result.Invalid, id)
		}
	}

	logger.Info("Recalibration finished",
		"valid", len(result.Valid), "invalid", len(result.Invalid), "failed", len(result.Failed))
	return result, nil
}

func isProjectionInit(err error) bool {
	var appErr *temporal.ApplicationError
	return errors.As(err, &appErr) && appErr.Type() == ErrTypeProjectionInit
}
