package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// Starter implements ports.WorkflowStarter with a Temporal client.
type Starter struct {
	client    client.Client
	taskQueue string
}

func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// StartRecalibration starts a RecalibrationWorkflow and returns its workflow id.
func (s *Starter) StartRecalibration(ctx context.Context, req domain.RecalibrationRequest) (string, error) {
	opts := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("recalibrate-%d", time.Now().UnixNano()),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, RecalibrationWorkflow, req)
	if err != nil {
		return "", fmt.Errorf("start recalibration: %w", err)
	}
	return run.GetID(), nil
}
