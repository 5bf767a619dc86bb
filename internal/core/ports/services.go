package ports

import (
	"context"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishCalibration(ctx context.Context, event *domain.CalibrationEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeCalibrations(ctx context.Context, handler func(ctx context.Context, event *domain.CalibrationEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// WorkflowStarter launches long-running background jobs.
type WorkflowStarter interface {
	// StartRecalibration schedules a recalibration batch and returns its run identifier.
	StartRecalibration(ctx context.Context, req domain.RecalibrationRequest) (string, error)
}
