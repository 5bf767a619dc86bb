package ports

import (
	"context"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// MapRepository persists maps together with their calibration inputs and outcome.
type MapRepository interface {
	Create(ctx context.Context, m *domain.Map) error
	// Update overwrites every mutable column of an existing map.
	Update(ctx context.Context, m *domain.Map) error
	GetByID(ctx context.Context, id string) (*domain.Map, error)
	List(ctx context.Context, limit, offset int) ([]domain.Map, int, error)
	Delete(ctx context.Context, id string) error
}
