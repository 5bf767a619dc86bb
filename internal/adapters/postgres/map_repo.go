package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// MapRepo implements ports.MapRepository with pgx. Calibration points and
// the projection are stored as JSONB; bounds are four nullable columns.
type MapRepo struct {
	db *DB
}

// NewMapRepo creates a new MapRepo.
func NewMapRepo(db *DB) *MapRepo {
	return &MapRepo{db: db}
}

const mapColumns = `
	id, name, width_px, height_px, calibration_method, projection,
	calibration_points, status, COALESCE(status_reason, ''),
	bounds_x0, bounds_y0, bounds_x1, bounds_y1,
	COALESCE(origin, ''), created_at, updated_at`

// Create inserts a map and fills in its generated id.
func (r *MapRepo) Create(ctx context.Context, m *domain.Map) error {
	x0, y0, x1, y1 := boundsArgs(m.Bounds)
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO maps (name, width_px, height_px, calibration_method, projection,
		                  calibration_points, status, status_reason,
		                  bounds_x0, bounds_y0, bounds_x1, bounds_y1,
		                  origin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12, NULLIF($13, ''), $14, $15)
		RETURNING id
	`, m.Name, m.WidthPx, m.HeightPx, m.CalibrationMethod, m.Projection,
		pointsArg(m.CalibrationPoints), m.Status.String(), m.StatusReason,
		x0, y0, x1, y1, m.Origin, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert map: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of a map.
func (r *MapRepo) Update(ctx context.Context, m *domain.Map) error {
	x0, y0, x1, y1 := boundsArgs(m.Bounds)
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE maps
		SET name = $2, width_px = $3, height_px = $4, calibration_method = $5,
		    projection = $6, calibration_points = $7, status = $8,
		    status_reason = NULLIF($9, ''),
		    bounds_x0 = $10, bounds_y0 = $11, bounds_x1 = $12, bounds_y1 = $13,
		    updated_at = $14
		WHERE id = $1
	`, m.ID, m.Name, m.WidthPx, m.HeightPx, m.CalibrationMethod, m.Projection,
		pointsArg(m.CalibrationPoints), m.Status.String(), m.StatusReason,
		x0, y0, x1, y1, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update map: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMapNotFound
	}
	return nil
}

// GetByID returns a map by UUID.
func (r *MapRepo) GetByID(ctx context.Context, id string) (*domain.Map, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+mapColumns+` FROM maps WHERE id = $1`, id)
	m, err := scanMap(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMapNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List returns a page of maps ordered by name and the total count.
func (r *MapRepo) List(ctx context.Context, limit, offset int) ([]domain.Map, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM maps`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count maps: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+mapColumns+`
		FROM maps
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	maps := []domain.Map{}
	for rows.Next() {
		m, err := scanMap(rows)
		if err != nil {
			return nil, 0, err
		}
		maps = append(maps, *m)
	}
	return maps, total, rows.Err()
}

// Delete removes a map.
func (r *MapRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM maps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete map: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMapNotFound
	}
	return nil
}

func scanMap(row pgx.Row) (*domain.Map, error) {
	var (
		m              domain.Map
		status         string
		x0, y0, x1, y1 *float64
	)
	err := row.Scan(
		&m.ID, &m.Name, &m.WidthPx, &m.HeightPx, &m.CalibrationMethod, &m.Projection,
		&m.CalibrationPoints, &status, &m.StatusReason,
		&x0, &y0, &x1, &y1,
		&m.Origin, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if m.Status, err = domain.ParseCalibrationStatus(status); err != nil {
		return nil, err
	}
	if x0 != nil && y0 != nil && x1 != nil && y1 != nil {
		m.Bounds = &domain.MapBounds{X0: *x0, Y0: *y0, X1: *x1, Y1: *y1}
	}
	if m.CalibrationPoints == nil {
		m.CalibrationPoints = []domain.CalibrationPoint{}
	}
	return &m, nil
}

func boundsArgs(b *domain.MapBounds) (x0, y0, x1, y1 *float64) {
	if b == nil {
		return nil, nil, nil, nil
	}
	return &b.X0, &b.Y0, &b.X1, &b.Y1
}

// pointsArg keeps an empty point list as '[]' rather than NULL.
func pointsArg(points []domain.CalibrationPoint) []domain.CalibrationPoint {
	if points == nil {
		return []domain.CalibrationPoint{}
	}
	return points
}
