package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/mapcal/internal/core/calibration"
	"github.com/samirrijal/mapcal/internal/core/domain"
	"github.com/samirrijal/mapcal/internal/core/ports"
	"github.com/samirrijal/mapcal/internal/core/projection"
	"github.com/samirrijal/mapcal/internal/pkg/geospatial"
	"github.com/samirrijal/mapcal/internal/pkg/metrics"
	"github.com/samirrijal/mapcal/internal/pkg/telemetry"
)

// MapServiceOptions carries the defaults applied by MapService.
type MapServiceOptions struct {
	CacheTTL          int // seconds; 0 disables caching
	DefaultMethod     string
	DefaultProjection string
}

// MapService handles map and calibration business logic.
//
// Every mutation of a map runs under a per-map lock so that concurrent
// requests against the same map are applied one at a time.
type MapService struct {
	maps      ports.MapRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	opts      MapServiceOptions

	locks sync.Map // map id → *sync.Mutex
}

// NewMapService creates a new MapService. cache and publisher may be nil.
func NewMapService(
	maps ports.MapRepository,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	opts MapServiceOptions,
) *MapService {
	if opts.DefaultMethod == "" {
		opts.DefaultMethod = domain.MethodSimple2Points
	}
	return &MapService{maps: maps, cache: cache, publisher: publisher, opts: opts}
}

func (s *MapService) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func cacheKey(id string) string {
	return "maps:id:" + id
}

// Create validates and stores a new uncalibrated map.
func (s *MapService) Create(ctx context.Context, m *domain.Map) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("%w: name must not be empty", domain.ErrInvalidMap)
	}
	if m.WidthPx <= 0 || m.HeightPx <= 0 {
		return fmt.Errorf("%w: size must be positive, got %dx%d", domain.ErrInvalidMap, m.WidthPx, m.HeightPx)
	}
	if m.CalibrationMethod == "" {
		m.CalibrationMethod = s.opts.DefaultMethod
	}
	if m.Projection == nil && s.opts.DefaultProjection != "" {
		m.Projection = &domain.ProjectionConfig{Name: s.opts.DefaultProjection}
	}
	if m.Projection != nil {
		if _, err := projection.New(*m.Projection); err != nil {
			return err
		}
	}
	if err := validatePoints(m.CalibrationPoints, m.WidthPx, m.HeightPx); err != nil {
		return err
	}
	var store calibration.PointStore
	store.SetPoints(m.CalibrationPoints)
	m.CalibrationPoints = store.Points()

	m.Status = domain.StatusUncalibrated
	m.StatusReason = ""
	m.Bounds = nil
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now

	if err := s.maps.Create(ctx, m); err != nil {
		return fmt.Errorf("create map: %w", err)
	}
	slog.InfoContext(ctx, "map created", "map_id", m.ID, "name", m.Name, "method", m.CalibrationMethod)
	return nil
}

// Get returns a single map, served from cache when possible.
func (s *MapService) Get(ctx context.Context, id string) (*domain.Map, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey(id)); err == nil {
			var m domain.Map
			if err := json.Unmarshal(data, &m); err == nil {
				metrics.CacheHits.WithLabelValues("map").Inc()
				return &m, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("map").Inc()
	}

	m, err := s.maps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.opts.CacheTTL > 0 {
		if data, err := json.Marshal(m); err == nil {
			_ = s.cache.Set(ctx, cacheKey(id), data, s.opts.CacheTTL)
		}
	}
	return m, nil
}

// List returns a page of maps and the total count.
func (s *MapService) List(ctx context.Context, limit, offset int) ([]domain.Map, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.maps.List(ctx, limit, offset)
}

// Delete removes a map.
func (s *MapService) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if err := s.maps.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// update loads a map under its lock, applies fn and persists the result.
func (s *MapService) update(ctx context.Context, id string, fn func(m *domain.Map) error) (*domain.Map, error) {
	unlock := s.lock(id)
	defer unlock()

	m, err := s.maps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	m.UpdatedAt = time.Now().UTC()
	if err := s.maps.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update map %s: %w", id, err)
	}
	s.invalidate(ctx, id)
	return m, nil
}

func (s *MapService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cacheKey(id))
	}
}

// SetCalibrationPoints replaces the calibration points of a map. The
// calibration outcome is not recomputed until Calibrate is called.
func (s *MapService) SetCalibrationPoints(ctx context.Context, id string, points []domain.CalibrationPoint) (*domain.Map, error) {
	return s.update(ctx, id, func(m *domain.Map) error {
		if err := validatePoints(points, m.WidthPx, m.HeightPx); err != nil {
			return err
		}
		var store calibration.PointStore
		store.SetPoints(points)
		m.CalibrationPoints = store.Points()
		return nil
	})
}

// validatePoints rejects points that are not finite, lie outside the
// WGS84 range or fall off a widthPx x heightPx canvas.
func validatePoints(points []domain.CalibrationPoint, widthPx, heightPx int) error {
	for i, p := range points {
		for _, v := range [...]float64{p.PixelX, p.PixelY, p.ProjX, p.ProjY, p.Lat, p.Lon} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: point %d is not finite", domain.ErrInvalidCoordinate, i)
			}
		}
		if !geospatial.ValidLatLon(p.Lat, p.Lon) {
			return fmt.Errorf("%w: point %d (%v, %v)", domain.ErrInvalidCoordinate, i, p.Lat, p.Lon)
		}
		if p.PixelX < 0 || p.PixelX > float64(widthPx) || p.PixelY < 0 || p.PixelY > float64(heightPx) {
			return fmt.Errorf("%w: point %d pixel (%v, %v) outside %dx%d canvas",
				domain.ErrInvalidCoordinate, i, p.PixelX, p.PixelY, widthPx, heightPx)
		}
	}
	return nil
}

// ClearCalibrationPoints removes every calibration point of a map.
func (s *MapService) ClearCalibrationPoints(ctx context.Context, id string) (*domain.Map, error) {
	return s.update(ctx, id, func(m *domain.Map) error {
		m.CalibrationPoints = []domain.CalibrationPoint{}
		return nil
	})
}

func (s *MapService) CalibrationPoints(ctx context.Context, id string) ([]domain.CalibrationPoint, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.CalibrationPoints == nil {
		return []domain.CalibrationPoint{}, nil
	}
	return m.CalibrationPoints, nil
}

// SetProjection selects the projection of a map; nil removes it. Unknown
// names are rejected here, missing parameters only surface on Calibrate.
func (s *MapService) SetProjection(ctx context.Context, id string, cfg *domain.ProjectionConfig) (*domain.Map, error) {
	if cfg != nil {
		if _, err := projection.New(*cfg); err != nil {
			return nil, err
		}
		c := *cfg
		c.Name = strings.ToLower(c.Name)
		c.Hemisphere = strings.ToUpper(c.Hemisphere)
		cfg = &c
	}
	return s.update(ctx, id, func(m *domain.Map) error {
		m.Projection = cfg
		return nil
	})
}

// Projection returns the projection configuration of a map, or nil.
func (s *MapService) Projection(ctx context.Context, id string) (*domain.ProjectionConfig, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.Projection, nil
}

// SetCalibrationMethod selects the calibration method of a map. Unknown
// methods are accepted and make the next calibration invalid.
func (s *MapService) SetCalibrationMethod(ctx context.Context, id, method string) (*domain.Map, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, fmt.Errorf("%w: calibration method must not be empty", domain.ErrInvalidMap)
	}
	return s.update(ctx, id, func(m *domain.Map) error {
		m.CalibrationMethod = method
		return nil
	})
}

// Calibrate recomputes the bounds of a map from its current inputs,
// persists the outcome and publishes a calibration event.
//
// A projection that cannot be initialised is returned as an error and the
// stored map is left unchanged. Any other failure is recorded as
// StatusInvalid, with the previous bounds kept.
func (s *MapService) Calibrate(ctx context.Context, id string) (*domain.Map, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "MapService.Calibrate",
		trace.WithAttributes(telemetry.AttrMapID.String(id)))
	defer span.End()

	start := time.Now()
	unlock := s.lock(id)
	defer unlock()

	m, err := s.maps.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load map")
		return nil, err
	}
	span.SetAttributes(
		telemetry.AttrMethod.String(m.CalibrationMethod),
		telemetry.AttrProjection.String(m.ProjectionName()),
	)

	eng, err := engineFor(m)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build engine")
		return nil, err
	}

	status, err := eng.Calibrate()
	if err != nil {
		metrics.ProjectionErrors.WithLabelValues(m.ProjectionName()).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "calibrate")
		slog.WarnContext(ctx, "calibration failed", "map_id", id, "error", err)
		return nil, err
	}

	m.Status = status
	m.StatusReason = ""
	if reason := eng.Reason(); reason != nil {
		m.StatusReason = reason.Error()
	}
	if b, ok := eng.Bounds(); ok {
		m.Bounds = &b
	}
	m.UpdatedAt = time.Now().UTC()

	if err := s.maps.Update(ctx, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist")
		return nil, fmt.Errorf("update map %s: %w", id, err)
	}
	s.invalidate(ctx, id)

	metrics.CalibrationRuns.WithLabelValues(m.CalibrationMethod, status.String()).Inc()
	metrics.CalibrationDuration.WithLabelValues(m.CalibrationMethod).Observe(time.Since(start).Seconds())
	span.SetAttributes(telemetry.AttrStatus.String(status.String()))

	if s.publisher != nil {
		event := &domain.CalibrationEvent{
			MapID:      m.ID,
			Status:     m.Status,
			Method:     m.CalibrationMethod,
			Projection: m.ProjectionName(),
			Bounds:     m.Bounds,
			Time:       m.UpdatedAt,
		}
		if err := s.publisher.PublishCalibration(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish calibration event", "map_id", id, "error", err)
		}
	}

	slog.InfoContext(ctx, "map calibrated",
		"map_id", id,
		"method", m.CalibrationMethod,
		"status", status.String(),
		"reason", m.StatusReason,
	)
	return m, nil
}

// Bounds returns the bounds of the last successful calibration.
func (s *MapService) Bounds(ctx context.Context, id string) (*domain.MapBounds, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Bounds == nil {
		return nil, domain.ErrNotCalibrated
	}
	return m.Bounds, nil
}

// Methods lists the registered calibration methods.
func (s *MapService) Methods() []calibration.Method {
	return calibration.Methods()
}

// RequiredPointCount returns how many points a method needs, 0 when unknown.
func (s *MapService) RequiredPointCount(method string) int {
	return calibration.RequiredPointCount(method)
}

// PixelToGeo converts a pixel position on a calibrated map into lat/lon.
func (s *MapService) PixelToGeo(ctx context.Context, id string, px, py float64) (domain.GeoPoint, error) {
	eng, err := s.loadEngine(ctx, id)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	g, err := eng.PixelToGeo(px, py)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	metrics.Conversions.WithLabelValues("pixel_to_geo").Inc()
	return g, nil
}

// GeoToPixel converts lat/lon into a pixel position on a calibrated map.
// Positions off the map are returned as-is, outside the image size.
func (s *MapService) GeoToPixel(ctx context.Context, id string, lat, lon float64) (domain.PixelPoint, error) {
	if !geospatial.ValidLatLon(lat, lon) {
		return domain.PixelPoint{}, fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidCoordinate, lat, lon)
	}
	eng, err := s.loadEngine(ctx, id)
	if err != nil {
		return domain.PixelPoint{}, err
	}
	p, err := eng.GeoToPixel(lat, lon)
	if err != nil {
		return domain.PixelPoint{}, err
	}
	metrics.Conversions.WithLabelValues("geo_to_pixel").Inc()
	return p, nil
}

// Footprint returns the geographic corners of a calibrated map.
func (s *MapService) Footprint(ctx context.Context, id string) (*domain.Footprint, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	eng, err := engineFor(m)
	if err != nil {
		return nil, err
	}

	w, h := float64(m.WidthPx), float64(m.HeightPx)
	pixels := [4][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}}

	fp := &domain.Footprint{MapID: m.ID}
	for i, p := range pixels {
		g, err := eng.PixelToGeo(p[0], p[1])
		if err != nil {
			return nil, err
		}
		fp.Corners[i] = g
	}
	tl, br := fp.Corners[0], fp.Corners[2]
	fp.DiagonalMeters = geospatial.Haversine(tl.Lat, tl.Lon, br.Lat, br.Lon)
	return fp, nil
}

func (s *MapService) loadEngine(ctx context.Context, id string) (*calibration.Engine, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return engineFor(m)
}

// engineFor rebuilds the calibration engine of a stored map.
func engineFor(m *domain.Map) (*calibration.Engine, error) {
	eng := calibration.NewEngine(m.WidthPx, m.HeightPx, m.CalibrationMethod)
	eng.SetCalibrationPoints(m.CalibrationPoints)
	if m.Projection != nil {
		p, err := projection.New(*m.Projection)
		if err != nil {
			return nil, err
		}
		eng.SetProjection(p)
	}
	eng.Restore(m.Status, m.Bounds)
	return eng, nil
}
