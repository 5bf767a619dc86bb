package calibration_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/mapcal/internal/core/calibration"
	"github.com/samirrijal/mapcal/internal/core/domain"
	"github.com/samirrijal/mapcal/internal/core/projection"
)

func scenarioPoints() []domain.CalibrationPoint {
	return []domain.CalibrationPoint{
		{PixelX: 0, PixelY: 0, ProjX: 10.0, ProjY: 50.0},
		{PixelX: 1000, PixelY: 2000, ProjX: 11.0, ProjY: 49.0},
	}
}

// countingProjection records Init calls and can be told to fail.
type countingProjection struct {
	inits   int
	initErr error
	ready   bool
}

func (p *countingProjection) Init() error {
	p.inits++
	if p.initErr != nil {
		return p.initErr
	}
	p.ready = true
	return nil
}

func (p *countingProjection) Project(lat, lon float64) (float64, float64, error) {
	if !p.ready {
		return 0, 0, domain.ErrProjectionNotInitialized
	}
	return lon * 2, lat * 2, nil
}

func (p *countingProjection) Unproject(x, y float64) (float64, float64, error) {
	if !p.ready {
		return 0, 0, domain.ErrProjectionNotInitialized
	}
	return y / 2, x / 2, nil
}

func (p *countingProjection) Name() string { return "counting" }

func TestEngine_InitialState(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	if e.Status() != domain.StatusUncalibrated {
		t.Errorf("expected uncalibrated, got %s", e.Status())
	}
	if _, ok := e.Bounds(); ok {
		t.Error("bounds must be absent before calibration")
	}
	if _, ok := e.ProjectionName(); ok {
		t.Error("no projection expected")
	}
}

func TestEngine_CalibrateScenario(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	e.SetCalibrationPoints(scenarioPoints())

	status, err := e.Calibrate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.StatusValid {
		t.Fatalf("expected valid, got %s (%v)", status, e.Reason())
	}
	b, ok := e.Bounds()
	if !ok {
		t.Fatal("expected bounds")
	}
	boundsNear(t, b, domain.MapBounds{X0: 10.0, Y0: 50.0, X1: 11.0, Y1: 49.0})
}

func TestEngine_DegenerateKeepsPreviousBounds(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	e.SetCalibrationPoints(scenarioPoints())
	if _, err := e.Calibrate(); err != nil {
		t.Fatal(err)
	}
	before, _ := e.Bounds()

	pts := scenarioPoints()
	pts[1].PixelX = 0
	e.SetCalibrationPoints(pts)

	status, err := e.Calibrate()
	if err != nil {
		t.Fatalf("degenerate points must not be an error, got %v", err)
	}
	if status != domain.StatusInvalid {
		t.Fatalf("expected invalid, got %s", status)
	}
	if !errors.Is(e.Reason(), domain.ErrDegenerateCalibration) {
		t.Errorf("expected degenerate reason, got %v", e.Reason())
	}
	after, ok := e.Bounds()
	if !ok || after != before {
		t.Errorf("previous bounds must be left untouched: before %+v after %+v", before, after)
	}
}

func TestEngine_DegenerateWithoutPriorBounds(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	pts := scenarioPoints()
	pts[1].PixelX = 0
	e.SetCalibrationPoints(pts)

	status, _ := e.Calibrate()
	if status != domain.StatusInvalid {
		t.Fatalf("expected invalid, got %s", status)
	}
	if _, ok := e.Bounds(); ok {
		t.Error("no bounds must be stored")
	}
}

func TestEngine_InsufficientPoints(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	e.SetCalibrationPoints(scenarioPoints()[:1])

	status, err := e.Calibrate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.StatusInvalid {
		t.Fatalf("expected invalid, got %s", status)
	}
	if !errors.Is(e.Reason(), domain.ErrInsufficientPoints) {
		t.Errorf("expected insufficient points reason, got %v", e.Reason())
	}
}

func TestEngine_UnknownMethod(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, "TRIANGULATION_3_POINTS")
	e.SetCalibrationPoints(append(scenarioPoints(), domain.CalibrationPoint{PixelX: 500, PixelY: 7}))

	status, err := e.Calibrate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.StatusInvalid {
		t.Fatalf("expected invalid, got %s", status)
	}
	if !errors.Is(e.Reason(), domain.ErrUnknownCalibrationMethod) {
		t.Errorf("expected unknown method reason, got %v", e.Reason())
	}
	if n := e.RequiredPointCount("TRIANGULATION_3_POINTS"); n != 0 {
		t.Errorf("expected 0 required points, got %d", n)
	}
}

func TestEngine_ExtraPointsIgnored(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	pts := append(scenarioPoints(), domain.CalibrationPoint{PixelX: 500, PixelY: 500, ProjX: 999, ProjY: 999})
	e.SetCalibrationPoints(pts)

	if status, _ := e.Calibrate(); status != domain.StatusValid {
		t.Fatalf("expected valid, got %s", status)
	}
	b, _ := e.Bounds()
	boundsNear(t, b, domain.MapBounds{X0: 10.0, Y0: 50.0, X1: 11.0, Y1: 49.0})
}

func TestEngine_RecoversAfterInvalid(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	if status, _ := e.Calibrate(); status != domain.StatusInvalid {
		t.Fatalf("expected invalid with no points, got %s", status)
	}
	e.SetCalibrationPoints(scenarioPoints())
	if status, _ := e.Calibrate(); status != domain.StatusValid {
		t.Fatalf("expected valid, got %s", status)
	}
	if e.Reason() != nil {
		t.Errorf("reason must be cleared, got %v", e.Reason())
	}
}

func TestEngine_CalibrateIsRepeatable(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	e.SetCalibrationPoints(scenarioPoints())
	_, _ = e.Calibrate()
	first, _ := e.Bounds()
	_, _ = e.Calibrate()
	second, _ := e.Bounds()
	if first != second {
		t.Errorf("repeated calibration changed bounds: %+v vs %+v", first, second)
	}
}

func TestEngine_ProjectionInitFailure(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	e.SetCalibrationPoints(scenarioPoints())
	e.SetProjection(projection.NewUTM(0, "N"))

	status, err := e.Calibrate()
	if !errors.Is(err, domain.ErrProjectionInit) {
		t.Fatalf("expected ErrProjectionInit, got %v", err)
	}
	if status != domain.StatusUncalibrated {
		t.Errorf("a projection failure must not change the status, got %s", status)
	}
	if _, ok := e.Bounds(); ok {
		t.Error("no bounds expected")
	}
}

func TestEngine_UsesProjection(t *testing.T) {
	p := &countingProjection{}
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	e.SetProjection(p)
	e.SetCalibrationPoints([]domain.CalibrationPoint{
		{PixelX: 0, PixelY: 0, Lat: 50, Lon: 10},
		{PixelX: 1000, PixelY: 2000, Lat: 49, Lon: 11},
	})

	if status, err := e.Calibrate(); err != nil || status != domain.StatusValid {
		t.Fatalf("expected valid, got %s / %v", status, err)
	}
	b, _ := e.Bounds()
	boundsNear(t, b, domain.MapBounds{X0: 20, Y0: 100, X1: 22, Y1: 98})

	// Projected values are working copies; the store keeps what was given.
	if pts := e.CalibrationPoints(); pts[0].ProjX != 0 {
		t.Errorf("store must not be mutated, got %+v", pts[0])
	}
	if name, ok := e.ProjectionName(); !ok || name != "counting" {
		t.Errorf("unexpected projection name %q", name)
	}
}

func TestEngine_ProjectionInitCalledEachCalibrate(t *testing.T) {
	p := &countingProjection{}
	e := calibration.NewEngine(10, 10, domain.MethodSimple2Points)
	e.SetProjection(p)
	_, _ = e.Calibrate()
	_, _ = e.Calibrate()
	if p.inits != 2 {
		t.Errorf("expected Init on every calibrate, got %d", p.inits)
	}
	if e.Projection() != p {
		t.Error("Projection must return the configured projection")
	}
	e.SetProjection(nil)
	if e.Projection() != nil {
		t.Error("expected projection to be removed")
	}
}

func TestEngine_Reset(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	e.SetCalibrationPoints(scenarioPoints())
	_, _ = e.Calibrate()
	e.Reset()
	if e.Status() != domain.StatusUncalibrated {
		t.Errorf("expected uncalibrated, got %s", e.Status())
	}
	if _, ok := e.Bounds(); ok {
		t.Error("bounds must be cleared")
	}
	if len(e.CalibrationPoints()) != 2 {
		t.Error("reset must keep the points")
	}
}

func TestEngine_ClearCalibrationPoints(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	e.SetCalibrationPoints(scenarioPoints())
	e.ClearCalibrationPoints()
	if pts := e.CalibrationPoints(); len(pts) != 0 {
		t.Fatalf("expected no points, got %d", len(pts))
	}
}

func TestEngine_Restore(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	b := &domain.MapBounds{X0: 1, Y0: 2, X1: 3, Y1: 4}
	e.Restore(domain.StatusValid, b)
	b.X0 = 100

	got, ok := e.Bounds()
	if !ok || got.X0 != 1 {
		t.Errorf("restore must copy the bounds, got %+v", got)
	}
	if e.Status() != domain.StatusValid {
		t.Errorf("expected valid, got %s", e.Status())
	}
}

func TestEngine_PixelGeoConversion(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	if _, err := e.PixelToGeo(0, 0); !errors.Is(err, domain.ErrNotCalibrated) {
		t.Fatalf("expected ErrNotCalibrated, got %v", err)
	}

	e.SetCalibrationPoints(scenarioPoints())
	_, _ = e.Calibrate()

	g, err := e.PixelToGeo(500, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(g.Lon, 10.5) || !near(g.Lat, 49.5) {
		t.Errorf("expected (49.5, 10.5), got %+v", g)
	}

	px, err := e.GeoToPixel(49.5, 10.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(px.X-500) > 1e-6 || math.Abs(px.Y-1000) > 1e-6 {
		t.Errorf("expected (500,1000), got %+v", px)
	}
}

func TestEngine_PixelGeoWithMercator(t *testing.T) {
	e := calibration.NewEngine(4096, 4096, domain.MethodSimple2Points)
	e.SetProjection(projection.NewMercator())
	e.SetCalibrationPoints([]domain.CalibrationPoint{
		{PixelX: 100, PixelY: 150, Lat: 45.9, Lon: 6.8},
		{PixelX: 3900, PixelY: 4000, Lat: 45.7, Lon: 7.1},
	})
	if status, err := e.Calibrate(); err != nil || status != domain.StatusValid {
		t.Fatalf("expected valid, got %s / %v", status, err)
	}

	g, err := e.PixelToGeo(100, 150)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(g.Lat-45.9) > 1e-7 || math.Abs(g.Lon-6.8) > 1e-7 {
		t.Errorf("expected calibration point back, got %+v", g)
	}

	px, err := e.GeoToPixel(45.7, 7.1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(px.X-3900) > 1e-4 || math.Abs(px.Y-4000) > 1e-4 {
		t.Errorf("expected (3900,4000), got %+v", px)
	}
}

func TestEngine_MercatorPoleIsInvalid(t *testing.T) {
	e := calibration.NewEngine(1000, 2000, domain.MethodSimple2Points)
	e.SetProjection(projection.NewMercator())
	e.SetCalibrationPoints([]domain.CalibrationPoint{
		{PixelX: 0, PixelY: 0, Lat: 45.9, Lon: 6.8},
		{PixelX: 1000, PixelY: 2000, Lat: 45.7, Lon: 7.1},
	})
	if status, err := e.Calibrate(); err != nil || status != domain.StatusValid {
		t.Fatalf("expected valid, got %s / %v", status, err)
	}
	before, _ := e.Bounds()

	e.SetCalibrationPoints([]domain.CalibrationPoint{
		{PixelX: 0, PixelY: 0, Lat: 90, Lon: 6.8},
		{PixelX: 1000, PixelY: 2000, Lat: 45.7, Lon: 7.1},
	})
	status, err := e.Calibrate()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.StatusInvalid {
		t.Fatalf("expected invalid, got %s", status)
	}
	if !errors.Is(e.Reason(), domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate reason, got %v", e.Reason())
	}
	if after, _ := e.Bounds(); after != before {
		t.Errorf("bounds must be kept, got %+v want %+v", after, before)
	}

	if _, err := e.GeoToPixel(-89, 0); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate converting a polar point, got %v", err)
	}
}

func TestTranslator_DegenerateBounds(t *testing.T) {
	tr := calibration.NewTranslator(100, 100, domain.MapBounds{X0: 1, Y0: 1, X1: 1, Y1: 2})
	if _, _, err := tr.ToPixel(1, 1); !errors.Is(err, domain.ErrDegenerateCalibration) {
		t.Fatalf("expected ErrDegenerateCalibration, got %v", err)
	}
}
