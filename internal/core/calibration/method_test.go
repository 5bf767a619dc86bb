package calibration_test

import (
	"errors"
	"testing"

	"github.com/samirrijal/mapcal/internal/core/calibration"
	"github.com/samirrijal/mapcal/internal/core/domain"
)

func TestLookupMethod(t *testing.T) {
	m, err := calibration.LookupMethod(domain.MethodSimple2Points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.RequiredPoints != 2 {
		t.Errorf("expected 2 required points, got %d", m.RequiredPoints)
	}
	if m.Transform == nil {
		t.Error("transform must be set")
	}
}

func TestLookupMethod_Unknown(t *testing.T) {
	_, err := calibration.LookupMethod("TRIANGULATION_3_POINTS")
	if !errors.Is(err, domain.ErrUnknownCalibrationMethod) {
		t.Fatalf("expected ErrUnknownCalibrationMethod, got %v", err)
	}
}

func TestRequiredPointCount(t *testing.T) {
	if n := calibration.RequiredPointCount(domain.MethodSimple2Points); n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
	if n := calibration.RequiredPointCount("nope"); n != 0 {
		t.Errorf("expected 0 for unknown method, got %d", n)
	}
}

func TestMethods_IsACopy(t *testing.T) {
	ms := calibration.Methods()
	if len(ms) == 0 {
		t.Fatal("registry is empty")
	}
	ms[0].RequiredPoints = 99
	if calibration.RequiredPointCount(ms[0].Name) == 99 {
		t.Error("Methods must not expose the registry itself")
	}
}

func TestPointStore(t *testing.T) {
	var s calibration.PointStore
	in := []domain.CalibrationPoint{{PixelX: 1}, {PixelX: 2}, {PixelX: 3}}
	s.SetPoints(in)
	in[0].PixelX = 42

	got := s.Points()
	if len(got) != 3 || got[0].PixelX != 1 || got[2].PixelX != 3 {
		t.Fatalf("unexpected points %+v", got)
	}
	got[1].PixelX = 42
	if s.Points()[1].PixelX != 2 {
		t.Error("Points must return a copy")
	}

	s.SetPoints([]domain.CalibrationPoint{{PixelX: 9}})
	if s.Len() != 1 {
		t.Errorf("SetPoints must replace, got %d points", s.Len())
	}

	s.Clear()
	if pts := s.Points(); len(pts) != 0 {
		t.Errorf("expected empty store, got %d", len(pts))
	}
}
