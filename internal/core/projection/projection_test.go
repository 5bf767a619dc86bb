package projection_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/mapcal/internal/core/domain"
	"github.com/samirrijal/mapcal/internal/core/projection"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNew_KnownNames(t *testing.T) {
	for _, name := range projection.Names() {
		p, err := projection.New(domain.ProjectionConfig{Name: name, Zone: 31, Hemisphere: "N"})
		if err != nil {
			t.Fatalf("New(%q): unexpected error: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("expected name %q, got %q", name, p.Name())
		}
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := projection.New(domain.ProjectionConfig{Name: "lambert93"})
	if !errors.Is(err, domain.ErrUnknownProjection) {
		t.Fatalf("expected ErrUnknownProjection, got %v", err)
	}
}

func TestProject_BeforeInit(t *testing.T) {
	projs := []projection.Projection{
		projection.NewMercator(),
		projection.NewUTM(31, "N"),
		projection.NewIdentity(),
	}
	for _, p := range projs {
		if _, _, err := p.Project(45, 5); !errors.Is(err, domain.ErrProjectionNotInitialized) {
			t.Errorf("%s: expected ErrProjectionNotInitialized, got %v", p.Name(), err)
		}
		if _, _, err := p.Unproject(1, 1); !errors.Is(err, domain.ErrProjectionNotInitialized) {
			t.Errorf("%s: expected ErrProjectionNotInitialized on unproject, got %v", p.Name(), err)
		}
	}
}

func TestMercator_Origin(t *testing.T) {
	p := projection.NewMercator()
	if err := p.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	x, y, err := p.Project(0, 0)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if !near(x, 0, 1e-6) || !near(y, 0, 1e-6) {
		t.Errorf("expected (0,0), got (%f,%f)", x, y)
	}

	x, _, _ = p.Project(0, 180)
	if !near(x, 20037508.342789244, 0.01) {
		t.Errorf("expected antimeridian at 20037508.34, got %f", x)
	}
}

func TestMercator_RoundTrip(t *testing.T) {
	p := projection.NewMercator()
	_ = p.Init()

	x, y, _ := p.Project(48.8566, 2.3522)
	lat, lon, err := p.Unproject(x, y)
	if err != nil {
		t.Fatalf("unproject: %v", err)
	}
	if !near(lat, 48.8566, 1e-9) || !near(lon, 2.3522, 1e-9) {
		t.Errorf("round trip drifted: got (%f,%f)", lat, lon)
	}
}

func TestMercator_LatitudeRange(t *testing.T) {
	p := projection.NewMercator()
	_ = p.Init()

	for _, lat := range []float64{90, -90, 85.06, -85.1} {
		if _, _, err := p.Project(lat, 0); !errors.Is(err, domain.ErrInvalidCoordinate) {
			t.Errorf("lat %v: expected ErrInvalidCoordinate, got %v", lat, err)
		}
	}
	_, y, err := p.Project(projection.MercatorMaxLat, 0)
	if err != nil {
		t.Fatalf("edge latitude must project: %v", err)
	}
	// The square web map ends near 20037508 m north of the equator.
	if y < 2.0e7 || y > 2.01e7 {
		t.Errorf("expected y at the map edge, got %v", y)
	}
}

func TestProject_Deterministic(t *testing.T) {
	p := projection.NewUTM(30, "N")
	if err := p.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	x1, y1, _ := p.Project(43.263, -2.935)
	for i := 0; i < 10; i++ {
		x2, y2, _ := p.Project(43.263, -2.935)
		if x1 != x2 || y1 != y2 {
			t.Fatalf("projection is not reproducible: (%v,%v) vs (%v,%v)", x1, y1, x2, y2)
		}
	}
}

func TestInit_Idempotent(t *testing.T) {
	p := projection.NewMercator()
	_ = p.Init()
	x1, y1, _ := p.Project(10, 20)
	if err := p.Init(); err != nil {
		t.Fatalf("second init: %v", err)
	}
	x2, y2, _ := p.Project(10, 20)
	if x1 != x2 || y1 != y2 {
		t.Errorf("second Init changed the projection")
	}
}

func TestUTM_CentralMeridian(t *testing.T) {
	north := projection.NewUTM(31, "N")
	if err := north.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	// Zone 31 is centred on 3°E.
	x, y, _ := north.Project(0, 3)
	if !near(x, 500000, 1e-3) || !near(y, 0, 1e-3) {
		t.Errorf("expected (500000,0), got (%f,%f)", x, y)
	}

	south := projection.NewUTM(31, "S")
	_ = south.Init()
	_, y, _ = south.Project(0, 3)
	if !near(y, 10000000, 1e-3) {
		t.Errorf("expected southern false northing, got %f", y)
	}
}

func TestUTM_RoundTrip(t *testing.T) {
	p := projection.NewUTM(30, "N")
	_ = p.Init()
	x, y, _ := p.Project(43.263, -2.935)
	lat, lon, _ := p.Unproject(x, y)
	if !near(lat, 43.263, 1e-6) || !near(lon, -2.935, 1e-6) {
		t.Errorf("round trip drifted: got (%f,%f)", lat, lon)
	}
}

func TestUTM_InitErrors(t *testing.T) {
	tests := []struct {
		name       string
		zone       int
		hemisphere string
	}{
		{"zone not set", 0, "N"},
		{"zone too large", 61, "N"},
		{"bad hemisphere", 31, "E"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := projection.NewUTM(tt.zone, tt.hemisphere)
			if err := p.Init(); !errors.Is(err, domain.ErrProjectionInit) {
				t.Fatalf("expected ErrProjectionInit, got %v", err)
			}
			if _, _, err := p.Project(0, 0); !errors.Is(err, domain.ErrProjectionNotInitialized) {
				t.Errorf("failed init must leave projection unusable, got %v", err)
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	p := projection.NewIdentity()
	_ = p.Init()
	x, y, _ := p.Project(50, 10)
	if x != 10 || y != 50 {
		t.Errorf("expected (10,50), got (%f,%f)", x, y)
	}
	lat, lon, _ := p.Unproject(x, y)
	if lat != 50 || lon != 10 {
		t.Errorf("expected (50,10), got (%f,%f)", lat, lon)
	}
}
