package natsadapter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

func TestCalibrationEventCodec(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 123, time.UTC)
	in := &domain.CalibrationEvent{
		MapID:      "map-1",
		Status:     domain.StatusValid,
		Method:     domain.MethodSimple2Points,
		Projection: "mercator",
		Bounds:     &domain.MapBounds{X0: 10, Y0: 50, X1: 11, Y1: 49},
		Time:       at,
	}

	data, err := EncodeCalibrationEvent(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeCalibrationEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if out.MapID != in.MapID || out.Status != in.Status || out.Method != in.Method || out.Projection != in.Projection {
		t.Errorf("expected %+v, got %+v", in, out)
	}
	if !out.Time.Equal(at) {
		t.Errorf("expected time %v, got %v", at, out.Time)
	}
	if out.Bounds == nil || *out.Bounds != *in.Bounds {
		t.Errorf("expected bounds %+v, got %+v", in.Bounds, out.Bounds)
	}
}

func TestCalibrationEventCodec_NoBounds(t *testing.T) {
	data, err := EncodeCalibrationEvent(&domain.CalibrationEvent{MapID: "m", Status: domain.StatusInvalid})
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeCalibrationEvent(data)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds != nil {
		t.Errorf("expected no bounds, got %+v", out.Bounds)
	}
	if out.Status != domain.StatusInvalid {
		t.Errorf("expected invalid, got %s", out.Status)
	}
}

func TestDecodeCalibrationEvent_Malformed(t *testing.T) {
	if _, err := DecodeCalibrationEvent([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestEventJSON(t *testing.T) {
	data, _ := EncodeCalibrationEvent(&domain.CalibrationEvent{MapID: "map-9", Status: domain.StatusValid})
	js, err := EventJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(js, &got); err != nil {
		t.Fatalf("invalid json %s: %v", js, err)
	}
	if got["map_id"] != "map-9" || got["status"] != "valid" {
		t.Errorf("unexpected json %s", js)
	}
}
