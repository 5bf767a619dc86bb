package natsadapter

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// Calibration events travel as a binary google.protobuf.Struct so that
// consumers in any language can decode them without a generated schema.

// SubjectCalibration is the subject prefix of calibration events; the map id is appended.
const SubjectCalibration = "maps.calibration."

// EncodeCalibrationEvent serialises an event for the bus.
func EncodeCalibrationEvent(e *domain.CalibrationEvent) ([]byte, error) {
	fields := map[string]interface{}{
		"map_id":     e.MapID,
		"status":     e.Status.String(),
		"method":     e.Method,
		"projection": e.Projection,
		"time":       e.Time.UTC().Format(time.RFC3339Nano),
	}
	if b := e.Bounds; b != nil {
		fields["bounds"] = map[string]interface{}{
			"x0": b.X0, "y0": b.Y0, "x1": b.X1, "y1": b.Y1,
		}
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build event struct: %w", err)
	}
	return proto.Marshal(s)
}

// DecodeCalibrationEvent is the inverse of EncodeCalibrationEvent.
func DecodeCalibrationEvent(data []byte) (*domain.CalibrationEvent, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	f := s.GetFields()

	status, err := domain.ParseCalibrationStatus(f["status"].GetStringValue())
	if err != nil {
		return nil, err
	}
	e := &domain.CalibrationEvent{
		MapID:      f["map_id"].GetStringValue(),
		Status:     status,
		Method:     f["method"].GetStringValue(),
		Projection: f["projection"].GetStringValue(),
	}
	if e.MapID == "" {
		return nil, fmt.Errorf("event without map_id")
	}
	if ts := f["time"].GetStringValue(); ts != "" {
		if e.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("event time: %w", err)
		}
	}
	if b := f["bounds"].GetStructValue(); b != nil {
		bf := b.GetFields()
		e.Bounds = &domain.MapBounds{
			X0: bf["x0"].GetNumberValue(),
			Y0: bf["y0"].GetNumberValue(),
			X1: bf["x1"].GetNumberValue(),
			Y1: bf["y1"].GetNumberValue(),
		}
	}
	return e, nil
}

// EventJSON renders an encoded event as JSON for browser clients.
func EventJSON(data []byte) ([]byte, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return protojson.Marshal(&s)
}
