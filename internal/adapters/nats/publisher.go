package natsadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// StreamCalibrations holds every calibration event for a day.
const StreamCalibrations = "MAP_CALIBRATIONS"

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamCalibrations,
		Subjects:  []string{SubjectCalibration + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist; try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishCalibration publishes an event on maps.calibration.<map id>.
func (p *Publisher) PublishCalibration(ctx context.Context, event *domain.CalibrationEvent) error {
	data, err := EncodeCalibrationEvent(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectCalibration+event.MapID, data, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
