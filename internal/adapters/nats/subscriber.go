package natsadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber creates a subscriber whose consumer is named durable.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// SubscribeCalibrations delivers every calibration event to handler.
// Malformed messages are terminated; handler errors are redelivered.
func (s *Subscriber) SubscribeCalibrations(ctx context.Context, handler func(ctx context.Context, event *domain.CalibrationEvent) error) error {
	sub, err := s.js.Subscribe(SubjectCalibration+">", func(msg *nats.Msg) {
		event, err := DecodeCalibrationEvent(msg.Data)
		if err != nil {
			slog.Warn("drop malformed calibration event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
