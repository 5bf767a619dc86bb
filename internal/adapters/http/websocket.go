package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/mapcal/internal/adapters/nats"
	"github.com/samirrijal/mapcal/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to calibration events.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	MapID  string `json:"map_id"` // "" = all maps
}

// calibrationSubject returns the NATS subject carrying events for mapID.
func calibrationSubject(mapID string) string {
	if mapID == "" {
		return natsadapter.SubjectCalibration + ">"
	}
	return natsadapter.SubjectCalibration + mapID
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// calibration events as JSON. Clients receive every map by default and may
// send {"action":"subscribe","map_id":"..."} to add narrower feeds.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		if nc == nil {
			_ = c.WriteJSON(map[string]string{"error": "event stream unavailable"})
			return
		}

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		write := func(data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return write(data)
		}
		relay := func(msg *nats.Msg) {
			data, err := natsadapter.EventJSON(msg.Data)
			if err != nil {
				slog.Warn("ws drop malformed event", "subject", msg.Subject, "error", err)
				return
			}
			_ = write(data)
		}

		defaultSubject := calibrationSubject("")
		sub, err := nc.Subscribe(defaultSubject, relay)
		if err != nil {
			slog.Error("ws default subscribe", "error", err)
			return
		}
		subs[defaultSubject] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			subject := calibrationSubject(m.MapID)

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
