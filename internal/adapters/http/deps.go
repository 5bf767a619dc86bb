package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapcal/internal/adapters/postgres"
	"github.com/samirrijal/mapcal/internal/adapters/valkey"
	"github.com/samirrijal/mapcal/internal/core/ports"
	"github.com/samirrijal/mapcal/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// Everything except Maps is optional.
type Dependencies struct {
	Maps      *usecases.MapService
	Workflows ports.WorkflowStarter
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
