// Package httpapi is a thin REST + SSE adapter over the hub's core
// services: a chi-based translation layer exposing entity/device/area/
// automation CRUD, manual service calls, history range queries, and a
// live event stream.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/hublog"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
	"github.com/hearthhub/hub/internal/service"
)

// serviceCaller routes a service call by entity ownership (spec §4.6):
// an entity owned by a registered integration is dispatched to it,
// otherwise the core's internal turn_on/turn_off/toggle mapping
// applies. internal/integration.Host implements this.
type serviceCaller interface {
	CallService(ctx context.Context, entityID ids.EntityID, service string, data json.RawMessage) (domain.Entity, error)
}

// Server wires the hub's services and event bus to an HTTP surface.
type Server struct {
	router chi.Router

	entities    *service.EntityService
	devices     *service.DeviceService
	areas       *service.AreaService
	automations *service.AutomationService
	history     ports.EntityHistoryRepo
	events      ports.EventStore
	bus         ports.EventBus
	host        serviceCaller
	log         hublog.Logger
}

// Deps bundles the services and repositories the REST/SSE surface
// dispatches to.
type Deps struct {
	Entities    *service.EntityService
	Devices     *service.DeviceService
	Areas       *service.AreaService
	Automations *service.AutomationService
	History     ports.EntityHistoryRepo
	Events      ports.EventStore
	Bus         ports.EventBus
	// Host dispatches service calls by entity ownership (spec §4.6).
	// Typically *internal/integration.Host.
	Host serviceCaller
	Log  hublog.Logger
}

// NewServer builds a Server and mounts its routes on a fresh chi
// router wrapped by a small facade.
func NewServer(deps Deps) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		entities:    deps.Entities,
		devices:     deps.Devices,
		areas:       deps.Areas,
		automations: deps.Automations,
		history:     deps.History,
		events:      deps.Events,
		bus:         deps.Bus,
		host:        deps.Host,
		log:         deps.Log.With("component", "httpapi"),
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.routes()
	return s
}

// ServeHTTP implements http.Handler so Server can be passed straight to
// http.Server / httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) routes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/areas", func(r chi.Router) {
			r.Get("/", s.listAreas)
			r.Post("/", s.createArea)
			r.Get("/{id}", s.getArea)
		})
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.listDevices)
			r.Post("/", s.createDevice)
			r.Get("/{id}", s.getDevice)
		})
		r.Route("/entities", func(r chi.Router) {
			r.Get("/", s.listEntities)
			r.Post("/", s.createEntity)
			r.Get("/{id}", s.getEntity)
			r.Post("/{id}/state", s.updateEntityState)
			r.Get("/{id}/history", s.entityHistory)
			r.Get("/{id}/events", s.entityEvents)
			r.Post("/{id}/services/{service}", s.callService)
		})
		r.Route("/automations", func(r chi.Router) {
			r.Get("/", s.listAutomations)
			r.Post("/", s.createAutomation)
			r.Get("/{id}", s.getAutomation)
		})
		r.Get("/events", s.recentEvents)
		r.Get("/events/stream", s.streamEvents)
	})
}
