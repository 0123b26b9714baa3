package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
)

// --- Areas ---

func (s *Server) listAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.areas.List(r.Context())
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}

func (s *Server) createArea(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parent_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	builder := domain.NewAreaBuilder().WithName(body.Name)
	if body.ParentID != nil {
		parent, err := ids.ParseAreaID(*body.ParentID)
		if err != nil {
			writeError(w, s.log.Error, huberr.Validationf("area", "invalid parent_id: %v", err))
			return
		}
		builder = builder.WithParent(parent)
	}
	area, err := builder.Build()
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	if err := s.areas.Create(r.Context(), area); err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusCreated, area)
}

func (s *Server) getArea(w http.ResponseWriter, r *http.Request) {
	id, err := ids.ParseAreaID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log.Error, huberr.Validationf("area", "invalid id: %v", err))
		return
	}
	area, err := s.areas.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, area)
}

// --- Devices ---

func (s *Server) listDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.List(r.Context())
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) createDevice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         string  `json:"name"`
		Manufacturer string  `json:"manufacturer"`
		Model        string  `json:"model"`
		AreaID       *string `json:"area_id"`
		Integration  string  `json:"integration"`
		UniqueID     string  `json:"unique_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	builder := domain.NewDeviceBuilder().
		WithName(body.Name).
		WithManufacturer(body.Manufacturer).
		WithModel(body.Model).
		WithIntegration(body.Integration, body.UniqueID)
	if body.AreaID != nil {
		area, err := ids.ParseAreaID(*body.AreaID)
		if err != nil {
			writeError(w, s.log.Error, huberr.Validationf("device", "invalid area_id: %v", err))
			return
		}
		builder = builder.WithArea(area)
	}
	device, err := builder.Build()
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	if err := s.devices.Create(r.Context(), device); err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusCreated, device)
}

func (s *Server) getDevice(w http.ResponseWriter, r *http.Request) {
	id, err := ids.ParseDeviceID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log.Error, huberr.Validationf("device", "invalid id: %v", err))
		return
	}
	device, err := s.devices.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

// --- Entities ---

func (s *Server) listEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := s.entities.List(r.Context())
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, entities)
}

func (s *Server) createEntity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeviceID     string `json:"device_id"`
		EntitySlug   string `json:"entity_id"`
		FriendlyName string `json:"friendly_name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	deviceID, err := ids.ParseDeviceID(body.DeviceID)
	if err != nil {
		writeError(w, s.log.Error, huberr.Validationf("entity", "invalid device_id: %v", err))
		return
	}
	entity, err := domain.NewEntityBuilder().
		WithDevice(deviceID).
		WithSlug(body.EntitySlug).
		WithFriendlyName(body.FriendlyName).
		Build()
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	if err := s.entities.Create(r.Context(), entity); err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusCreated, entity)
}

func (s *Server) getEntity(w http.ResponseWriter, r *http.Request) {
	id, err := ids.ParseEntityID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log.Error, huberr.Validationf("entity", "invalid id: %v", err))
		return
	}
	entity, err := s.entities.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

func (s *Server) updateEntityState(w http.ResponseWriter, r *http.Request) {
	id, err := ids.ParseEntityID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log.Error, huberr.Validationf("entity", "invalid id: %v", err))
		return
	}
	var body struct {
		State      domain.EntityState               `json:"state"`
		Attributes map[string]domain.AttributeValue `json:"attributes"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	entity, err := s.entities.UpdateState(r.Context(), id, body.State, body.Attributes)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

// callService applies the REST adapter's manual service-call contract
// (spec §4.6): dispatch is routed through the integration host, which
// picks the integration owning entityID if any, falling back to the
// core's internal turn_on/turn_off/toggle mapping otherwise.
func (s *Server) callService(w http.ResponseWriter, r *http.Request) {
	id, err := ids.ParseEntityID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log.Error, huberr.Validationf("entity", "invalid id: %v", err))
		return
	}
	service := chi.URLParam(r, "service")

	data, err := decodeRawJSON(r)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}

	updated, err := s.host.CallService(r.Context(), id, service, data)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) entityHistory(w http.ResponseWriter, r *http.Request) {
	id, err := ids.ParseEntityID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log.Error, huberr.Validationf("entity", "invalid id: %v", err))
		return
	}

	from := time.Unix(0, 0).UTC()
	to := time.Now().UTC()
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, s.log.Error, huberr.Validationf("history", "invalid from: %v", err))
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, s.log.Error, huberr.Validationf("history", "invalid to: %v", err))
			return
		}
		to = parsed
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, s.log.Error, huberr.Validationf("history", "invalid limit: %v", err))
			return
		}
		limit = n
	}

	records, err := s.history.FindByEntityInRange(r.Context(), id, from, to, limit)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// --- Events ---

// defaultEventLimit caps event-log queries that do not pass ?limit=.
const defaultEventLimit = 50

func parseLimit(r *http.Request, fallback int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, huberr.Validationf("request", "invalid limit: %v", err)
	}
	return n, nil
}

func (s *Server) recentEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultEventLimit)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	events, err := s.events.GetRecent(r.Context(), limit)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) entityEvents(w http.ResponseWriter, r *http.Request) {
	id, err := ids.ParseEntityID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log.Error, huberr.Validationf("entity", "invalid id: %v", err))
		return
	}
	limit, err := parseLimit(r, defaultEventLimit)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	events, err := s.events.FindByEntity(r.Context(), id, limit)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// --- Automations ---

func (s *Server) listAutomations(w http.ResponseWriter, r *http.Request) {
	automations, err := s.automations.List(r.Context())
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, automations)
}

func (s *Server) createAutomation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string             `json:"name"`
		Enabled    *bool              `json:"enabled"`
		Trigger    domain.Trigger     `json:"trigger"`
		Conditions []domain.Condition `json:"conditions"`
		Actions    []domain.Action    `json:"actions"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	builder := domain.NewAutomationBuilder().
		WithName(body.Name).
		WithTrigger(body.Trigger).
		WithConditions(body.Conditions...).
		WithActions(body.Actions...)
	if body.Enabled != nil {
		builder = builder.WithEnabled(*body.Enabled)
	}
	automationRule, err := builder.Build()
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	if err := s.automations.Create(r.Context(), automationRule); err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusCreated, automationRule)
}

func (s *Server) getAutomation(w http.ResponseWriter, r *http.Request) {
	id, err := ids.ParseAutomationID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log.Error, huberr.Validationf("automation", "invalid id: %v", err))
		return
	}
	automationRule, err := s.automations.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.log.Error, err)
		return
	}
	writeJSON(w, http.StatusOK, automationRule)
}
