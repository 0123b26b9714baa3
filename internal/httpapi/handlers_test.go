package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhub/hub/internal/eventbus"
	"github.com/hearthhub/hub/internal/httpapi"
	"github.com/hearthhub/hub/internal/hublog"
	"github.com/hearthhub/hub/internal/integration"
	"github.com/hearthhub/hub/internal/repo/memstore"
	"github.com/hearthhub/hub/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := hublog.NewSlog(slog.LevelError)
	bus := eventbus.New(16)
	areaRepo := memstore.NewAreaRepo()
	deviceRepo := memstore.NewDeviceRepo()
	entityRepo := memstore.NewEntityRepo(deviceRepo)
	automationRepo := memstore.NewAutomationRepo()
	historyRepo := memstore.NewEntityHistoryRepo()
	eventStore := memstore.NewEventStore()

	srv := httpapi.NewServer(httpapi.Deps{
		Entities:    service.NewEntityService(entityRepo, bus),
		Devices:     service.NewDeviceService(deviceRepo),
		Areas:       service.NewAreaService(areaRepo),
		Automations: service.NewAutomationService(automationRepo),
		History:     historyRepo,
		Events:      eventStore,
		Bus:         bus,
		Host:        integration.NewHost(deviceRepo, entityRepo, bus, log),
		Log:         log,
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCreateDeviceEntityAndUpdateState(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/devices", map[string]any{
		"name": "Hub", "integration": "manual", "unique_id": "hub-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var device struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &device)
	require.NotEmpty(t, device.ID)

	resp = postJSON(t, ts.URL+"/api/v1/entities", map[string]any{
		"device_id": device.ID, "entity_id": "light.desk", "friendly_name": "Desk",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var entity struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	decodeBody(t, resp, &entity)
	assert.Equal(t, "unknown", entity.State)

	resp = postJSON(t, ts.URL+"/api/v1/entities/"+entity.ID+"/state", map[string]any{"state": "on"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated struct {
		State string `json:"state"`
	}
	decodeBody(t, resp, &updated)
	assert.Equal(t, "on", updated.State)
}

func TestCallServiceFallsBackToInternalMapping(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/devices", map[string]any{
		"name": "Hub", "integration": "manual", "unique_id": "hub-1",
	})
	var device struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &device)

	resp = postJSON(t, ts.URL+"/api/v1/entities", map[string]any{
		"device_id": device.ID, "entity_id": "switch.fan", "friendly_name": "Fan",
	})
	var entity struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &entity)

	resp = postJSON(t, ts.URL+"/api/v1/entities/"+entity.ID+"/services/turn_on", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated struct {
		State string `json:"state"`
	}
	decodeBody(t, resp, &updated)
	assert.Equal(t, "on", updated.State)
}

func TestInvalidIDMapsToValidationError(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/entities/not-a-uuid")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "validation_error", body.Error)
}

func TestMissingEntityMapsToNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/entities/1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "not_found", body.Error)
}

func TestCreateAutomationRoundTripsTaggedVariants(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/devices", map[string]any{
		"name": "Hub", "integration": "manual", "unique_id": "hub-1",
	})
	var device struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &device)

	resp = postJSON(t, ts.URL+"/api/v1/entities", map[string]any{
		"device_id": device.ID, "entity_id": "light.desk", "friendly_name": "Desk",
	})
	var entity struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &entity)

	resp = postJSON(t, ts.URL+"/api/v1/automations", map[string]any{
		"name": "evening light",
		"trigger": map[string]any{
			"type": "state_changed", "entity_id": entity.ID, "to": "on",
		},
		"conditions": []map[string]any{
			{"type": "time_range", "after": "18:00", "before": "23:00"},
		},
		"actions": []map[string]any{
			{"type": "call_service", "entity_id": entity.ID, "service": "turn_on", "data": map[string]any{}},
			{"type": "delay", "seconds": 1},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID      string `json:"id"`
		Enabled bool   `json:"enabled"`
	}
	decodeBody(t, resp, &created)
	assert.True(t, created.Enabled)

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/automations/%s", ts.URL, created.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
