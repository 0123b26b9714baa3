package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/hearthhub/hub/internal/huberr"
)

// writeError maps a huberr.Kind to an HTTP status: Validation/NotFound
// are surfaced verbatim, Storage is reported as a generic identifier
// with the cause only in the server log.
func writeError(w http.ResponseWriter, log logFunc, err error) {
	status := http.StatusInternalServerError
	id := "internal_error"
	message := "internal error"

	switch huberr.KindOf(err) {
	case huberr.KindValidation:
		status = http.StatusBadRequest
		id = "validation_error"
		message = err.Error()
	case huberr.KindNotFound:
		status = http.StatusNotFound
		id = "not_found"
		message = err.Error()
	default:
		log("request failed", "error", err)
	}

	writeJSON(w, status, map[string]string{"error": id, "message": message})
}

type logFunc func(msg string, args ...any)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return huberr.Validationf("request", "invalid request body: %v", err)
	}
	return nil
}

// decodeRawJSON reads the request body verbatim for forwarding as a
// service call's data payload, without committing to a shape. An empty
// body decodes as JSON null.
func decodeRawJSON(r *http.Request) (json.RawMessage, error) {
	defer r.Body.Close()
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, huberr.Validationf("request", "read request body: %v", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, huberr.Validationf("request", "invalid request body: %v", err)
	}
	return json.RawMessage(raw), nil
}
