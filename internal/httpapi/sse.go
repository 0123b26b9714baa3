package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hearthhub/hub/internal/ports"
)

// streamEvents serves a live event stream: every domain event becomes
// one `data:` frame carrying the event's JSON representation; a
// periodic comment frame serves as keep-alive.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, s.log.Error, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.bus.Subscribe()
	defer sub.Close()

	ctx := r.Context()

	// Pump deliveries into a local channel so the write loop can also
	// service the keep-alive ticker. The pump exits when the request
	// context is cancelled or the subscription closes.
	deliveries := make(chan ports.Envelope)
	go func() {
		defer close(deliveries)
		for {
			env, err := sub.Recv(ctx)
			if err != nil {
				return
			}
			select {
			case deliveries <- env:
			case <-ctx.Done():
				return
			}
		}
	}()

	ping := time.NewTicker(15 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case env, ok := <-deliveries:
			if !ok {
				return
			}
			payload, err := json.Marshal(env.Event)
			if err != nil {
				s.log.Error("marshal event for sse", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
