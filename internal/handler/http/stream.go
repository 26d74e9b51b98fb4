package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hrportal/attendance-widget-go/internal/domain/session"
	"github.com/hrportal/attendance-widget-go/internal/pkg/sse"
)

type StreamHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type streamHandlerImpl struct {
	hub        *sse.Hub
	controller session.Controller
}

func NewStreamHandler(hub *sse.Hub, controller session.Controller) StreamHandler {
	return &streamHandlerImpl{
		hub:        hub,
		controller: controller,
	}
}

// Stream implements StreamHandler. Every open portal tab holds one of
// these connections; timer ticks and phase transitions fan out to all of
// them through the hub.
func (h *streamHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	employeeID := h.controller.EmployeeID()
	if employeeID == "" {
		http.Error(w, "No employee identity configured", http.StatusUnprocessableEntity)
		return
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(employeeID)
	defer cleanup()

	// Send the current day state immediately so a fresh tab renders
	// without waiting for the next tick.
	if data, err := json.Marshal(h.controller.Today()); err == nil {
		fmt.Fprintf(w, "event: connected\ndata: %s\n\n", data)
		flusher.Flush()
	}

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
