package stream

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mcoot/peoplebingo/internal/model"
)

const (
	// Time between keepalive comments
	keepalivePeriod = 30 * time.Second
)

// ServeSSE streams a session's events to the client until it disconnects
func ServeSSE(w http.ResponseWriter, r *http.Request, manager *HubManager, code model.SessionCode) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// The stream outlives the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	client := manager.Subscribe(code, TransportSSE)
	defer manager.Unregister(client)

	connected := fmt.Sprintf(`{"type":"connected","game_code":%q,"client_id":%q}`, code, client.ID())
	if _, err := w.Write(formatSSEMessage("connected", connected)); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(keepalivePeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-client.Messages():
			if _, err := w.Write(formatSSEMessage(msg.Event, string(msg.Data))); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-client.Done():
			// Dropped by the hub
			return

		case <-r.Context().Done():
			return
		}
	}
}
