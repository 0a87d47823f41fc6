package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleStream delivers run snapshots to the client via Server-Sent Events.
// The subscription starts at the moment of connection; missed snapshots are
// not replayed. The stream ends when the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	runID := r.PathValue("run_id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch, cancel, err := s.deps.Hub.Subscribe(r.Context(), runID)
	if err != nil {
		s.deps.Logger.Error("SSE subscribe failed", "run_id", runID, "error", err)
		http.Error(w, "subscribe failed", http.StatusInternalServerError)
		return
	}
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
			flusher.Flush()
			// No snapshot can follow a terminal one; end the stream so
			// clients are not left waiting on a silent connection.
			if snap.Step.Terminal() {
				return
			}
		}
	}
}
