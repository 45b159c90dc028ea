package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/agrexhq/agrex/internal/store"
	"github.com/agrexhq/agrex/pkg/models"
	"github.com/gorilla/websocket"
)

const watchPollInterval = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type jobStatusEvent struct {
	Type   string `json:"type"`
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// NewWatchJobHandler returns the websocket handler for
// GET /api/v1/jobs/{jobID}/watch. It pushes the job's status on connect
// and whenever it changes, closing the stream once a terminal state is
// reached.
func NewWatchJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlUUID(w, r, "jobID")
		if !ok {
			return
		}

		// The 404 must go out before the connection is upgraded.
		if _, err := svc.Status(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		ticker := time.NewTicker(watchPollInterval)
		defer ticker.Stop()

		last := ""
		for {
			status, err := svc.CachedStatus(r.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				return
			}
			if err == nil && status != last {
				last = status
				event := jobStatusEvent{Type: "job_update", JobID: id.String(), Status: status}
				if err := conn.WriteJSON(event); err != nil {
					return
				}
				if status == models.JobStatusCompleted || status == models.JobStatusFailed {
					return
				}
			}

			select {
			case <-ticker.C:
			case <-r.Context().Done():
				return
			}
		}
	}
}
