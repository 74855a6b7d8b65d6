package adminapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/oriondb/oriondb/internal/reactive"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler serves one job's live progress stream, grounded on
// internal/api's WSHandler shape but subscribing to a path-addressed job
// id instead of registering a fresh live SQL query per connection.
type WSHandler struct {
	Registry *reactive.Registry
}

// HandleWS upgrades the connection and streams progress updates for the
// job named by the {jobID} path parameter until the client disconnects;
// the connection stays open after the job completes. On disconnect, a job
// that has completed is removed from the registry.
func (h *WSHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, ok := h.Registry.Get(jobID)
	if !ok {
		http.Error(w, "unknown job id", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	wsSend := func(msgType string, payload any) error {
		return conn.WriteJSON(map[string]any{"type": msgType, "data": payload})
	}
	cl := &reactive.Client{Send: wsSend}

	job.Mu.Lock()
	job.Clients[cl] = struct{}{}
	job.Mu.Unlock()
	wsSend("subscribed", map[string]any{"jobId": job.ID, "table": job.Table})

	defer func() {
		job.Mu.Lock()
		delete(job.Clients, cl)
		done := job.Done
		job.Mu.Unlock()
		if done {
			h.Registry.Unregister(job.ID)
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				zap.L().Debug("ws closed", zap.Int("code", ce.Code))
			} else {
				zap.L().Warn("ws read error", zap.Error(err))
			}
			return
		}

		var req struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &req); err != nil {
			wsSend("error", map[string]string{"error": "invalid JSON"})
			continue
		}
		switch strings.ToLower(req.Type) {
		case "ping":
			wsSend("pong", nil)
		default:
			wsSend("error", map[string]string{"error": "unknown message type"})
		}
	}
}
