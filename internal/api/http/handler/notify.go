package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dtroode/regbot/internal/logger"
	"github.com/dtroode/regbot/internal/model"
)

const maxNotifyBody = 64 << 10

type notifyRequest struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// Notify relays admin panel messages to users.
type Notify struct {
	messenger model.Messenger
	logger    *logger.Logger
}

func NewNotify(messenger model.Messenger, logger *logger.Logger) *Notify {
	return &Notify{messenger: messenger, logger: logger}
}

// Handle sends the request text to user_id.
func (h *Notify) Handle(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxNotifyBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}
	if req.UserID == 0 || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "user_id and text are required"})
		return
	}

	if err := h.messenger.Send(r.Context(), req.UserID, model.Prompt{Text: req.Text}); err != nil {
		h.logger.Error("failed to relay notification", "user_id", req.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to send message"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Health reports liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
