package handler

import (
	"errors"
	"net/http"

	"github.com/hszk-dev/cinematch/internal/usecase"
)

type PrewarmResponse struct {
	Success bool `json:"success"`
	Queued  int  `json:"queued"`
}

// AdminHandler handles operational HTTP requests.
type AdminHandler struct {
	prewarm usecase.PrewarmService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(prewarm usecase.PrewarmService) *AdminHandler {
	return &AdminHandler{prewarm: prewarm}
}

// Prewarm handles POST /v1/admin/prewarm
func (h *AdminHandler) Prewarm(w http.ResponseWriter, r *http.Request) {
	queued, err := h.prewarm.PrewarmAll(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrPrewarmUnavailable) {
			Error(w, http.StatusServiceUnavailable, "prewarm_unavailable", "Message queue is not configured")
			return
		}
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	JSON(w, http.StatusAccepted, PrewarmResponse{
		Success: true,
		Queued:  queued,
	})
}
