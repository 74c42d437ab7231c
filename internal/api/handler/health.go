package handler

import (
	"net/http"
)

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health reports process liveness. It performs no dependency checks:
// a degraded metadata tier must not take the recommender out of rotation.
func Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "cinematch",
	})
}
