package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/voicelist/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports ready only while Redis answers: without it no turn can run.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.RedisClient == nil {
			writeJSON(w, d.Logger, http.StatusServiceUnavailable, readyzResponse{Error: "redis client not initialized"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := d.RedisClient.Ping(ctx).Err(); err != nil {
			writeJSON(w, d.Logger, http.StatusServiceUnavailable, readyzResponse{Error: "redis unreachable"})
			return
		}

		writeJSON(w, d.Logger, http.StatusOK, readyzResponse{Ready: true})
	}
}
