package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/productbazar/bazar/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Redis string `json:"redis"`
}

// Readyz answers ready as long as the process serves; Redis state is
// reported but not gating, sessions degrade to in-memory only.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redisState := "disabled"
		if d.RedisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.RedisClient.Ping(ctx).Err(); err != nil {
				redisState = "down"
			} else {
				redisState = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(readyzResponse{Ready: true, Redis: redisState})
	}
}
