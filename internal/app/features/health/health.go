// internal/app/features/health/health.go

// Package health exposes the liveness/readiness probe.
package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type Handler struct {
	Client *mongo.Client
	Redis  *redis.Client // nil when the cache is disabled
	Log    *zap.Logger
}

// HandleHealthz pings the database (and the cache when configured) and
// reports per-dependency status. Degraded cache still returns 200; Mongo
// down returns 503.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	status := http.StatusOK
	deps := map[string]string{"mongo": "ok"}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Warn("health: mongo ping failed", zap.Error(err))
		deps["mongo"] = "down"
		status = http.StatusServiceUnavailable
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			deps["redis"] = "down"
		} else {
			deps["redis"] = "ok"
		}
	}

	respond.JSON(w, status, map[string]any{
		"status":       http.StatusText(status),
		"dependencies": deps,
	})
}
