// internal/app/features/leaderboard/leaderboard.go

// Package leaderboard serves the campus activity-points ranking.
package leaderboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Rank *ranking.Engine
	Log  *zap.Logger
}

// Routes mounts the leaderboard endpoint. Public.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleTop)
	return r
}

// HandleTop returns the top users by activity points.
func (h *Handler) HandleTop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := h.Rank.Leaderboard(ctx)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}
