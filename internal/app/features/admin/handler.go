// internal/app/features/admin/handler.go

// Package admin implements the site-admin surface: reviewing club
// applications, user oversight, warnings, and platform broadcasts.
// Every route re-checks admin privileges against the database so a
// revocation takes effect on the next request, not at token expiry.
package admin

import (
	"context"
	"net/http"

	clubstore "github.com/dalemusser/campushub/internal/app/store/clubs"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	sysauth "github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/authz"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Clubs  *clubstore.Store
	Users  *userstore.Store
	DB     *mongo.Database
	Notify *notify.Sink
	Log    *zap.Logger
}

// Routes mounts the admin endpoints behind the admin gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn)
	r.Use(h.requireAdmin)

	r.Get("/clubs", h.HandleListClubs)
	r.Get("/clubs/pending", h.HandlePendingClubs)
	r.Post("/clubs/{clubID}/review", h.HandleReviewClub)

	r.Get("/users", h.HandleListUsers)
	r.Post("/users/{userID}/warn", h.HandleWarnUser)
	r.Put("/users/{userID}/admin", h.HandleSetAdmin)

	r.Post("/broadcast", h.HandleBroadcast)

	return r
}

// requireAdmin gates the admin routes on a fresh privilege read.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := authz.UserCtx(r)
		if !ok {
			respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		isAdmin, err := authz.IsActiveSiteAdmin(ctx, h.DB, uid)
		if err != nil {
			respond.Error(w, h.Log, err)
			return
		}
		if !isAdmin {
			respond.Error(w, h.Log, apperr.Forbidden("admin privileges required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("invalid "+name))
		return primitive.NilObjectID, false
	}
	return id, true
}
