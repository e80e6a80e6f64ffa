// internal/app/features/profile/handler.go

// Package profile serves the signed-in user's account: profile fields,
// uploaded documents, embedded notifications, and account deletion.
package profile

import (
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	sysauth "github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/uploads"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Users   *userstore.Store
	Uploads uploads.Store
	Log     *zap.Logger
}

// Routes mounts the profile endpoints. All require a signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn)

	r.Get("/", h.HandleGet)
	r.Put("/", h.HandleUpdate)
	r.Delete("/", h.HandleDelete)

	r.Post("/avatar", h.HandleUploadAvatar)
	r.Post("/documents", h.HandleUploadDocuments)

	r.Get("/rank", h.HandleRank)

	r.Get("/notifications", h.HandleNotifications)
	r.Post("/notifications/read-all", h.HandleReadAll)
	r.Post("/notifications/{notificationID}/read", h.HandleReadOne)

	return r
}
