// internal/app/features/profile/notifications.go
package profile

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/dalemusser/campushub/internal/app/system/authz"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleNotifications returns the embedded notification list, newest first.
func (h *Handler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Users.Notifications(ctx, uid)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Error(w, h.Log, apperr.NotFound("user not found"))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"notifications": list})
}

// HandleReadOne marks a single notification read.
func (h *Handler) HandleReadOne(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	nid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("invalid notification id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.MarkNotificationRead(ctx, uid, nid); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Error(w, h.Log, apperr.NotFound("notification not found"))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.Message(w, http.StatusOK, "notification marked read")
}

// HandleReadAll marks every notification read.
func (h *Handler) HandleReadAll(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.MarkAllNotificationsRead(ctx, uid); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Error(w, h.Log, apperr.NotFound("user not found"))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.Message(w, http.StatusOK, "all notifications marked read")
}
