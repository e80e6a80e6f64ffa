// internal/app/features/admin/admin.go
package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"

	clubstore "github.com/dalemusser/campushub/internal/app/store/clubs"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleListClubs returns every club regardless of review state.
func (h *Handler) HandleListClubs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	clubs, err := h.Clubs.ListAll(ctx)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"clubs": clubs})
}

// HandlePendingClubs returns clubs waiting for a decision.
func (h *Handler) HandlePendingClubs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	clubs, err := h.Clubs.ListPendingReview(ctx)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"clubs": clubs})
}

type reviewRequest struct {
	Status       string `json:"status" validate:"required,oneof=pending review accepted rejected"`
	AdminMessage string `json:"admin_message,omitempty" validate:"omitempty,max=1000"`
}

// HandleReviewClub records the decision on a club application. Accepting
// seats the proposing president as the first member and notifies them.
func (h *Handler) HandleReviewClub(w http.ResponseWriter, r *http.Request) {
	clubID, ok := h.pathID(w, r, "clubID")
	if !ok {
		return
	}
	var req reviewRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	club, err := h.Clubs.SetApplicationStatus(ctx, clubID, req.Status, req.AdminMessage)
	if err != nil {
		if errors.Is(err, clubstore.ErrNotFound) {
			respond.Error(w, h.Log, apperr.NotFound(err.Error()))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}

	var msg string
	switch req.Status {
	case models.ClubStatusAccepted:
		msg = "Your club " + club.Name + " has been approved. Congratulations!"
		if err := h.Users.AddClubRef(ctx, club.President.UserID, club.ID); err != nil {
			h.Log.Warn("president club ref update failed", zap.Error(err))
		}
	case models.ClubStatusRejected:
		msg = "Your club application for " + club.Name + " was not approved."
	case models.ClubStatusReview:
		msg = "Your club application for " + club.Name + " is under review."
	default:
		msg = "Your club application for " + club.Name + " was updated."
	}
	h.Notify.Send(ctx, club.President.UserID, notify.Notification{
		Type:        models.NotificationAdmin,
		Message:     msg,
		RelatedClub: &club.ID,
	})

	respond.JSON(w, http.StatusOK, club)
}

// HandleListUsers returns the full user roster for the admin overview.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"users": users})
}

type warnRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

// HandleWarnUser sends a warning notification to one user.
func (h *Handler) HandleWarnUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	var req warnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Error(w, h.Log, apperr.NotFound("user not found"))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}

	h.Notify.Send(ctx, userID, notify.Notification{
		Type:    models.NotificationWarning,
		Message: strings.TrimSpace(req.Message),
	})
	respond.Message(w, http.StatusOK, "warning sent")
}

type setAdminRequest struct {
	IsAdmin bool   `json:"is_admin"`
	Role    string `json:"role,omitempty" validate:"omitempty,oneof=super_admin admin moderator"`
	Status  bool   `json:"status"`
}

// HandleSetAdmin grants or revokes admin privileges on a user.
func (h *Handler) HandleSetAdmin(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	var req setAdminRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetAdminFlags(ctx, userID, req.IsAdmin, req.Role, req.Status); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Error(w, h.Log, apperr.NotFound("user not found"))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.Message(w, http.StatusOK, "admin flags updated")
}

type broadcastRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

// HandleBroadcast sends a system notification to every user. Campus-sized
// population; the loop is fine.
func (h *Handler) HandleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	n := notify.Notification{
		Type:    models.NotificationSystem,
		Message: strings.TrimSpace(req.Message),
	}
	for _, u := range users {
		h.Notify.Send(ctx, u.ID, n)
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":    "broadcast sent",
		"recipients": len(users),
	})
}
