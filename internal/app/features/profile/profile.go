// internal/app/features/profile/profile.go
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
)

// HandleGet returns the signed-in user's full account document.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Error(w, h.Log, apperr.NotFound("user not found"))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

type updateRequest struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Bio            *string  `json:"bio,omitempty" validate:"omitempty,max=500"`
	StudentID      *string  `json:"student_id,omitempty" validate:"omitempty,max=30"`
	Department     *string  `json:"department,omitempty" validate:"omitempty,max=100"`
	GraduationYear *string  `json:"graduation_year,omitempty" validate:"omitempty,len=4,numeric"`
	Interests      []string `json:"interests,omitempty" validate:"omitempty,max=20,dive,max=50"`
	LinkedIn       *string  `json:"linkedin,omitempty" validate:"omitempty,url"`
	Role           *string  `json:"role,omitempty" validate:"omitempty,oneof=student alumni professor"`
}

// HandleUpdate merges the supplied profile fields; omitted fields keep
// their current values.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if req.StudentID != nil && *req.StudentID != "" {
		free, err := h.Users.StudentIDAvailable(ctx, *req.StudentID)
		if err != nil {
			respond.Error(w, h.Log, err)
			return
		}
		if !free {
			cur, err := h.Users.GetByID(ctx, uid)
			if err != nil || cur.Profile.StudentID != *req.StudentID {
				respond.Error(w, h.Log, apperr.Conflict("this student ID is already registered"))
				return
			}
		}
	}

	err := h.Users.UpdateProfile(ctx, uid, userstore.ProfileUpdate{
		Name:           req.Name,
		Bio:            req.Bio,
		StudentID:      req.StudentID,
		Department:     req.Department,
		GraduationYear: req.GraduationYear,
		Interests:      req.Interests,
		LinkedIn:       req.LinkedIn,
		Role:           req.Role,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Error(w, h.Log, apperr.NotFound("user not found"))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.Message(w, http.StatusOK, "profile updated")
}

// HandleDelete removes the signed-in user's account.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.Delete(ctx, uid); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Error(w, h.Log, apperr.NotFound("user not found"))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.Message(w, http.StatusOK, "account deleted")
}
