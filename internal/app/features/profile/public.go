// internal/app/features/profile/public.go
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
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PublicRoutes mounts the lookup endpoints other users may hit. The full
// account document stays behind /me; this surface is the redacted view.
func PublicRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{userID}", h.HandlePublicGet)
	return r
}

// publicView is what one user may see of another: no email, no
// notifications, no admin flags, no uploaded documents.
type publicView struct {
	ID             primitive.ObjectID   `json:"id"`
	Name           string               `json:"name"`
	Username       string               `json:"username,omitempty"`
	Role           string               `json:"role"`
	Picture        string               `json:"picture,omitempty"`
	Bio            string               `json:"bio,omitempty"`
	Department     string               `json:"department,omitempty"`
	GraduationYear string               `json:"graduation_year,omitempty"`
	Interests      []string             `json:"interests,omitempty"`
	LinkedIn       string               `json:"linkedin,omitempty"`
	ActivityPoints int                  `json:"activity_points"`
	Rank           *int                 `json:"rank,omitempty"`
	ClubsMember    []primitive.ObjectID `json:"clubs_member"`
	BlogsAuthored  []primitive.ObjectID `json:"blogs_authored"`
}

func publicViewOf(u models.User) publicView {
	return publicView{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		Role:           u.Profile.Role,
		Picture:        u.Profile.Picture,
		Bio:            u.Profile.Bio,
		Department:     u.Profile.Department,
		GraduationYear: u.Profile.GraduationYear,
		Interests:      u.Profile.Interests,
		LinkedIn:       u.Profile.LinkedIn,
		ActivityPoints: u.Profile.ActivityPoints,
		Rank:           u.Profile.Rank,
		ClubsMember:    u.ClubsMember,
		BlogsAuthored:  u.BlogsAuthored,
	}
}

// HandlePublicGet returns another user's redacted profile.
func (h *Handler) HandlePublicGet(w http.ResponseWriter, r *http.Request) {
	uid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("invalid user id"))
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
	respond.JSON(w, http.StatusOK, publicViewOf(u))
}

// HandleRank returns the signed-in user's standing.
func (h *Handler) HandleRank(w http.ResponseWriter, r *http.Request) {
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
	respond.JSON(w, http.StatusOK, map[string]any{
		"activity_points": u.Profile.ActivityPoints,
		"rank":            u.Profile.Rank,
	})
}
