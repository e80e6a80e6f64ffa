// internal/app/features/auth/login.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	// Identifier is the email or username.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

type userSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
	Points   int    `json:"activity_points"`
	Rank     *int   `json:"rank,omitempty"`
}

func summarize(u models.User) userSummary {
	return userSummary{
		ID:       u.ID.Hex(),
		Name:     u.Name,
		Email:    u.Email,
		Username: u.Username,
		IsAdmin:  u.Admin.Active(),
		Points:   u.Profile.ActivityPoints,
		Rank:     u.Profile.Rank,
	}
}

func verifiedNotification() notify.Notification {
	return notify.Notification{
		Type:    models.NotificationVerification,
		Message: "Your account is verified. Welcome aboard!",
	}
}

// HandleLogin authenticates by email or username, issues a token, and
// awards the login activity points.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	u, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	token, err := h.Tokens.Issue(u.ID.Hex(), u.Email, u.Username)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.Tokens.SetCookie(w, token, h.SecureCookies)

	if err := h.Rank.Award(ctx, u.ID, ranking.PointsLogin); err != nil {
		h.Log.Warn("login points award failed",
			zap.String("user_id", u.ID.Hex()), zap.Error(err))
	} else {
		u.Profile.ActivityPoints += ranking.PointsLogin
	}

	respond.JSON(w, http.StatusOK, loginResponse{Token: token, User: summarize(u)})
}

// HandleAdminLogin authenticates like HandleLogin but additionally requires
// active admin privileges. No activity points are awarded.
func (h *Handler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	u, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if !u.Admin.Active() {
		respond.Error(w, h.Log, apperr.Forbidden("admin privileges required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	token, err := h.Tokens.Issue(u.ID.Hex(), u.Email, u.Username)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.Tokens.SetCookie(w, token, h.SecureCookies)

	if err := h.Users.TouchAdminActive(ctx, u.ID); err != nil {
		h.Log.Warn("admin last-active stamp failed", zap.Error(err))
	}

	respond.JSON(w, http.StatusOK, loginResponse{Token: token, User: summarize(u)})
}

// HandleLogout clears the auth cookie. Bearer clients just drop the token.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Tokens.ClearCookie(w)
	respond.Message(w, http.StatusOK, "logged out")
}

// authenticate resolves and checks credentials, writing the error response
// itself when authentication fails. Invalid identifier and wrong password
// collapse into one message so the endpoint does not confirm which emails
// have accounts.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return models.User{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByIdentifier(ctx, strings.TrimSpace(req.Identifier))
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.JSON(w, http.StatusUnauthorized, map[string]string{
				"kind": "unauthorized", "message": "invalid credentials",
			})
			return models.User{}, false
		}
		respond.Error(w, h.Log, err)
		return models.User{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{
			"kind": "unauthorized", "message": "invalid credentials",
		})
		return models.User{}, false
	}
	if !u.IsVerified {
		respond.Error(w, h.Log, apperr.InvalidState("account is not verified; check your email for the code"))
		return models.User{}, false
	}
	return u, true
}
