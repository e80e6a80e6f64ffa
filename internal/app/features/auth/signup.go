// internal/app/features/auth/signup.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/dalemusser/campushub/internal/app/system/authz"
	"github.com/dalemusser/campushub/internal/app/system/mailer"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=student alumni professor"`
}

// HandleSignup creates an unverified account and emails the OTP.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !validate.SimpleEmailValid(req.Email) {
		respond.Error(w, h.Log, apperr.InvalidArgument("invalid email address"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	code, err := generateOTP()
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	u, err := h.Users.Create(ctx, models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		Profile:      models.Profile{Role: req.Role},
	}, code)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			respond.Error(w, h.Log, apperr.Conflict(err.Error()))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}

	email := mailer.BuildVerificationEmail(mailer.VerificationEmailData{
		SiteName:  h.Mail.SiteName(),
		Code:      code,
		ExpiresIn: "15 minutes",
	})
	email.To = u.Email
	h.Mail.Send(email)

	h.Log.Info("account created", zap.String("user_id", u.ID.Hex()))
	respond.JSON(w, http.StatusCreated, map[string]string{
		"message": "account created; check your email for the verification code",
		"user_id": u.ID.Hex(),
	})
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

// HandleVerifyOTP confirms the emailed code and activates the account.
func (h *Handler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.VerifyOTP(ctx, req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			respond.Error(w, h.Log, apperr.NotFound("no account with this email"))
		case errors.Is(err, userstore.ErrOTPExpired):
			respond.Error(w, h.Log, apperr.InvalidState(err.Error()))
		case errors.Is(err, userstore.ErrOTPInvalid):
			respond.Error(w, h.Log, apperr.InvalidArgument(err.Error()))
		default:
			respond.Error(w, h.Log, err)
		}
		return
	}

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err == nil {
		welcome := mailer.BuildWelcomeEmail(mailer.WelcomeEmailData{
			SiteName: h.Mail.SiteName(),
			Name:     u.Name,
		})
		welcome.To = u.Email
		h.Mail.Send(welcome)
		h.Notify.Send(ctx, u.ID, verifiedNotification())
	}

	respond.Message(w, http.StatusOK, "account verified")
}

type resendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleResendOTP issues a fresh code for an unverified account.
func (h *Handler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req resendOTPRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Error(w, h.Log, apperr.NotFound("no account with this email"))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	if u.IsVerified {
		respond.Error(w, h.Log, apperr.InvalidState("account is already verified"))
		return
	}

	code, err := generateOTP()
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if err := h.Users.ResetOTP(ctx, u.ID, code); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	email := mailer.BuildVerificationEmail(mailer.VerificationEmailData{
		SiteName:  h.Mail.SiteName(),
		Code:      code,
		ExpiresIn: "15 minutes",
	})
	email.To = u.Email
	h.Mail.Send(email)

	respond.Message(w, http.StatusOK, "verification code sent")
}

// HandleUsernameAvailable reports whether ?username= is free.
func (h *Handler) HandleUsernameAvailable(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		respond.Error(w, h.Log, apperr.InvalidArgument("username query parameter required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	free, err := h.Users.UsernameAvailable(ctx, username)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"username": username, "available": free})
}

// HandleStudentIDAvailable reports whether ?student_id= is unregistered.
func (h *Handler) HandleStudentIDAvailable(w http.ResponseWriter, r *http.Request) {
	studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
	if studentID == "" {
		respond.Error(w, h.Log, apperr.InvalidArgument("student_id query parameter required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	free, err := h.Users.StudentIDAvailable(ctx, studentID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"student_id": studentID, "available": free})
}

type setUsernameRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
}

// HandleSetUsername assigns the signed-in user's username.
func (h *Handler) HandleSetUsername(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	var req setUsernameRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetUsername(ctx, uid, strings.TrimSpace(req.Username)); err != nil {
		if errors.Is(err, userstore.ErrDuplicateUsername) {
			respond.Error(w, h.Log, apperr.Conflict(err.Error()))
			return
		}
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Error(w, h.Log, apperr.NotFound("user not found"))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.Message(w, http.StatusOK, "username set")
}
