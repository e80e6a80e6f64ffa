// internal/app/features/auth/handler.go

// Package auth implements signup with email OTP verification, username
// selection, and login for both regular users and site admins.
package auth

import (
	"crypto/rand"
	"encoding/hex"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	sysauth "github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/mailer"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"go.uber.org/zap"
)

type Handler struct {
	Users  *userstore.Store
	Tokens *sysauth.Manager
	Mail   *mailer.Mailer
	Rank   *ranking.Engine
	Notify *notify.Sink
	Log    *zap.Logger

	// SecureCookies marks the auth cookie Secure; off only in dev.
	SecureCookies bool
}

// generateOTP returns a 6-character hex verification code.
func generateOTP() (string, error) {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
