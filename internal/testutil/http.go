// internal/testutil/http.go
package testutil

import (
	"net/http"

	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/domain/models"
)

// WithUser injects the user as the signed-in session identity, bypassing
// token verification. Handler tests use this instead of minting JWTs.
func WithUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		Username: u.Username,
	})
}
