// internal/app/features/auth/routes.go
package auth

import (
	sysauth "github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the auth endpoints. Typically: r.Mount("/auth", auth.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.HandleSignup)
	r.Post("/verify-otp", h.HandleVerifyOTP)
	r.Post("/resend-otp", h.HandleResendOTP)
	r.Get("/username-available", h.HandleUsernameAvailable)
	r.Get("/student-id-available", h.HandleStudentIDAvailable)
	r.Post("/login", h.HandleLogin)
	r.Post("/admin/login", h.HandleAdminLogin)
	r.Post("/logout", h.HandleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(sysauth.RequireSignedIn)
		pr.Post("/username", h.HandleSetUsername)
	})

	return r
}
