// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/dalemusser/campushub/internal/app/features/admin"
	authfeature "github.com/dalemusser/campushub/internal/app/features/auth"
	blogsfeature "github.com/dalemusser/campushub/internal/app/features/blogs"
	clubsfeature "github.com/dalemusser/campushub/internal/app/features/clubs"
	eventsfeature "github.com/dalemusser/campushub/internal/app/features/events"
	healthfeature "github.com/dalemusser/campushub/internal/app/features/health"
	leaderboardfeature "github.com/dalemusser/campushub/internal/app/features/leaderboard"
	profilefeature "github.com/dalemusser/campushub/internal/app/features/profile"
	blogstore "github.com/dalemusser/campushub/internal/app/store/blogs"
	clubstore "github.com/dalemusser/campushub/internal/app/store/clubs"
	eventstore "github.com/dalemusser/campushub/internal/app/store/events"
	ticketstore "github.com/dalemusser/campushub/internal/app/store/tickets"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	sysauth "github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/mailer"
	"github.com/dalemusser/campushub/internal/app/system/metrics"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/payments"
	"github.com/dalemusser/campushub/internal/app/system/uploads"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. CampusHub builds the shared system
// services (tokens, mail, payments, uploads, ranking, notifications), then
// mounts the JSON API under /api/v1 plus the operational endpoints.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	tokens, err := sysauth.NewManager(appCfg.JWTSecret, appCfg.JWTTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	uploadStore, err := uploads.NewLocal(appCfg.UploadPath, appCfg.UploadURL)
	if err != nil {
		logger.Error("upload store init failed", zap.Error(err))
		return nil, err
	}

	users := userstore.New(db)
	clubs := clubstore.New(db)
	events := eventstore.New(db)
	tickets := ticketstore.New(db)
	blogs := blogstore.New(db)

	mail := mailer.New(appCfg.SendGridKey, appCfg.SiteName, appCfg.MailFrom, logger)
	pay := payments.New(appCfg.StripeKey, appCfg.StripeSuccessURL, appCfg.StripeCancelURL)
	sink := notify.New(users, logger)
	engine := sharedRankEngine(users, deps, logger)

	secure := coreCfg.Env == "prod"

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(tokens.LoadUser)

	// Operational endpoints for load balancers and scrapers.
	healthHandler := &healthfeature.Handler{Client: deps.MongoClient, Redis: deps.Redis, Log: logger}
	r.Get("/healthz", healthHandler.HandleHealthz)
	r.Handle("/metrics", metrics.Handler())

	// Uploaded files (avatars, documents, banners) with pre-compressed
	// file support.
	r.Handle(appCfg.UploadURL+"/*", fileserver.Handler(appCfg.UploadURL, uploadStore.BaseDir()))

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", authfeature.Routes(&authfeature.Handler{
			Users: users, Tokens: tokens, Mail: mail,
			Rank: engine, Notify: sink, Log: logger,
			SecureCookies: secure,
		}))

		api.Mount("/me", profilefeature.Routes(&profilefeature.Handler{
			Users: users, Uploads: uploadStore, Log: logger,
		}))

		api.Mount("/users", profilefeature.PublicRoutes(&profilefeature.Handler{
			Users: users, Log: logger,
		}))

		api.Mount("/clubs", clubsfeature.Routes(&clubsfeature.Handler{
			Clubs: clubs, Users: users, DB: db,
			Uploads: uploadStore, Notify: sink, Log: logger,
		}))

		api.Mount("/events", eventsfeature.Routes(&eventsfeature.Handler{
			Events: events, Tickets: tickets, Clubs: clubs, Users: users,
			DB: db, Rank: engine, Notify: sink, Mail: mail,
			Payments: pay, Uploads: uploadStore, Log: logger,
		}))

		api.Mount("/blogs", blogsfeature.Routes(&blogsfeature.Handler{
			Blogs: blogs, Users: users, Clubs: clubs, DB: db,
			Rank: engine, Notify: sink, Log: logger,
		}))

		api.Mount("/leaderboard", leaderboardfeature.Routes(&leaderboardfeature.Handler{
			Rank: engine, Log: logger,
		}))

		api.Mount("/admin", adminfeature.Routes(&adminfeature.Handler{
			Clubs: clubs, Users: users, DB: db,
			Notify: sink, Log: logger,
		}))
	})

	return r, nil
}
