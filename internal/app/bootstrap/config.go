// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CampusHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: CAMPUSHUB_MONGO_URI, CAMPUSHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "campushub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "redis_addr", Default: "", Desc: "Redis address for the leaderboard cache (blank disables caching)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},

	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "JWT signing secret (must be strong in production)"},
	{Name: "jwt_ttl", Default: "72h", Desc: "JWT lifetime (e.g., 24h, 72h)"},

	{Name: "sendgrid_key", Default: "", Desc: "SendGrid API key (blank logs mail instead of sending)"},
	{Name: "mail_from", Default: "noreply@campushub.example.edu", Desc: "From email address"},
	{Name: "site_name", Default: "CampusHub", Desc: "Display name used in email and notifications"},

	{Name: "stripe_key", Default: "", Desc: "Stripe secret key (blank disables paid events)"},
	{Name: "stripe_success_url", Default: "http://localhost:3000/checkout/success", Desc: "Checkout success redirect URL"},
	{Name: "stripe_cancel_url", Default: "http://localhost:3000/checkout/cancel", Desc: "Checkout cancel redirect URL"},

	{Name: "upload_path", Default: "./uploads", Desc: "Local directory for uploaded files"},
	{Name: "upload_url", Default: "/files", Desc: "URL prefix for serving uploaded files"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for links in email"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// config.LoadWithAppConfig merges .env files, config files, CAMPUSHUB_*
// environment variables, and command-line flags, with flags taking
// precedence.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CAMPUSHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 72*time.Hour),

		SendGridKey: appValues.String("sendgrid_key"),
		MailFrom:    appValues.String("mail_from"),
		SiteName:    appValues.String("site_name"),

		StripeKey:        appValues.String("stripe_key"),
		StripeSuccessURL: appValues.String("stripe_success_url"),
		StripeCancelURL:  appValues.String("stripe_cancel_url"),

		UploadPath: appValues.String("upload_path"),
		UploadURL:  appValues.String("upload_url"),

		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before any
// backends are touched.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if len(appCfg.JWTSecret) < 32 {
		return fmt.Errorf("jwt_secret must be at least 32 characters")
	}
	if coreCfg.Env == "prod" && appCfg.JWTSecret == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("jwt_secret must be changed from the dev default in production")
	}
	return nil
}
