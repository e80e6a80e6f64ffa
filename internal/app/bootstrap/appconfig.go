// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging,
// CORS); AppConfig is everything specific to CampusHub: backing stores,
// token signing, mail, payments, and upload storage.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Redis leaderboard cache; empty address disables caching.
	RedisAddr     string
	RedisPassword string

	// Token signing
	JWTSecret string
	JWTTTL    time.Duration

	// Email (SendGrid); empty key logs mail instead of sending.
	SendGridKey string
	MailFrom    string
	SiteName    string

	// Stripe Checkout for paid event tickets; empty key disables paid events.
	StripeKey        string
	StripeSuccessURL string
	StripeCancelURL  string

	// Upload storage
	UploadPath string // local directory for uploaded files
	UploadURL  string // URL prefix the files are served under

	// Base URL for links in email, e.g. "https://campushub.example.edu"
	BaseURL string
}
