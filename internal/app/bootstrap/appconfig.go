// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings: ports, TLS, logging, CORS and body limits.
//
// The struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Admin token (session cookie) configuration
	SessionKey    string        // Secret key for signing the cookie (must be strong in production)
	SessionName   string        // Cookie name; the guard checks for this cookie
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Token lifetime

	// CSRF protection for form posts
	CSRFKey string // 32-byte key for gorilla/csrf

	// Route guard configuration
	GuardMode          string   // "locale" or "flat"
	GuardCookie        string   // Cookie the guard looks for (defaults to SessionName)
	GuardLoginPath     string   // Unprefixed login route
	GuardLandingPath   string   // Unprefixed landing route
	GuardDefaultLocale string   // Default locale
	GuardLocales       []string // Supported locales (empty = every catalog)
	GuardBypass        []string // Patterns that skip the guard
	GuardProtected     []string // Patterns that need a token (empty = everything but login)
	GuardRulesFile     string   // Optional YAML rules file, applied before GuardBypass
	GuardReturnParam   string   // Query parameter carrying the original URI to login

	// Sign-in lockout
	LoginMaxFailures int
	LoginLockout     time.Duration
	LoginIPBurst     int           // Sign-in posts per IP before throttling (0 disables)
	LoginIPInterval  time.Duration // One more post allowed per interval

	// Login record retention
	LoginRetention time.Duration
	PurgeSchedule  string

	// Database timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// SuperAdmin bootstrap
	SuperAdminEmail    string // Promoted (or created) as superadmin on startup
	SuperAdminPassword string // Used only when the superadmin is created
}
