// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/serveease/admin/internal/app/system/routeguard"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ServeEase admin.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SERVEEASE_MONGO_URI, SERVEEASE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "serveease", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Admin token signing key (must be strong in production)"},
	{Name: "session_name", Default: routeguard.DefaultCookieName, Desc: "Admin token cookie name"},
	{Name: "session_domain", Default: "", Desc: "Admin token cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Admin token lifetime (e.g., 12h, 30m)"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-0123456789abcd", Desc: "32-byte CSRF key (must be strong in production)"},

	// Route guard
	{Name: "guard_mode", Default: "locale", Desc: "Route guard mode: 'locale' (/en/...) or 'flat'"},
	{Name: "guard_cookie", Default: "", Desc: "Cookie the guard checks for presence (blank means the validated session_name token)"},
	{Name: "guard_login_path", Default: routeguard.DefaultLoginPath, Desc: "Login route, without locale prefix"},
	{Name: "guard_landing_path", Default: routeguard.DefaultLanding, Desc: "Landing route, without locale prefix"},
	{Name: "guard_default_locale", Default: routeguard.DefaultLocale, Desc: "Default locale"},
	{Name: "guard_locales", Default: "", Desc: "Comma-separated supported locales (blank means every catalog)"},
	{Name: "guard_bypass", Default: "/static/**,/health,/health/**,/favicon.ico,/robots.txt,/test", Desc: "Comma-separated patterns that skip the guard"},
	{Name: "guard_protected", Default: "", Desc: "Comma-separated patterns that need a token (blank means all)"},
	{Name: "guard_rules_file", Default: "", Desc: "Optional YAML file with guard rules"},
	{Name: "guard_return_param", Default: "return", Desc: "Query parameter carrying the original URI to login (blank disables)"},

	// Sign-in lockout
	{Name: "login_max_failures", Default: 5, Desc: "Failed sign-ins before lockout (0 disables)"},
	{Name: "login_lockout", Default: "15m", Desc: "Window in which failures are counted"},
	{Name: "login_ip_burst", Default: 10, Desc: "Sign-in posts per client IP before throttling (0 disables)"},
	{Name: "login_ip_interval", Default: "6s", Desc: "Refill interval of the per-IP sign-in allowance"},

	// Login records
	{Name: "login_retention", Default: "2160h", Desc: "How long login records are kept (default 90 days)"},
	{Name: "purge_schedule", Default: "15 3 * * *", Desc: "Cron schedule of the login record purge"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document queries"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list queries and aggregations"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for maintenance work"},

	// SuperAdmin bootstrap
	{Name: "superadmin_email", Default: "", Desc: "Email of the superadmin (promotes/creates on startup)"},
	{Name: "superadmin_password", Default: "", Desc: "Password for a superadmin created on startup"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, SERVEEASE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SERVEEASE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 12*time.Hour),

		CSRFKey: appValues.String("csrf_key"),

		GuardMode:          appValues.String("guard_mode"),
		GuardCookie:        appValues.String("guard_cookie"),
		GuardLoginPath:     appValues.String("guard_login_path"),
		GuardLandingPath:   appValues.String("guard_landing_path"),
		GuardDefaultLocale: appValues.String("guard_default_locale"),
		GuardLocales:       splitList(appValues.String("guard_locales")),
		GuardBypass:        splitList(appValues.String("guard_bypass")),
		GuardProtected:     splitList(appValues.String("guard_protected")),
		GuardRulesFile:     appValues.String("guard_rules_file"),
		GuardReturnParam:   appValues.String("guard_return_param"),

		LoginMaxFailures: appValues.Int("login_max_failures"),
		LoginLockout:     appValues.Duration("login_lockout", 15*time.Minute),
		LoginIPBurst:     appValues.Int("login_ip_burst"),
		LoginIPInterval:  appValues.Duration("login_ip_interval", 6*time.Second),

		LoginRetention: appValues.Duration("login_retention", 90*24*time.Hour),
		PurgeSchedule:  appValues.String("purge_schedule"),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),

		SuperAdminEmail:    appValues.String("superadmin_email"),
		SuperAdminPassword: appValues.String("superadmin_password"),
	}

	if appCfg.GuardCookie == "" {
		appCfg.GuardCookie = appCfg.SessionName
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI, guard mode and CSRF key are checked here so that
// mistakes surface before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if _, err := routeguard.ParseMode(appCfg.GuardMode); err != nil {
		return err
	}
	if len(appCfg.CSRFKey) != 32 {
		return fmt.Errorf("csrf_key must be exactly 32 bytes, got %d", len(appCfg.CSRFKey))
	}
	if appCfg.LoginRetention <= 0 {
		return errors.New("login_retention must be positive")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		return errors.New("session_key must be set in production")
	}
	return nil
}

// splitList parses a comma-separated config value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
