// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	adminsfeature "github.com/serveease/admin/internal/app/features/admins"
	bookingsfeature "github.com/serveease/admin/internal/app/features/bookings"
	dashboardfeature "github.com/serveease/admin/internal/app/features/dashboard"
	_ "github.com/serveease/admin/internal/app/features/dashboard/views"
	errorsfeature "github.com/serveease/admin/internal/app/features/errors"
	healthfeature "github.com/serveease/admin/internal/app/features/health"
	loginfeature "github.com/serveease/admin/internal/app/features/login"
	logoutfeature "github.com/serveease/admin/internal/app/features/logout"
	adminstore "github.com/serveease/admin/internal/app/store/admins"
	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/i18n"
	"github.com/serveease/admin/internal/app/system/ratelimit"
	"github.com/serveease/admin/internal/app/system/routeguard"
	"github.com/serveease/admin/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
//
// Request flow: CSRF check, then LoadSessionAdmin puts the admin (if the
// token cookie is valid) into the context, then the route guard decides
// Continue or RedirectTo. Health and static assets are bypass rules.
// Feature routes live under /{locale} in locale mode and at the root in
// flat mode.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	bundle, err := i18n.LoadEmbedded(appCfg.GuardDefaultLocale)
	if err != nil {
		logger.Error("message catalogs failed to load", zap.Error(err))
		return nil, err
	}
	for _, loc := range bundle.Locales() {
		if missing := bundle.Missing(loc); len(missing) > 0 {
			logger.Warn("message catalog is incomplete; default locale text will be shown",
				zap.String("locale", loc), zap.Strings("keys", missing))
		}
	}

	guard, err := buildGuard(appCfg, bundle, logger)
	if err != nil {
		logger.Error("route guard init failed", zap.Error(err))
		return nil, err
	}

	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	// Re-validate every token against the store so disabled admins lose
	// access on their next request.
	sessionMgr.SetAdminFetcher(adminstore.NewFetcher(deps.MongoDatabase))

	site := &viewdata.Site{I18n: bundle, Guard: guard}
	sessionMgr.Localize = site.Link

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	return newRouter(routerParts{
		appCfg:     appCfg,
		secure:     secure,
		deps:       deps,
		guard:      guard,
		site:       site,
		sessionMgr: sessionMgr,
		logger:     logger,
	}), nil
}

// routerParts are the built pieces newRouter wires together.
type routerParts struct {
	appCfg     AppConfig
	secure     bool
	deps       DBDeps
	guard      *routeguard.Guard
	site       *viewdata.Site
	sessionMgr *auth.SessionManager
	logger     *zap.Logger
}

// newRouter mounts every route behind CSRF, LoadSessionAdmin and the guard.
func newRouter(p routerParts) chi.Router {
	appCfg, secure, deps := p.appCfg, p.secure, p.deps
	guard, site, sessionMgr, logger := p.guard, p.site, p.sessionMgr, p.logger

	errLog := errorsfeature.NewErrorLogger(logger, site)
	errorsHandler := errorsfeature.NewHandler(site)

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)

	if !secure {
		r.Use(plaintextCSRF)
	}
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.FieldName("csrf_token"),
		csrf.ErrorHandler(http.HandlerFunc(errorsHandler.Forbidden)),
	))
	r.Use(sessionMgr.LoadSessionAdmin)
	r.Use(guard.Middleware)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	pages := chi.NewRouter()
	pages.NotFound(errorsHandler.NotFound)

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, site, logger)
	loginHandler.MaxFailures = appCfg.LoginMaxFailures
	loginHandler.LockoutWindow = appCfg.LoginLockout
	if appCfg.LoginIPBurst > 0 {
		loginHandler.Throttle = ratelimit.New(appCfg.LoginIPBurst, appCfg.LoginIPInterval)
	}
	pages.Mount(guard.Config().LoginPath, loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, site, logger)
	pages.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	pages.Get(sessionMgr.ForbiddenPath, errorsHandler.Forbidden)

	// Bookings and admins
	bookingsHandler := bookingsfeature.NewHandler(deps.MongoDatabase, site, errLog, logger)
	pages.Mount("/bookings", bookingsfeature.Routes(bookingsHandler))

	adminsHandler := adminsfeature.NewHandler(deps.MongoDatabase, site, errLog, logger)
	pages.Mount("/admins", adminsfeature.Routes(adminsHandler, sessionMgr))

	// Landing
	dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, site, errLog, logger)
	landing := guard.Config().LandingPath
	pages.Mount(landing, dashboardfeature.Routes(dashboardHandler))
	if landing != "/" {
		pages.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, site.Link(r, landing), http.StatusSeeOther)
		})
	}

	if guard.Mode() == routeguard.ModeLocalePrefixed {
		r.Route("/{locale}", func(lr chi.Router) {
			lr.Use(requireKnownLocale(guard, errorsHandler.NotFound))
			lr.Mount("/", pages)
		})
	} else {
		r.Mount("/", pages)
	}

	logger.Info("routes mounted",
		zap.Stringer("guard_mode", guard.Mode()),
		zap.Bool("secure_cookies", secure))

	return r
}

// plaintextCSRF tells gorilla/csrf the request arrived over plain HTTP, so
// its Referer check does not demand https during local development.
func plaintextCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// requireKnownLocale answers 404 for a /{locale} segment the guard does not
// know. Such paths are only reached by signed-in admins.
func requireKnownLocale(guard *routeguard.Guard, notFound http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := guard.LocaleOf(r.URL.Path); !ok {
				notFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
