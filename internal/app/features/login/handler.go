// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	uierrors "github.com/serveease/admin/internal/app/features/errors"
	adminstore "github.com/serveease/admin/internal/app/store/admins"
	loginstore "github.com/serveease/admin/internal/app/store/logins"
	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/normalize"
	"github.com/serveease/admin/internal/app/system/passwords"
	"github.com/serveease/admin/internal/app/system/ratelimit"
	"github.com/serveease/admin/internal/app/system/timeouts"
	"github.com/serveease/admin/internal/app/system/viewdata"
	"github.com/serveease/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Lockout defaults: five failures inside fifteen minutes block the email.
const (
	DefaultMaxFailures   = 5
	DefaultLockoutWindow = 15 * time.Minute
)

// Failure reasons stored on login records.
const (
	reasonUnknownEmail = "unknown_email"
	reasonBadPassword  = "bad_password"
	reasonDisabled     = "disabled"
	reasonLocked       = "locked"
)

type Handler struct {
	Admins     *adminstore.Store
	Logins     *loginstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Site       *viewdata.Site
	Log        *zap.Logger

	// MaxFailures failed attempts within LockoutWindow block further
	// attempts for that email. Zero disables the lockout.
	MaxFailures   int
	LockoutWindow time.Duration

	// Throttle limits sign-in posts per client IP. Nil disables it.
	Throttle *ratelimit.Limiter
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, site *viewdata.Site, logger *zap.Logger) *Handler {
	return &Handler{
		Admins:        adminstore.New(db),
		Logins:        loginstore.New(db),
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		Site:          site,
		Log:           logger,
		MaxFailures:   DefaultMaxFailures,
		LockoutWindow: DefaultLockoutWindow,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error       string
	Email       string
	ReturnURL   string
	ReturnParam string
	ActionURL   string
}

func (h *Handler) formData(r *http.Request, email, ret, errKey string) loginFormData {
	base := h.Site.NewBaseVM(r, "login.title", "/")
	data := loginFormData{
		BaseVM:      base,
		Email:       email,
		ReturnURL:   ret,
		ReturnParam: h.returnParam(),
		ActionURL:   h.Site.Link(r, h.Site.Guard.Config().LoginPath),
	}
	if errKey != "" {
		data.Error = base.T(errKey)
	}
	return data
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, email, ret, errKey string) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	h.Site.Render(w, r, "login", h.formData(r, email, ret, errKey))
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, "", query.Get(r, h.returnParam()), "")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue(h.returnParam()))

	if email == "" || password == "" {
		h.renderForm(w, r, http.StatusBadRequest, email, ret, "login.error.missing")
		return
	}

	if h.Throttle != nil {
		if ip := ratelimit.ClientIP(r); !h.Throttle.Allow(ip) {
			h.Log.Warn("sign-in throttled", zap.String("ip", ip))
			w.Header().Set("Retry-After", strconv.Itoa(h.Throttle.RetryAfter()))
			h.renderForm(w, r, http.StatusTooManyRequests, email, ret, "login.error.throttled")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	/*── lockout ───────────────────────────────────────────────────────────*/

	if h.MaxFailures > 0 {
		since := time.Now().Add(-h.LockoutWindow)
		n, err := h.Logins.CountFailuresSince(ctx, email, since)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "count login failures", err, "A server error occurred.")
			return
		}
		if n >= int64(h.MaxFailures) {
			h.recordFailure(ctx, r, email, nil, reasonLocked)
			h.renderForm(w, r, http.StatusTooManyRequests, email, ret, "login.error.locked")
			return
		}
	}

	/*── look up + verify ──────────────────────────────────────────────────*/

	a, err := h.Admins.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, adminstore.ErrNotFound):
		h.recordFailure(ctx, r, email, nil, reasonUnknownEmail)
		h.renderForm(w, r, http.StatusUnauthorized, email, ret, "login.error.invalid")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "find admin by email", err, "A server error occurred.")
		return
	}

	if err := passwords.Check(a.PasswordHash, password); err != nil {
		h.recordFailure(ctx, r, email, a, reasonBadPassword)
		h.renderForm(w, r, http.StatusUnauthorized, email, ret, "login.error.invalid")
		return
	}

	// Disabled is only reported once the password is correct.
	if !a.IsActive() {
		h.recordFailure(ctx, r, email, a, reasonDisabled)
		h.renderForm(w, r, http.StatusForbidden, email, ret, "login.error.disabled")
		return
	}

	/*── issue the admin token ─────────────────────────────────────────────*/

	tokenID, err := h.SessionMgr.Login(w, r, auth.SessionAdmin{
		ID:    a.ID.Hex(),
		Name:  a.FullName,
		Email: a.Email,
		Role:  normalize.Role(a.Role),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "write admin token", err, "Unable to sign in. Please try again.")
		return
	}

	now := time.Now().UTC()
	if err := h.Admins.TouchLastLogin(ctx, a.ID, now); err != nil {
		h.Log.Warn("touch last login", zap.Error(err), zap.String("admin_id", a.ID.Hex()))
	}
	if err := h.Logins.Record(ctx, r, models.LoginRecord{
		AdminID:   a.ID.Hex(),
		Email:     email,
		Success:   true,
		TokenID:   tokenID,
		CreatedAt: now,
	}); err != nil {
		h.Log.Warn("record login", zap.Error(err), zap.String("admin_id", a.ID.Hex()))
	}

	if h.Throttle != nil {
		h.Throttle.Reset(ratelimit.ClientIP(r))
	}

	h.Log.Info("admin signed in",
		zap.String("admin_id", a.ID.Hex()),
		zap.String("role", a.Role))

	http.Redirect(w, r, h.destination(r, ret), http.StatusSeeOther)
}

// recordFailure stores a failed attempt. Errors are logged, never shown.
func (h *Handler) recordFailure(ctx context.Context, r *http.Request, email string, a *models.Admin, reason string) {
	rec := models.LoginRecord{
		Email:  email,
		Reason: reason,
	}
	if a != nil {
		rec.AdminID = a.ID.Hex()
	}
	if err := h.Logins.Record(ctx, r, rec); err != nil {
		h.Log.Warn("record failed login", zap.Error(err), zap.String("reason", reason))
	}
	h.Log.Info("admin sign-in failed", zap.String("email", email), zap.String("reason", reason))
}

// destination is where a successful sign-in lands: the return URL when it is
// a same-site path that is not the login route, else the localized landing.
func (h *Handler) destination(r *http.Request, ret string) string {
	landing := h.Site.Link(r, h.Site.Guard.Config().LandingPath)
	dest := urlutil.SafeReturn(ret, "", landing)
	if !strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "//") || strings.HasPrefix(dest, "/\\") {
		return landing
	}
	p := dest
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if h.Site.Guard.IsLogin(p) {
		return landing
	}
	return dest
}

func (h *Handler) returnParam() string {
	if p := h.Site.Guard.Config().ReturnParam; p != "" {
		return p
	}
	return "return"
}
