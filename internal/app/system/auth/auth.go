package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	adminIDKey    = "admin_id"
	adminNameKey  = "admin_name"
	adminEmailKey = "admin_email"
	adminRoleKey  = "admin_role"
	tokenIDKey    = "token_id"
	issuedAtKey   = "issued_at"
)

// Roles an admin account can hold.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-admin helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionAdmin is what we keep in the session and inject into r.Context().
type SessionAdmin struct {
	ID      string
	Name    string
	Email   string
	Role    string
	TokenID string
}

// IsSuperAdmin reports whether the admin can manage other admins.
func (a *SessionAdmin) IsSuperAdmin() bool {
	return a != nil && strings.EqualFold(a.Role, RoleSuperAdmin)
}

type ctxKey string

const currentAdminKey ctxKey = "currentAdmin"

// CurrentAdmin returns the signed-in admin & "found?" flag.
func CurrentAdmin(r *http.Request) (*SessionAdmin, bool) {
	a, ok := r.Context().Value(currentAdminKey).(*SessionAdmin)
	return a, ok && a != nil
}

// HasToken reports whether the request carries a valid admin token. It is
// only meaningful behind LoadSessionAdmin.
func HasToken(r *http.Request) bool {
	_, ok := CurrentAdmin(r)
	return ok
}

// WithTestAdmin injects an admin into the request context. For tests.
func WithTestAdmin(r *http.Request, a *SessionAdmin) *http.Request {
	return withAdmin(r, a)
}

// AdminFetcher loads fresh admin data for a session. It returns nil when
// the admin no longer exists or is disabled.
type AdminFetcher interface {
	FetchAdmin(ctx context.Context, adminID string) *SessionAdmin
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// ErrEmptySessionKey is returned when no signing key is configured.
var ErrEmptySessionKey = errors.New("session key is empty; provide ≥32 random chars")

// SessionManager owns the signed admin-token cookie.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	maxAge  time.Duration
	fetcher AdminFetcher
	log     *zap.Logger

	// ForbiddenPath is where RequireRole sends signed-in admins without the
	// needed role.
	ForbiddenPath string

	// Localize, when set, maps ForbiddenPath to the request's locale.
	Localize func(r *http.Request, p string) string
}

// NewSessionManager builds a cookie store signed with sessionKey.
//
// In production (secure=true) cookies are Secure + SameSite=Strict; in local
// dev over http://localhost use secure=false so the browser keeps them.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, ErrEmptySessionKey
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		return nil, fmt.Errorf("session cookie name is empty")
	}
	if maxAge <= 0 {
		maxAge = 12 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteStrictMode
	}
	store.MaxAge(int(maxAge.Seconds()))

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{
		store:         store,
		name:          name,
		maxAge:        maxAge,
		log:           logger,
		ForbiddenPath: "/forbidden",
	}, nil
}

// Name is the admin-token cookie name.
func (m *SessionManager) Name() string {
	return m.name
}

// SetAdminFetcher makes LoadSessionAdmin re-validate every session against
// the store, so disabled admins lose access on their next request.
func (m *SessionManager) SetAdminFetcher(f AdminFetcher) {
	m.fetcher = f
}

// Login writes a fresh admin token for a. It returns the new token id.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, a SessionAdmin) (string, error) {
	sess, _ := m.store.Get(r, m.name) // a bad cookie still yields a usable new session

	// Drop anything left over from a previous session.
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	tokenID := uuid.NewString()
	sess.Values[adminIDKey] = a.ID
	sess.Values[adminNameKey] = a.Name
	sess.Values[adminEmailKey] = a.Email
	sess.Values[adminRoleKey] = a.Role
	sess.Values[tokenIDKey] = tokenID
	sess.Values[issuedAtKey] = time.Now().UTC().Unix()

	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return tokenID, nil
}

// Logout expires the admin token cookie.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionAdmin injects the admin into context if the token cookie is
// valid. Tampered or expired cookies are treated as absent.
func (m *SessionManager) LoadSessionAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.store.Get(r, m.name)
		if err != nil {
			m.log.Debug("ignoring invalid admin token", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		id := getString(sess, adminIDKey)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		a := &SessionAdmin{
			ID:      id,
			Name:    getString(sess, adminNameKey),
			Email:   getString(sess, adminEmailKey),
			Role:    getString(sess, adminRoleKey),
			TokenID: getString(sess, tokenIDKey),
		}

		if m.fetcher != nil {
			fresh := m.fetcher.FetchAdmin(r.Context(), id)
			if fresh == nil {
				m.log.Info("admin token no longer valid", zap.String("admin_id", id))
				next.ServeHTTP(w, r)
				return
			}
			fresh.TokenID = a.TokenID
			a = fresh
		}

		next.ServeHTTP(w, withAdmin(r, a))
	})
}

// RequireRole lets through admins holding one of the allowed roles.
// Signed-out requests get 401; wrong-role requests go to ForbiddenPath
// (HTML), HX-Redirect (HTMX) or a plain 403 (API).
func (m *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := CurrentAdmin(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if _, has := set[strings.ToLower(a.Role)]; has {
				next.ServeHTTP(w, r)
				return
			}

			forbidden := m.ForbiddenPath
			if m.Localize != nil {
				forbidden = m.Localize(r, forbidden)
			}
			dest := forbidden + "?return=" + url.QueryEscape(r.URL.RequestURI())
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", dest)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			if wantsHTML(r) {
				http.Redirect(w, r, dest, http.StatusSeeOther)
				return
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

// helpers

func withAdmin(r *http.Request, a *SessionAdmin) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentAdminKey, a))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
