package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/serveease/admin/internal/app/features/logout"
	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/routeguard"
	"github.com/serveease/admin/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, mode routeguard.Mode) *logout.Handler {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only-0123456789", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	site, _ := testutil.NewSite(t, mode)
	return logout.NewHandler(sessionMgr, site, logger)
}

func TestServeLogout_RedirectsToLocalizedLogin(t *testing.T) {
	handler := newTestHandler(t, routeguard.ModeLocalePrefixed)

	req := testutil.NewAuthenticatedRequest("POST", "/fr/logout", testutil.AdminUser())
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/fr/login" {
		t.Errorf("Location: got %q, want %q", got, "/fr/login")
	}
}

func TestServeLogout_FlatMode(t *testing.T) {
	handler := newTestHandler(t, routeguard.ModeFlat)

	req := httptest.NewRequest("GET", "/logout", nil)
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if got := rec.Header().Get("Location"); got != "/login" {
		t.Errorf("Location: got %q, want %q", got, "/login")
	}
}

func TestServeLogout_ClearsSessionCookie(t *testing.T) {
	handler := newTestHandler(t, routeguard.ModeLocalePrefixed)

	req := httptest.NewRequest("GET", "/en/logout", nil)
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge >= 0 {
				t.Errorf("expected MaxAge < 0 to delete cookie, got %d", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be cleared")
	}
}

func TestServeLogout_HTMX(t *testing.T) {
	handler := newTestHandler(t, routeguard.ModeLocalePrefixed)

	req := httptest.NewRequest("POST", "/en/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/en/login" {
		t.Errorf("HX-Redirect: got %q, want %q", got, "/en/login")
	}
}
