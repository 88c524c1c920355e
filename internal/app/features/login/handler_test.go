package login_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/serveease/admin/internal/app/features/errors"
	"github.com/serveease/admin/internal/app/features/login"
	loginstore "github.com/serveease/admin/internal/app/store/logins"
	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/ratelimit"
	"github.com/serveease/admin/internal/app/system/routeguard"
	"github.com/serveease/admin/internal/testutil"
	"go.uber.org/zap"
)

const cookieName = "test-session"

func newTestHandler(t *testing.T, mode routeguard.Mode) (*login.Handler, *testutil.Fixtures, *testutil.RenderLog) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	site, renders := testutil.NewSite(t, mode)
	errLog := uierrors.NewErrorLogger(logger, site)

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only-0123456789", cookieName, "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	handler := login.NewHandler(db, sessionMgr, errLog, site, logger)
	return handler, testutil.NewFixtures(t, db), renders
}

func postLogin(h *login.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.HandleLoginPost(rec, req)
	return rec
}

func credentials(email string) url.Values {
	return url.Values{
		"email":    {email},
		"password": {testutil.DefaultPassword},
	}
}

func hasSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			return true
		}
	}
	return false
}

func TestHandleLoginPost_Success(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t, routeguard.ModeLocalePrefixed)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "Test Admin", "admin@example.com")

	rec := postLogin(handler, "/en/login", credentials("admin@example.com"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/en" {
		t.Errorf("Location: got %q, want %q", got, "/en")
	}
	if !hasSessionCookie(rec) {
		t.Error("expected session cookie to be set")
	}

	records, err := loginstore.New(fixtures.DB()).Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 1 || !records[0].Success || records[0].AdminID != admin.ID.Hex() {
		t.Errorf("expected one successful record for the admin, got %+v", records)
	}
	if records[0].TokenID == "" {
		t.Error("expected the token id on the success record")
	}
}

func TestHandleLoginPost_FrenchLocaleLandsInFrench(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t, routeguard.ModeLocalePrefixed)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAdmin(ctx, "Test Admin", "admin@example.com")

	rec := postLogin(handler, "/fr/login", credentials("admin@example.com"))
	if got := rec.Header().Get("Location"); got != "/fr" {
		t.Errorf("Location: got %q, want %q", got, "/fr")
	}
}

func TestHandleLoginPost_FlatModeLandsAtRoot(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t, routeguard.ModeFlat)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAdmin(ctx, "Test Admin", "admin@example.com")

	rec := postLogin(handler, "/login", credentials("admin@example.com"))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Errorf("Location: got %q, want %q", got, "/")
	}
}

func TestHandleLoginPost_ReturnURL(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t, routeguard.ModeLocalePrefixed)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAdmin(ctx, "Test Admin", "admin@example.com")

	tests := []struct {
		name   string
		ret    string
		wantTo string
	}{
		{"same-site path", "/en/bookings", "/en/bookings"},
		{"login route loops back to landing", "/en/login", "/en"},
		{"login route with trailing slash", "/en/login/", "/en"},
		{"below the login route", "/fr/login/help", "/en"},
		{"protocol-relative", "//evil.example/x", "/en"},
		{"absolute URL", "https://evil.example/x", "/en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := credentials("admin@example.com")
			form.Set("return", tt.ret)
			rec := postLogin(handler, "/en/login", form)
			if got := rec.Header().Get("Location"); got != tt.wantTo {
				t.Errorf("Location: got %q, want %q", got, tt.wantTo)
			}
		})
	}
}

func TestHandleLoginPost_WrongPassword(t *testing.T) {
	handler, fixtures, renders := newTestHandler(t, routeguard.ModeLocalePrefixed)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAdmin(ctx, "Test Admin", "admin@example.com")

	form := url.Values{"email": {"admin@example.com"}, "password": {"not the password"}}
	rec := postLogin(handler, "/en/login", form)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if hasSessionCookie(rec) {
		t.Error("session cookie should not be set for a wrong password")
	}
	got := renders.Last(t)
	if got.Name != "login" {
		t.Errorf("rendered %q, want login", got.Name)
	}
	if !strings.Contains(fmt.Sprintf("%+v", got.Data), "Invalid email or password.") {
		t.Errorf("expected invalid-credentials message, got %+v", got.Data)
	}

	n, err := loginstore.New(fixtures.DB()).CountFailuresSince(ctx, "admin@example.com", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("CountFailuresSince: %v", err)
	}
	if n != 1 {
		t.Errorf("failures: got %d, want 1", n)
	}
}

func TestHandleLoginPost_UnknownEmail(t *testing.T) {
	handler, _, renders := newTestHandler(t, routeguard.ModeLocalePrefixed)

	rec := postLogin(handler, "/en/login", credentials("nobody@example.com"))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if hasSessionCookie(rec) {
		t.Error("session cookie should not be set for an unknown email")
	}
	if renders.Last(t).Status != http.StatusUnauthorized {
		t.Errorf("render status: got %d", renders.Last(t).Status)
	}
}

func TestHandleLoginPost_MissingFields(t *testing.T) {
	handler, _, renders := newTestHandler(t, routeguard.ModeLocalePrefixed)

	rec := postLogin(handler, "/en/login", url.Values{"email": {"admin@example.com"}})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if !strings.Contains(fmt.Sprintf("%+v", renders.Last(t).Data), "Please enter your email and password.") {
		t.Error("expected missing-fields message")
	}
}

func TestHandleLoginPost_DisabledAdmin(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t, routeguard.ModeLocalePrefixed)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateDisabledAdmin(ctx, "Disabled Admin", "disabled@example.com")

	rec := postLogin(handler, "/en/login", credentials("disabled@example.com"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if hasSessionCookie(rec) {
		t.Error("session cookie should not be set for a disabled admin")
	}
}

func TestHandleLoginPost_LockoutAfterFailures(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t, routeguard.ModeLocalePrefixed)
	handler.MaxFailures = 2
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAdmin(ctx, "Test Admin", "admin@example.com")

	bad := url.Values{"email": {"admin@example.com"}, "password": {"wrong password"}}
	postLogin(handler, "/en/login", bad)
	postLogin(handler, "/en/login", bad)

	rec := postLogin(handler, "/en/login", credentials("admin@example.com"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if hasSessionCookie(rec) {
		t.Error("session cookie should not be set while locked out")
	}
}

func TestHandleLoginPost_ThrottledPerIP(t *testing.T) {
	handler, _, renders := newTestHandler(t, routeguard.ModeLocalePrefixed)
	handler.Throttle = ratelimit.New(1, time.Hour)

	first := postLogin(handler, "/en/login", credentials("nobody@example.com"))
	if first.Code != http.StatusUnauthorized {
		t.Fatalf("first attempt: got %d, want %d", first.Code, http.StatusUnauthorized)
	}

	rec := postLogin(handler, "/en/login", credentials("nobody@example.com"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "3600" {
		t.Errorf("Retry-After: got %q, want the refill interval in seconds", got)
	}
	if msg := testutil.Field(t, renders.Last(t).Data, "Error"); msg != "Too many sign-in attempts from your network. Wait a minute and try again." {
		t.Errorf("Error: got %q", msg)
	}
}

func TestHandleLoginPost_SuccessResetsThrottle(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t, routeguard.ModeLocalePrefixed)
	handler.Throttle = ratelimit.New(1, time.Hour)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAdmin(ctx, "Test Admin", "admin@example.com")

	for i := 0; i < 2; i++ {
		rec := postLogin(handler, "/en/login", credentials("admin@example.com"))
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("sign-in %d: got %d, want %d", i+1, rec.Code, http.StatusSeeOther)
		}
	}
}

func TestHandleLoginPost_CaseInsensitiveEmail(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t, routeguard.ModeLocalePrefixed)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAdmin(ctx, "Test Admin", "admin@example.com")

	rec := postLogin(handler, "/en/login", credentials("  ADMIN@Example.COM "))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d (email should be normalized)", http.StatusSeeOther, rec.Code)
	}
}

func TestServeLogin_RendersFormWithReturn(t *testing.T) {
	handler, _, renders := newTestHandler(t, routeguard.ModeLocalePrefixed)

	req := httptest.NewRequest("GET", "/fr/login?return=/fr/bookings", nil)
	rec := httptest.NewRecorder()
	handler.ServeLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	got := renders.Last(t)
	if got.Name != "login" {
		t.Errorf("rendered %q, want login", got.Name)
	}
	dump := fmt.Sprintf("%+v", got.Data)
	if !strings.Contains(dump, "/fr/bookings") || !strings.Contains(dump, "ActionURL:/fr/login") {
		t.Errorf("unexpected form data %s", dump)
	}
}
