package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	adminstore "github.com/serveease/admin/internal/app/store/admins"
	"github.com/serveease/admin/internal/app/system/i18n"
	"github.com/serveease/admin/internal/app/system/routeguard"
	"github.com/serveease/admin/internal/app/system/timeouts"
	"github.com/serveease/admin/internal/domain/models"
	"github.com/serveease/admin/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testAppConfig() AppConfig {
	return AppConfig{
		MongoURI:           "mongodb://localhost:27017",
		SessionName:        "serveease_admin_token",
		CSRFKey:            "0123456789abcdef0123456789abcdef",
		GuardMode:          "locale",
		GuardCookie:        "serveease_admin_token",
		GuardLoginPath:     "/login",
		GuardLandingPath:   "/",
		GuardDefaultLocale: "en",
		GuardBypass:        []string{"/static/**", "/health"},
		GuardReturnParam:   "return",
		LoginRetention:     24 * time.Hour,
	}
}

func testBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	b, err := i18n.LoadEmbedded("en")
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	return b
}

func TestSplitList(t *testing.T) {
	got := splitList(" /static/** , ,/health,")
	if len(got) != 2 || got[0] != "/static/**" || got[1] != "/health" {
		t.Errorf("splitList: got %q", got)
	}
	if splitList("") != nil {
		t.Error("splitList(\"\") should be nil")
	}
}

func TestValidateConfig(t *testing.T) {
	ok := testAppConfig()
	if err := ValidateConfig(nil, ok, zap.NewNop()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "postgres://nope" }},
		{"bad guard mode", func(c *AppConfig) { c.GuardMode = "sideways" }},
		{"short csrf key", func(c *AppConfig) { c.CSRFKey = "short" }},
		{"no retention", func(c *AppConfig) { c.LoginRetention = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAppConfig()
			tt.mutate(&cfg)
			if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestGuardConfig_LocaleModeUsesCatalogLocales(t *testing.T) {
	cfg, err := guardConfig(testAppConfig(), testBundle(t))
	if err != nil {
		t.Fatalf("guardConfig: %v", err)
	}
	if cfg.Mode != routeguard.ModeLocalePrefixed {
		t.Errorf("Mode: got %s", cfg.Mode)
	}
	if len(cfg.Locales) != 2 || cfg.Locales[0] != "en" {
		t.Errorf("Locales: got %v, want [en fr]", cfg.Locales)
	}
	if len(cfg.Rules) != 2 || cfg.Rules[0].Kind != routeguard.RuleBypass {
		t.Errorf("Rules: got %+v", cfg.Rules)
	}

	g, err := routeguard.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d := g.Decide("/fr/bookings", false); d.URL != "/fr/login" {
		t.Errorf("Decide(/fr/bookings, no token): got %s", d)
	}
	if d := g.Decide("/health", false); d.IsRedirect() {
		t.Errorf("health should bypass, got %s", d)
	}
}

func TestGuardConfig_RejectsLocaleWithoutCatalog(t *testing.T) {
	cfg := testAppConfig()
	cfg.GuardLocales = []string{"en", "de"}
	if _, err := guardConfig(cfg, testBundle(t)); err == nil {
		t.Error("expected an error for a locale without a catalog")
	}
}

func TestGuardConfig_RulesFileComesFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guard.yaml")
	body := "rules:\n  - pattern: /test\n    kind: bypass\nprotected:\n  - /bookings/**\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	cfg := testAppConfig()
	cfg.GuardMode = "flat"
	cfg.GuardRulesFile = path
	got, err := guardConfig(cfg, testBundle(t))
	if err != nil {
		t.Fatalf("guardConfig: %v", err)
	}
	if got.Rules[0].Pattern != "/test" {
		t.Errorf("first rule: got %q, want /test", got.Rules[0].Pattern)
	}
	if len(got.Protected) != 1 || got.Protected[0] != "/bookings/**" {
		t.Errorf("Protected: got %v", got.Protected)
	}
}

func TestGuardConfig_MissingRulesFile(t *testing.T) {
	cfg := testAppConfig()
	cfg.GuardRulesFile = filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := guardConfig(cfg, testBundle(t)); err == nil {
		t.Error("expected an error for a missing rules file")
	}
}

func TestBuildGuard_LogsMode(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	g, err := buildGuard(testAppConfig(), testBundle(t), zap.New(core))
	if err != nil {
		t.Fatalf("buildGuard: %v", err)
	}
	if g.Mode() != routeguard.ModeLocalePrefixed {
		t.Errorf("Mode: got %s", g.Mode())
	}
	if logs.FilterMessage("route guard ready").Len() != 1 {
		t.Error("expected a startup log entry")
	}
}

// defaultAppConfig fills the guard settings from the shipped key defaults.
func defaultAppConfig(t *testing.T) AppConfig {
	t.Helper()
	def := func(name string) string {
		for _, k := range appConfigKeys {
			if k.Name == name {
				return fmt.Sprint(k.Default)
			}
		}
		t.Fatalf("no config key %q", name)
		return ""
	}
	return AppConfig{
		SessionName:        def("session_name"),
		GuardMode:          def("guard_mode"),
		GuardCookie:        def("guard_cookie"),
		GuardLoginPath:     def("guard_login_path"),
		GuardLandingPath:   def("guard_landing_path"),
		GuardDefaultLocale: def("guard_default_locale"),
		GuardLocales:       splitList(def("guard_locales")),
		GuardBypass:        splitList(def("guard_bypass")),
		GuardProtected:     splitList(def("guard_protected")),
		GuardRulesFile:     def("guard_rules_file"),
		GuardReturnParam:   def("guard_return_param"),
	}
}

func TestBuildGuard_DefaultKeys(t *testing.T) {
	g, err := buildGuard(defaultAppConfig(t), testBundle(t), zap.NewNop())
	if err != nil {
		t.Fatalf("buildGuard: %v", err)
	}

	tests := []struct {
		path  string
		token bool
		want  string
	}{
		{"/", false, "redirect(/en)"},
		{"/en/login", true, "redirect(/en)"},
		{"/en/dashboard", false, "redirect(/en/login)"},
		{"/test", false, "continue"},
		{"/en/login", false, "continue"},
		{"/en/bookings", true, "continue"},
		{"/health", false, "continue"},
		{"/static/css/admin.css", false, "continue"},
		{"/fr/bookings", false, "redirect(/fr/login)"},
	}
	for _, tc := range tests {
		if got := g.Decide(tc.path, tc.token).String(); got != tc.want {
			t.Errorf("Decide(%q, %v) = %s, want %s", tc.path, tc.token, got, tc.want)
		}
	}
}

func TestBuildGuard_FlatDefaultKeys(t *testing.T) {
	cfg := defaultAppConfig(t)
	cfg.GuardMode = "flat"
	g, err := buildGuard(cfg, testBundle(t), zap.NewNop())
	if err != nil {
		t.Fatalf("buildGuard: %v", err)
	}
	if d := g.Decide("/dashboard", true); d.IsRedirect() {
		t.Errorf("Decide(/dashboard, token) = %s, want continue", d)
	}
	if d := g.Decide("/test", false); d.IsRedirect() {
		t.Errorf("Decide(/test, no token) = %s, want continue", d)
	}
}

func TestBuildGuard_SessionCookieNeedsValidatedToken(t *testing.T) {
	cfg := defaultAppConfig(t)
	g, err := buildGuard(cfg, testBundle(t), zap.NewNop())
	if err != nil {
		t.Fatalf("buildGuard: %v", err)
	}

	req := httptest.NewRequest("GET", "/en/bookings", nil)
	req.AddCookie(&http.Cookie{Name: cfg.SessionName, Value: "forged"})
	if d := g.Evaluate(req); d.String() != "redirect(/en/login)" {
		t.Errorf("forged admin token: got %s, want redirect(/en/login)", d)
	}
}

func TestBuildGuard_SeparateGuardCookie(t *testing.T) {
	cfg := defaultAppConfig(t)
	cfg.GuardCookie = "sso_token"
	core, logs := observer.New(zap.InfoLevel)
	g, err := buildGuard(cfg, testBundle(t), zap.New(core))
	if err != nil {
		t.Fatalf("buildGuard: %v", err)
	}
	if g.Config().CookieName != "sso_token" {
		t.Errorf("CookieName: got %q", g.Config().CookieName)
	}

	with := httptest.NewRequest("GET", "/en/bookings", nil)
	with.AddCookie(&http.Cookie{Name: "sso_token", Value: "abc"})
	if d := g.Evaluate(with); d.IsRedirect() {
		t.Errorf("with guard cookie: got %s, want continue", d)
	}

	without := httptest.NewRequest("GET", "/en/bookings", nil)
	if d := g.Evaluate(without); d.String() != "redirect(/en/login)" {
		t.Errorf("without guard cookie: got %s", d)
	}

	if logs.FilterMessage("route guard checks cookie presence only").Len() != 1 {
		t.Error("expected a warning about the presence-only check")
	}
}

func TestConnectDB_ConfiguresTimeoutsFirst(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	cfg := AppConfig{
		MongoURI:    "not-a-mongo-uri",
		TimeoutLong: 42 * time.Second,
	}
	if _, err := ConnectDB(context.Background(), nil, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected a connect error for a bad URI")
	}
	if got := timeouts.Long(); got != 42*time.Second {
		t.Errorf("Long: got %s, want the configured value before connecting", got)
	}
}

func TestEnsureSuperAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureSuperAdmin(ctx, db, "root@example.com", "a long enough password", zap.NewNop()); err != nil {
		t.Fatalf("ensureSuperAdmin: %v", err)
	}
	a := findAdmin(t, db, "root@example.com")
	if a.Role != "superadmin" || !a.IsActive() || a.FullName != "root" {
		t.Errorf("unexpected admin %+v", a)
	}
}

func TestEnsureSuperAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.NewFixtures(t, db).CreateDisabledAdmin(ctx, "Existing", "existing@example.com")

	if err := ensureSuperAdmin(ctx, db, "existing@example.com", "", zap.NewNop()); err != nil {
		t.Fatalf("ensureSuperAdmin: %v", err)
	}
	a := findAdmin(t, db, "existing@example.com")
	if a.Role != "superadmin" || !a.IsActive() {
		t.Errorf("expected promoted active superadmin, got role=%q status=%q", a.Role, a.Status)
	}
}

func TestEnsureSuperAdmin_NoPasswordSkipsCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	core, logs := observer.New(zap.WarnLevel)
	if err := ensureSuperAdmin(ctx, db, "ghost@example.com", "", zap.New(core)); err != nil {
		t.Fatalf("ensureSuperAdmin: %v", err)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.Len())
	}
}

func TestEnsureSuperAdmin_WeakPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureSuperAdmin(ctx, db, "root@example.com", "short", zap.NewNop()); err == nil {
		t.Error("expected an error for a short password")
	}
}

func findAdmin(t *testing.T, db *mongo.Database, email string) *models.Admin {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a, err := adminstore.New(db).GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail(%s): %v", email, err)
	}
	return a
}

func TestRequireKnownLocale(t *testing.T) {
	g, err := buildGuard(testAppConfig(), testBundle(t), zap.NewNop())
	if err != nil {
		t.Fatalf("buildGuard: %v", err)
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	notFound := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }
	h := requireKnownLocale(g, notFound)(ok)

	tests := []struct {
		path string
		want int
	}{
		{"/en/bookings", http.StatusNoContent},
		{"/fr", http.StatusNoContent},
		{"/de/bookings", http.StatusNotFound},
		{"/bookings", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s: got %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}
