package testutil

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/i18n"
	"github.com/serveease/admin/internal/app/system/routeguard"
	"github.com/serveease/admin/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestAdmin represents admin data for testing HTTP handlers.
type TestAdmin struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// AdminUser returns a TestAdmin with the admin role.
func AdminUser() TestAdmin {
	return TestAdmin{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  auth.RoleAdmin,
	}
}

// SuperAdminUser returns a TestAdmin with the superadmin role.
func SuperAdminUser() TestAdmin {
	return TestAdmin{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Super",
		Email: "super@test.com",
		Role:  auth.RoleSuperAdmin,
	}
}

// WithAdmin adds an admin to the request context for testing authenticated
// handlers. This bypasses the session middleware.
func WithAdmin(r *http.Request, a TestAdmin) *http.Request {
	return auth.WithTestAdmin(r, &auth.SessionAdmin{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
		Role:  a.Role,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with an admin in context.
func NewAuthenticatedRequest(method, target string, a TestAdmin) *http.Request {
	return WithAdmin(httptest.NewRequest(method, target, nil), a)
}

// Rendered records one template render.
type Rendered struct {
	Name   string
	Data   any
	Status int
}

// RenderLog collects the renders a Site performed.
type RenderLog struct {
	Calls []Rendered
}

// Last returns the most recent render, failing the test if none happened.
func (l *RenderLog) Last(t testing.TB) Rendered {
	t.Helper()
	if len(l.Calls) == 0 {
		t.Fatal("expected a template render, got none")
	}
	return l.Calls[len(l.Calls)-1]
}

// Field returns the named field of a rendered view model, following
// embedded structs. View models are unexported, so tests reach them this way.
func Field(t testing.TB, data any, name string) any {
	t.Helper()
	v := reflect.Indirect(reflect.ValueOf(data))
	if v.Kind() != reflect.Struct {
		t.Fatalf("view model is %s, not a struct", v.Kind())
	}
	f := v.FieldByName(name)
	if !f.IsValid() || !f.CanInterface() {
		t.Fatalf("view model has no exported field %q", name)
	}
	return f.Interface()
}

// NewSite builds a viewdata.Site over the embedded catalogs with a guard in
// the given mode. Renders are recorded instead of executing templates; the
// recorder gets a 200 unless the handler already wrote a status.
func NewSite(t testing.TB, mode routeguard.Mode) (*viewdata.Site, *RenderLog) {
	t.Helper()

	bundle, err := i18n.LoadEmbedded("en")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	guard, err := routeguard.New(routeguard.Config{
		Mode:          mode,
		DefaultLocale: "en",
		Locales:       bundle.Locales(),
		Rules:         routeguard.BypassRules([]string{"/static/**", "/health/**"}),
		ReturnParam:   "return",
	}, routeguard.WithTokenFunc(auth.HasToken))
	if err != nil {
		t.Fatalf("build guard: %v", err)
	}

	log := &RenderLog{}
	site := &viewdata.Site{I18n: bundle, Guard: guard}
	site.Renderer = func(w http.ResponseWriter, r *http.Request, name string, data any) {
		status := http.StatusOK
		if rec, ok := w.(*httptest.ResponseRecorder); ok && rec.Code != 0 && rec.Code != http.StatusOK {
			status = rec.Code
		}
		log.Calls = append(log.Calls, Rendered{Name: name, Data: data, Status: status})
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<!-- " + name + " -->"))
	}
	return site, log
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
