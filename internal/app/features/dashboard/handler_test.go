package dashboard_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/serveease/admin/internal/app/features/dashboard"
	uierrors "github.com/serveease/admin/internal/app/features/errors"
	"github.com/serveease/admin/internal/app/system/routeguard"
	"github.com/serveease/admin/internal/app/system/ui"
	"github.com/serveease/admin/internal/domain/models"
	"github.com/serveease/admin/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*dashboard.Handler, *testutil.Fixtures, *testutil.RenderLog) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	site, renders := testutil.NewSite(t, routeguard.ModeLocalePrefixed)
	h := dashboard.NewHandler(db, site, uierrors.NewErrorLogger(logger, site), logger)
	return h, testutil.NewFixtures(t, db), renders
}

func TestNewHandler(t *testing.T) {
	h, _, _ := newTestHandler(t)
	if h == nil || h.Bookings == nil {
		t.Fatal("NewHandler() returned an incomplete handler")
	}
}

func TestServeDashboard_Empty(t *testing.T) {
	handler, _, renders := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/en", testutil.AdminUser())
	rec := httptest.NewRecorder()
	handler.ServeDashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	got := renders.Last(t)
	if got.Name != "dashboard" {
		t.Errorf("rendered %q, want dashboard", got.Name)
	}
	if total := testutil.Field(t, got.Data, "Total"); total != "0 bookings in total" {
		t.Errorf("Total: got %q", total)
	}
	recent := testutil.Field(t, got.Data, "Recent").(*ui.Table)
	if !recent.IsEmpty() || recent.Empty != "No bookings match this filter." {
		t.Errorf("expected an empty recent table, got %+v", recent)
	}
}

func TestServeDashboard_CountsAndRecent(t *testing.T) {
	handler, fixtures, renders := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	fixtures.CreateBooking(ctx, "SE-1", models.BookingPending, now.Add(time.Hour))
	fixtures.CreateBooking(ctx, "SE-2", models.BookingCompleted, now.Add(-time.Hour))
	fixtures.CreateBooking(ctx, "SE-3", models.BookingCancelled, now.Add(-2*time.Hour))

	req := testutil.NewAuthenticatedRequest("GET", "/fr", testutil.AdminUser())
	rec := httptest.NewRecorder()
	handler.ServeDashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	data := renders.Last(t).Data
	dump := fmt.Sprintf("%+v", data)
	for _, want := range []string{
		"Bon retour, Test Admin",
		"3 réservations au total",
		"/fr/bookings?status=pending",
		"Annulée",
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("expected %q in dashboard data", want)
		}
	}

	recent := testutil.Field(t, data, "Recent").(*ui.Table)
	if len(recent.Rows) != 3 {
		t.Fatalf("recent rows: got %d, want 3", len(recent.Rows))
	}
	// Newest scheduled first.
	if got := recent.Rows[0].Cells[0].Text; got != "SE-1" {
		t.Errorf("first row: got %q, want SE-1", got)
	}
}
