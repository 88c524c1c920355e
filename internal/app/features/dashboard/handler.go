// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/serveease/admin/internal/app/features/errors"
	bookingstore "github.com/serveease/admin/internal/app/store/bookings"
	metricsstore "github.com/serveease/admin/internal/app/store/metrics"
	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/timeouts"
	"github.com/serveease/admin/internal/app/system/ui"
	"github.com/serveease/admin/internal/app/system/viewdata"
	"github.com/serveease/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RecentLimit is how many bookings the dashboard lists.
const RecentLimit = 10

type Handler struct {
	DB       *mongo.Database
	Bookings *bookingstore.Store
	Site     *viewdata.Site
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	now func() time.Time
}

func NewHandler(db *mongo.Database, site *viewdata.Site, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Bookings: bookingstore.New(db),
		Site:     site,
		ErrLog:   errLog,
		Log:      logger,
		now:      time.Now,
	}
}

type statusCard struct {
	Badge ui.Badge
	Count int64
	Href  string
}

type dashboardData struct {
	viewdata.BaseVM

	Welcome      string
	Total        string
	Upcoming     int64
	Admins       int64
	FailedLogins int64
	StatusCards  []statusCard
	Recent       *ui.Table
	AllURL       string
}

// ServeDashboard renders GET / (the landing page).
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	now := h.now()
	counts := metricsstore.FetchDashboardCounts(ctx, h.DB, now, now.Add(-24*time.Hour))

	recent, err := h.Bookings.List(ctx, bookingstore.Filter{Limit: RecentLimit})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list recent bookings", err, "Could not load bookings.")
		return
	}

	data := buildData(h.Site.NewBaseVM(r, "dashboard.title", "/"), counts, recent)
	if a, ok := auth.CurrentAdmin(r); ok {
		h.Log.Debug("dashboard served", zap.String("admin_id", a.ID))
	}
	h.Site.Render(w, r, "dashboard", data)
}

func buildData(base viewdata.BaseVM, counts metricsstore.Counts, recent []models.Booking) dashboardData {
	data := dashboardData{
		BaseVM:       base,
		Welcome:      base.T("dashboard.welcome", base.AdminName),
		Total:        base.T("dashboard.total", counts.Bookings),
		Upcoming:     counts.Upcoming,
		Admins:       counts.Admins,
		FailedLogins: counts.FailedLogins,
		Recent:       ui.BookingTable(base, base.Locale, recent, "bookings.empty"),
		AllURL:       base.Link("/bookings"),
	}
	data.Recent.Caption = base.T("dashboard.recent")

	for _, st := range models.BookingStatuses {
		data.StatusCards = append(data.StatusCards, statusCard{
			Badge: ui.StatusBadge(st, base.T("status."+st)),
			Count: counts.ByStatus[st],
			Href:  base.Link("/bookings") + "?status=" + st,
		})
	}
	return data
}
