// internal/app/features/bookings/handler.go
package bookings

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	uierrors "github.com/serveease/admin/internal/app/features/errors"
	bookingstore "github.com/serveease/admin/internal/app/store/bookings"
	"github.com/serveease/admin/internal/app/system/normalize"
	"github.com/serveease/admin/internal/app/system/paging"
	"github.com/serveease/admin/internal/app/system/timeouts"
	"github.com/serveease/admin/internal/app/system/ui"
	"github.com/serveease/admin/internal/app/system/viewdata"
	"github.com/serveease/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Bookings *bookingstore.Store
	Site     *viewdata.Site
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, site *viewdata.Site, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Bookings: bookingstore.New(db),
		Site:     site,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// filterOption is one entry of the status filter bar.
type filterOption struct {
	Label    string
	Href     string
	Selected bool
}

type listData struct {
	viewdata.BaseVM

	Status  string
	Filters []filterOption
	Summary string
	Table   *ui.Table

	Page    paging.Page
	PrevURL string
	NextURL string

	// SwapFilters makes the table partial carry the filter bar out of band
	// so its selection follows the swapped table.
	SwapFilters bool
}

// ServeList handles GET /bookings with optional ?status= and ?start=
// parameters. HTMX requests targeting "bookings-table-wrap" get only the
// table, plus the filter bar swapped out of band.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	status := normalize.Status(normalize.QueryParam(query.Get(r, "status")))
	if status != "" && !models.IsBookingStatus(status) {
		h.ErrLog.LogBadRequest(w, r, "unknown booking status filter", bookingstore.ErrBadStatus, "Unknown booking status.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	list, err := h.Bookings.List(ctx, bookingstore.Filter{
		Status: status,
		Skip:   paging.Skip(start),
		Limit:  paging.LimitPlusOne(),
	})
	if errors.Is(err, bookingstore.ErrBadStatus) {
		h.ErrLog.LogBadRequest(w, r, "unknown booking status filter", err, "Unknown booking status.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list bookings", err, "Could not load bookings.")
		return
	}
	total, err := h.Bookings.Count(ctx, status)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count bookings", err, "Could not load bookings.")
		return
	}

	page := paging.Trim(&list, start)
	data := buildList(h.Site.NewBaseVM(r, "bookings.title", "/"), status, list, total, page)

	if r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Target") == "bookings-table-wrap" {
		data.SwapFilters = true
		h.Site.Render(w, r, "bookings_table", data)
		return
	}
	h.Site.Render(w, r, "bookings_list", data)
}

func buildList(base viewdata.BaseVM, status string, list []models.Booking, total int64, page paging.Page) listData {
	data := listData{
		BaseVM:  base,
		Status:  status,
		Summary: base.T("bookings.count", len(list), total),
		Table:   ui.BookingTable(base, base.Locale, list, "bookings.empty"),
		Page:    page,
	}
	if page.HasPrev || page.HasNext {
		data.Summary = base.T("bookings.range", page.Start, page.End, total)
	}

	href := base.Link("/bookings")
	if page.HasPrev {
		data.PrevURL = pageURL(href, status, page.PrevStart)
	}
	if page.HasNext {
		data.NextURL = pageURL(href, status, page.NextStart)
	}

	data.Filters = append(data.Filters, filterOption{
		Label:    base.T("bookings.filter.all"),
		Href:     href,
		Selected: status == "",
	})
	for _, st := range models.BookingStatuses {
		data.Filters = append(data.Filters, filterOption{
			Label:    base.T("status." + st),
			Href:     href + "?status=" + st,
			Selected: status == st,
		})
	}
	return data
}

func pageURL(href, status string, start int) string {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if start > 1 {
		q.Set("start", strconv.Itoa(start))
	}
	if len(q) == 0 {
		return href
	}
	return href + "?" + q.Encode()
}
