// internal/app/features/admins/handler.go
package admins

import (
	"context"
	"net/http"

	uierrors "github.com/serveease/admin/internal/app/features/errors"
	adminstore "github.com/serveease/admin/internal/app/store/admins"
	loginstore "github.com/serveease/admin/internal/app/store/logins"
	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/htmlsanitize"
	"github.com/serveease/admin/internal/app/system/normalize"
	"github.com/serveease/admin/internal/app/system/timeouts"
	"github.com/serveease/admin/internal/app/system/ui"
	"github.com/serveease/admin/internal/app/system/viewdata"
	"github.com/serveease/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RecentSignIns is how many login records the admins page shows.
const RecentSignIns = 15

type Handler struct {
	Admins *adminstore.Store
	Logins *loginstore.Store
	Site   *viewdata.Site
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, site *viewdata.Site, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Admins: adminstore.New(db),
		Logins: loginstore.New(db),
		Site:   site,
		ErrLog: errLog,
		Log:    logger,
	}
}

type listData struct {
	viewdata.BaseVM

	Summary string
	Table   *ui.Table
	SignIns *ui.Table
}

// ServeList handles GET /admins. Superadmins only; see Routes.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Admins.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list admins", err, "Could not load admin accounts.")
		return
	}

	logins, err := h.Logins.Recent(ctx, RecentSignIns)
	if err != nil {
		// The account list is still useful without the sign-in history.
		h.Log.Warn("recent sign-ins", zap.Error(err))
		logins = nil
	}

	base := h.Site.NewBaseVM(r, "admins.title", "/")
	data := buildList(base, list)
	data.SignIns = signInTable(base, logins)
	h.Site.Render(w, r, "admins_list", data)
}

func buildList(base viewdata.BaseVM, list []models.Admin) listData {
	t := ui.NewTable(
		ui.Column{Key: "name", Label: base.T("col.name")},
		ui.Column{Key: "email", Label: base.T("col.email")},
		ui.Column{Key: "role", Label: base.T("col.role")},
		ui.Column{Key: "status", Label: base.T("col.status")},
		ui.Column{Key: "last_login", Label: base.T("col.last_login")},
	)
	t.Empty = base.T("admins.empty")

	for _, a := range list {
		role := normalize.Role(a.Role)
		roleVariant := ui.VariantNeutral
		if role == auth.RoleSuperAdmin {
			roleVariant = ui.VariantInfo
		}

		status := normalize.Status(a.Status)
		if status == "" {
			status = models.AdminStatusActive
		}

		last := base.T("common.never")
		if a.LastLoginAt != nil {
			last = ui.FormatTime(*a.LastLoginAt)
		}

		t.AddRow(
			ui.TextCell(htmlsanitize.PlainText(a.FullName)),
			ui.TextCell(a.Email),
			ui.BadgeCell(ui.Badge{Label: base.T("role." + role), Variant: roleVariant}),
			ui.BadgeCell(ui.StatusBadge(status, base.T("status."+status))),
			ui.TextCell(last),
		)
	}

	return listData{
		BaseVM:  base,
		Summary: base.T("admins.count", len(list)),
		Table:   t,
	}
}

func signInTable(base viewdata.BaseVM, records []models.LoginRecord) *ui.Table {
	t := ui.NewTable(
		ui.Column{Key: "when", Label: base.T("col.when")},
		ui.Column{Key: "email", Label: base.T("col.email")},
		ui.Column{Key: "result", Label: base.T("col.result")},
		ui.Column{Key: "ip", Label: base.T("col.ip")},
	)
	t.Empty = base.T("signins.empty")

	for _, rec := range records {
		result := ui.Badge{Label: base.T("signins.ok"), Variant: ui.VariantSuccess}
		if !rec.Success {
			result = ui.Badge{Label: base.T("signins.failed." + rec.Reason), Variant: ui.VariantDanger}
			if rec.Reason == "locked" {
				result.Variant = ui.VariantWarning
			}
		}
		t.AddRow(
			ui.TextCell(ui.FormatTime(rec.CreatedAt)),
			ui.TextCell(rec.Email),
			ui.BadgeCell(result),
			ui.TextCell(rec.IP),
		)
	}
	return t
}
