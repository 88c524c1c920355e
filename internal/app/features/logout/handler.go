// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Site       *viewdata.Site
}

func NewHandler(sessionMgr *auth.SessionManager, site *viewdata.Site, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Site:       site,
	}
}

// ServeLogout handles GET and POST /logout. The admin token is expired and
// the browser is sent to the login page in the current locale.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if a, ok := auth.CurrentAdmin(r); ok {
		h.Log.Info("admin signed out", zap.String("admin_id", a.ID))
	}

	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	dest := h.Site.Link(r, h.Site.Guard.Config().LoginPath)

	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, dest, http.StatusSeeOther)
}
