// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/serveease/admin/internal/app/system/viewdata"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Heading string
	Message string
}

// Handler serves the standalone error pages. No DB needed.
type Handler struct {
	Site *viewdata.Site
}

// NewHandler constructs an errors Handler.
func NewHandler(site *viewdata.Site) *Handler {
	return &Handler{Site: site}
}

// Forbidden renders the "access denied" page RequireRole redirects to.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.Site, http.StatusForbidden, "error.forbidden.title", "error.forbidden.message", "")
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.Site, http.StatusNotFound, "error.notfound.title", "error.notfound.message", "")
}

// renderPage writes status and the shared error page. message overrides
// messageKey when set.
func renderPage(w http.ResponseWriter, r *http.Request, site *viewdata.Site, status int, titleKey, messageKey, message string) {
	base := site.NewBaseVM(r, titleKey, "/")
	if message == "" {
		message = base.T(messageKey)
	}
	w.WriteHeader(status)
	site.Render(w, r, "error_page", pageData{
		BaseVM:  base,
		Heading: base.Title,
		Message: message,
	})
}
