// internal/app/features/admins/routes.go
package admins

import (
	"github.com/go-chi/chi/v5"
	"github.com/serveease/admin/internal/app/system/auth"
)

// Routes mounts the admin directory. Only superadmins may list accounts.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleSuperAdmin))
		pr.Get("/", h.ServeList)
	})
	return r
}
