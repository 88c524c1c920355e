package routeguard

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Evaluate decides for an incoming request using the configured token check.
func (g *Guard) Evaluate(r *http.Request) Decision {
	return g.Decide(r.URL.Path, g.hasToken(r))
}

// Middleware enforces the guard in front of next.
//
// Redirects use 303 See Other. HTMX requests get an HX-Redirect header
// instead, so the browser navigates rather than swapping a partial.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Evaluate(r)
		if !d.IsRedirect() {
			next.ServeHTTP(w, r)
			return
		}

		target := d.URL
		if d.Reason == ReasonLoginRequired && g.cfg.ReturnParam != "" {
			target += "?" + g.cfg.ReturnParam + "=" + url.QueryEscape(r.URL.RequestURI())
		}

		g.log.Debug("route guard redirect",
			zap.String("path", r.URL.Path),
			zap.String("reason", d.Reason.String()),
			zap.String("location", target))

		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", target)
			if d.Reason == ReasonLoginRequired {
				w.WriteHeader(http.StatusUnauthorized)
			} else {
				w.WriteHeader(http.StatusNoContent)
			}
			return
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

func (g *Guard) cookieToken(r *http.Request) bool {
	c, err := r.Cookie(g.cfg.CookieName)
	return err == nil && c.Value != ""
}
