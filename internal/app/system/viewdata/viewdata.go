// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/gorilla/csrf"
	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/i18n"
	"github.com/serveease/admin/internal/app/system/routeguard"
)

// Site carries what every page needs to render its chrome: translations and
// the guard that knows how links are localized. Bootstrap builds one and
// hands it to each feature handler.
type Site struct {
	I18n  *i18n.Bundle
	Guard *routeguard.Guard

	// Renderer replaces the template engine when set. Tests use it to
	// capture view models.
	Renderer Renderer
}

// Renderer writes the named template with data.
type Renderer func(w http.ResponseWriter, r *http.Request, name string, data any)

// Render writes the named page through the template engine.
func (s *Site) Render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.Renderer != nil {
		s.Renderer(w, r, name, data)
		return
	}
	templates.Render(w, r, name, data)
}

// NavLink is one entry of the top navigation.
type NavLink struct {
	Label  string
	Href   string
	Active bool
}

// LocaleLink switches the current page to another locale.
type LocaleLink struct {
	Code    string
	Href    string
	Current bool
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: h.Site.NewBaseVM(r, "bookings.title", "/"),
//	}
type BaseVM struct {
	SiteName string
	Locale   string

	// Admin context (from auth middleware)
	IsLoggedIn   bool
	AdminName    string
	IsSuperAdmin bool

	// Page context
	Title       string
	BackURL     string
	CurrentPath string
	Nav         []NavLink
	Locales     []LocaleLink
	LogoutURL   string

	// CSRF protection
	CSRFToken string

	site *Site
}

// NewBaseVM builds the BaseVM for r. titleKey is a message key; backDefault
// is an unlocalized path used when the request carries no return URL.
func (s *Site) NewBaseVM(r *http.Request, titleKey, backDefault string) BaseVM {
	locale := s.LocaleFor(r)
	current := httpnav.CurrentPath(r)

	vm := BaseVM{
		SiteName:    s.I18n.T(locale, "app.name"),
		Locale:      locale,
		Title:       s.I18n.T(locale, titleKey),
		BackURL:     httpnav.ResolveBackURL(r, s.Guard.Localize(locale, backDefault)),
		CurrentPath: current,
		LogoutURL:   s.Guard.Localize(locale, "/logout"),
		CSRFToken:   csrf.Token(r),
		site:        s,
	}

	if a, ok := auth.CurrentAdmin(r); ok {
		vm.IsLoggedIn = true
		vm.AdminName = a.Name
		vm.IsSuperAdmin = a.IsSuperAdmin()
		vm.Nav = s.nav(locale, r.URL.Path, vm.IsSuperAdmin)
	}
	vm.Locales = s.localeLinks(locale, r.URL.Path)

	return vm
}

// LocaleFor picks the request's locale: the path prefix in locale mode,
// Accept-Language in flat mode.
func (s *Site) LocaleFor(r *http.Request) string {
	if loc, ok := s.Guard.LocaleOf(r.URL.Path); ok && s.I18n.Has(loc) {
		return loc
	}
	if s.Guard.Mode() == routeguard.ModeFlat {
		return s.I18n.Match(r.Header.Get("Accept-Language"))
	}
	return s.Guard.Config().DefaultLocale
}

// Link localizes an app path for the request's locale.
func (s *Site) Link(r *http.Request, p string) string {
	return s.Guard.Localize(s.LocaleFor(r), p)
}

// T translates key in the page's locale. Templates call {{.T "key"}}.
func (vm BaseVM) T(key string, args ...any) string {
	if vm.site == nil {
		return key
	}
	return vm.site.I18n.T(vm.Locale, key, args...)
}

// Link localizes an app path for the page's locale. Templates call
// {{.Link "/bookings"}}.
func (vm BaseVM) Link(p string) string {
	if vm.site == nil {
		return p
	}
	return vm.site.Guard.Localize(vm.Locale, p)
}

func (s *Site) nav(locale, urlPath string, superAdmin bool) []NavLink {
	items := []struct{ key, path string }{
		{"nav.dashboard", "/"},
		{"nav.bookings", "/bookings"},
	}
	if superAdmin {
		items = append(items, struct{ key, path string }{"nav.admins", "/admins"})
	}

	out := make([]NavLink, 0, len(items))
	for _, it := range items {
		href := s.Guard.Localize(locale, it.path)
		active := urlPath == href || (it.path != "/" && strings.HasPrefix(urlPath, href+"/"))
		out = append(out, NavLink{
			Label:  s.I18n.T(locale, it.key),
			Href:   href,
			Active: active,
		})
	}
	return out
}

// localeLinks only applies to locale mode; flat mode follows the browser.
// Only locales the guard routes are offered.
func (s *Site) localeLinks(current, urlPath string) []LocaleLink {
	if s.Guard.Mode() != routeguard.ModeLocalePrefixed {
		return nil
	}
	rest := urlPath
	if loc, ok := s.Guard.LocaleOf(urlPath); ok {
		rest = strings.TrimPrefix(urlPath, "/"+loc)
	}
	if rest == "" {
		rest = "/"
	}

	var out []LocaleLink
	for _, code := range s.Guard.Config().Locales {
		out = append(out, LocaleLink{
			Code:    code,
			Href:    s.Guard.Localize(code, rest),
			Current: code == current,
		})
	}
	return out
}
