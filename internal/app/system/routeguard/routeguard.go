// Package routeguard decides, per request, whether an admin page may be served
// or the browser must be sent somewhere else first.
//
// The decision depends only on the request path and on whether an admin
// token is present:
//
//  1. paths matching a bypass rule are always served;
//  2. in locale-prefixed mode the site root redirects to the default locale;
//  3. the path is classified as the login route or a protected route;
//  4. a protected route without a token redirects to the login route;
//  5. the login route with a token redirects to the landing route;
//  6. everything else is served.
//
// A Guard holds no mutable state. Its configuration is validated once by New
// and Decide is a pure function, so one Guard is shared by all requests.
package routeguard

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"
)

// Mode selects flat or locale-prefixed routing.
type Mode int

const (
	// ModeFlat serves pages at /login, /dashboard, ...
	ModeFlat Mode = iota
	// ModeLocalePrefixed serves pages at /en/login, /en/dashboard, ...
	ModeLocalePrefixed
)

func (m Mode) String() string {
	switch m {
	case ModeFlat:
		return "flat"
	case ModeLocalePrefixed:
		return "locale"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "flat" or "locale" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat", "":
		return ModeFlat, nil
	case "locale", "localized", "locale-prefixed":
		return ModeLocalePrefixed, nil
	default:
		return 0, fmt.Errorf("unknown guard mode %q (want flat or locale)", s)
	}
}

// Defaults applied by New for zero-valued Config fields.
const (
	DefaultCookieName = "serveease_admin_token"
	DefaultLoginPath  = "/login"
	DefaultLanding    = "/"
	DefaultLocale     = "en"
)

// Config is the complete guard configuration. It is passed to New and never
// read from package state.
type Config struct {
	Mode Mode

	// CookieName is the cookie whose presence means "signed in" for the
	// default token check.
	CookieName string

	// LoginPath and LandingPath are written without a locale prefix.
	LoginPath   string
	LandingPath string

	DefaultLocale string
	Locales       []string

	// Rules are evaluated in order; the first match wins. In locale mode a
	// RuleLocalized rule for each locale is appended after them.
	Rules []Rule

	// Protected limits which (unprefixed) paths need a token. When empty,
	// every path other than the login route is protected.
	Protected []string

	// ReturnParam, when set, is the query parameter that carries the
	// original request URI on redirects to the login route.
	ReturnParam string
}

// ErrInvalidConfig wraps every configuration error returned by New.
var ErrInvalidConfig = errors.New("routeguard: invalid config")

// Guard evaluates requests against a validated Config.
type Guard struct {
	cfg       Config
	rules     []compiledRule
	protected []pattern
	locales   map[string]struct{}
	hasToken  func(*http.Request) bool
	log       *zap.Logger
}

type compiledRule struct {
	pattern
	kind RuleKind
}

// Option customizes a Guard.
type Option func(*Guard)

// WithTokenFunc replaces the default cookie-presence check.
func WithTokenFunc(fn func(*http.Request) bool) Option {
	return func(g *Guard) {
		if fn != nil {
			g.hasToken = fn
		}
	}
}

// WithLogger sets the logger used by Middleware.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.log = logger
		}
	}
}

// New validates cfg and returns a ready Guard.
func New(cfg Config, opts ...Option) (*Guard, error) {
	cfg = cfg.withDefaults()

	if cfg.Mode != ModeFlat && cfg.Mode != ModeLocalePrefixed {
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidConfig, int(cfg.Mode))
	}
	if !strings.HasPrefix(cfg.LoginPath, "/") {
		return nil, fmt.Errorf("%w: login path %q must start with /", ErrInvalidConfig, cfg.LoginPath)
	}
	if !strings.HasPrefix(cfg.LandingPath, "/") {
		return nil, fmt.Errorf("%w: landing path %q must start with /", ErrInvalidConfig, cfg.LandingPath)
	}
	cfg.LoginPath = cleanPath(cfg.LoginPath)
	cfg.LandingPath = cleanPath(cfg.LandingPath)
	if cfg.LoginPath == "/" {
		return nil, fmt.Errorf("%w: login path cannot be the site root", ErrInvalidConfig)
	}

	g := &Guard{
		cfg:     cfg,
		locales: make(map[string]struct{}, len(cfg.Locales)),
		log:     zap.NewNop(),
	}
	for _, loc := range cfg.Locales {
		if loc == "" || strings.Contains(loc, "/") {
			return nil, fmt.Errorf("%w: bad locale %q", ErrInvalidConfig, loc)
		}
		g.locales[loc] = struct{}{}
	}
	if _, ok := g.locales[cfg.DefaultLocale]; !ok {
		return nil, fmt.Errorf("%w: default locale %q is not in locales %v", ErrInvalidConfig, cfg.DefaultLocale, cfg.Locales)
	}

	rules := cfg.Rules
	if cfg.Mode == ModeLocalePrefixed {
		rules = append(append([]Rule(nil), rules...), LocaleRules(cfg.Locales)...)
	}
	for _, r := range rules {
		p, err := compilePattern(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		g.rules = append(g.rules, compiledRule{pattern: p, kind: r.Kind})
	}
	for _, raw := range cfg.Protected {
		p, err := compilePattern(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: protected %v", ErrInvalidConfig, err)
		}
		g.protected = append(g.protected, p)
	}

	g.hasToken = g.cookieToken
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (c Config) withDefaults() Config {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.LoginPath == "" {
		c.LoginPath = DefaultLoginPath
	}
	if c.LandingPath == "" {
		c.LandingPath = DefaultLanding
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = DefaultLocale
	}
	if len(c.Locales) == 0 {
		c.Locales = []string{c.DefaultLocale}
	}
	return c
}

// LocaleRules returns one RuleLocalized rule per locale ("/en/**").
func LocaleRules(locales []string) []Rule {
	out := make([]Rule, 0, len(locales))
	for _, loc := range locales {
		out = append(out, Rule{Pattern: "/" + loc + "/**", Kind: RuleLocalized})
	}
	return out
}

// Config returns the effective configuration, defaults included.
func (g *Guard) Config() Config {
	return g.cfg
}

// Decide computes the routing decision for a path. It is pure: the same
// (path, hasToken) always yields the same Decision.
func (g *Guard) Decide(urlPath string, hasToken bool) Decision {
	p := cleanPath(urlPath)

	kind, matched := g.match(p)
	if matched && kind == RuleBypass {
		return Continue().because(ReasonBypass)
	}

	if g.cfg.Mode == ModeLocalePrefixed && p == "/" {
		return RedirectTo(g.Localize(g.cfg.DefaultLocale, g.cfg.LandingPath)).because(ReasonLocaleRoot)
	}

	locale, rest := g.cfg.DefaultLocale, p
	if matched && kind == RuleLocalized {
		if loc, r, ok := g.splitLocale(p); ok {
			locale, rest = loc, r
		}
	}

	login := g.isLogin(rest)
	switch {
	case !login && g.isProtected(rest) && !hasToken:
		return RedirectTo(g.Localize(locale, g.cfg.LoginPath)).because(ReasonLoginRequired)
	case login && hasToken:
		return RedirectTo(g.Localize(locale, g.cfg.LandingPath)).because(ReasonSignedIn)
	}
	return Continue().because(ReasonAllowed)
}

// Localize prefixes p with the locale segment in locale mode and returns it
// unchanged in flat mode. Localize("en", "/") is "/en".
func (g *Guard) Localize(locale, p string) string {
	p = cleanPath(p)
	if g.cfg.Mode != ModeLocalePrefixed {
		return p
	}
	if _, ok := g.locales[locale]; !ok {
		locale = g.cfg.DefaultLocale
	}
	if p == "/" {
		return "/" + locale
	}
	return "/" + locale + p
}

// LocaleOf reports the locale segment of a locale-prefixed path.
func (g *Guard) LocaleOf(urlPath string) (string, bool) {
	if g.cfg.Mode != ModeLocalePrefixed {
		return "", false
	}
	loc, _, ok := g.splitLocale(cleanPath(urlPath))
	return loc, ok
}

// IsLogin reports whether urlPath is the login route or a path below it,
// after stripping a known locale segment in locale mode.
func (g *Guard) IsLogin(urlPath string) bool {
	p := cleanPath(urlPath)
	if g.cfg.Mode == ModeLocalePrefixed {
		if _, rest, ok := g.splitLocale(p); ok {
			p = rest
		}
	}
	return g.isLogin(p)
}

// Mode is shorthand for Config().Mode.
func (g *Guard) Mode() Mode {
	return g.cfg.Mode
}

func (g *Guard) match(p string) (RuleKind, bool) {
	for _, r := range g.rules {
		if r.match(p) {
			return r.kind, true
		}
	}
	return 0, false
}

func (g *Guard) splitLocale(p string) (locale, rest string, ok bool) {
	segs := splitPath(p)
	if len(segs) == 0 {
		return "", p, false
	}
	if _, known := g.locales[segs[0]]; !known {
		return "", p, false
	}
	return segs[0], "/" + strings.Join(segs[1:], "/"), true
}

func (g *Guard) isLogin(rest string) bool {
	return rest == g.cfg.LoginPath || strings.HasPrefix(rest, g.cfg.LoginPath+"/")
}

func (g *Guard) isProtected(rest string) bool {
	if len(g.protected) == 0 {
		return true
	}
	for _, p := range g.protected {
		if p.match(rest) {
			return true
		}
	}
	return false
}

// cleanPath normalizes a request path for matching: always rooted, no
// trailing slash, no dot segments.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
