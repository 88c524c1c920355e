// Package i18n is the dashboard's translation helper: YAML message catalogs,
// one file per locale, looked up by key with a fallback to the default
// locale and then to the key itself.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embedded embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds every loaded locale. It is read-only after Load.
type Bundle struct {
	def      string
	codes    []string
	messages map[string]map[string]string
	tags     map[string]language.Tag
	matcher  language.Matcher
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded(defaultLocale string) (*Bundle, error) {
	return Load(embedded, defaultLocale)
}

// Load reads locales/*.yaml from fsys. The file name (without extension)
// must equal the catalog's locale field.
func Load(fsys fs.FS, defaultLocale string) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale catalogs found")
	}
	sort.Strings(paths)

	b := &Bundle{
		def:      defaultLocale,
		messages: make(map[string]map[string]string, len(paths)),
		tags:     make(map[string]language.Tag, len(paths)),
	}

	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var cf catalogFile
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}

		code := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if strings.TrimSpace(cf.Locale) != code {
			return nil, fmt.Errorf("catalog %s: locale %q must match file name %q", p, cf.Locale, code)
		}
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}

		msgs := make(map[string]string, len(cf.Messages))
		for k, v := range cf.Messages {
			k = strings.TrimSpace(k)
			if k == "" {
				return nil, fmt.Errorf("catalog %s: message key cannot be blank", p)
			}
			msgs[k] = v
		}

		b.codes = append(b.codes, code)
		b.messages[code] = msgs
		b.tags[code] = tag
	}

	if _, ok := b.messages[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no catalog", defaultLocale)
	}

	// The matcher prefers the first tag on ties, so put the default first.
	supported := []language.Tag{b.tags[defaultLocale]}
	ordered := []string{defaultLocale}
	for _, code := range b.codes {
		if code != defaultLocale {
			supported = append(supported, b.tags[code])
			ordered = append(ordered, code)
		}
	}
	b.codes = ordered
	b.matcher = language.NewMatcher(supported)

	return b, nil
}

// Default is the fallback locale code.
func (b *Bundle) Default() string {
	return b.def
}

// Locales returns the loaded locale codes, default first.
func (b *Bundle) Locales() []string {
	out := make([]string, len(b.codes))
	copy(out, b.codes)
	return out
}

// Has reports whether locale has a catalog.
func (b *Bundle) Has(locale string) bool {
	_, ok := b.messages[locale]
	return ok
}

// T translates key for locale. Args are applied with a locale-aware
// printer, so numbers are grouped the way the locale expects.
func (b *Bundle) T(locale, key string, args ...any) string {
	msg, ok := b.lookup(locale, key)
	if !ok {
		msg = key
	}
	if len(args) == 0 {
		return msg
	}
	return b.printer(locale).Sprintf(msg, args...)
}

// Match picks the best loaded locale for an Accept-Language header value.
func (b *Bundle) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.def
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.def
	}
	return b.codes[idx]
}

// Missing lists keys present in the default locale but absent from locale.
func (b *Bundle) Missing(locale string) []string {
	target := b.messages[locale]
	var out []string
	for k := range b.messages[b.def] {
		if _, ok := target[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (b *Bundle) lookup(locale, key string) (string, bool) {
	if msgs, ok := b.messages[locale]; ok {
		if m, ok := msgs[key]; ok {
			return m, true
		}
	}
	m, ok := b.messages[b.def][key]
	return m, ok
}

func (b *Bundle) printer(locale string) *message.Printer {
	tag, ok := b.tags[locale]
	if !ok {
		tag = b.tags[b.def]
	}
	return message.NewPrinter(tag)
}
