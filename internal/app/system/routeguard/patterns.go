package routeguard

import (
	"fmt"
	"path"
	"strings"
)

// RuleKind says what a matching path means to the guard.
type RuleKind int

const (
	// RuleBypass paths skip the guard entirely (static assets, health, test pages).
	RuleBypass RuleKind = iota
	// RuleLocalized paths carry a locale segment as their first element.
	RuleLocalized
)

func (k RuleKind) String() string {
	switch k {
	case RuleBypass:
		return "bypass"
	case RuleLocalized:
		return "localized"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// ParseRuleKind accepts the names produced by RuleKind.String.
func ParseRuleKind(s string) (RuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bypass", "":
		return RuleBypass, nil
	case "localized", "locale":
		return RuleLocalized, nil
	default:
		return 0, fmt.Errorf("unknown rule kind %q", s)
	}
}

// Rule is one entry of the ordered path-matching configuration.
//
// Pattern is glob-like and matched segment by segment:
//
//	/static/**      /static and everything below it
//	/*.ico          /favicon.ico, /apple-touch.ico
//	/test           exactly /test
//
// Within a segment the syntax is that of path.Match. A "**" segment matches
// zero or more trailing segments and must be the last segment.
type Rule struct {
	Pattern string
	Kind    RuleKind
}

// pattern is a Rule pattern split into segments and validated once.
type pattern struct {
	raw      string
	segments []string
	subtree  bool // ends in "**"
}

func compilePattern(raw string) (pattern, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return pattern{}, fmt.Errorf("pattern %q must start with /", raw)
	}

	segs := splitPath(raw)
	p := pattern{raw: raw}
	for i, seg := range segs {
		if seg == "**" {
			if i != len(segs)-1 {
				return pattern{}, fmt.Errorf("pattern %q: ** must be the last segment", raw)
			}
			p.subtree = true
			break
		}
		// Matching the segment against itself walks the whole pattern.
		if _, err := path.Match(seg, seg); err != nil {
			return pattern{}, fmt.Errorf("pattern %q: %w", raw, err)
		}
		p.segments = append(p.segments, seg)
	}
	return p, nil
}

func (p pattern) match(urlPath string) bool {
	segs := splitPath(urlPath)
	if p.subtree {
		if len(segs) < len(p.segments) {
			return false
		}
	} else if len(segs) != len(p.segments) {
		return false
	}
	for i, want := range p.segments {
		ok, err := path.Match(want, segs[i])
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// splitPath turns "/a/b/" into ["a", "b"] and "/" into [].
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
