package routeguard

import "fmt"

// Action is what the hosting router should do with the request.
type Action int

const (
	ActionContinue Action = iota
	ActionRedirect
)

// Reason records which rule produced a Decision. It is informational only;
// two decisions with the same Action and URL are interchangeable.
type Reason int

const (
	ReasonAllowed Reason = iota
	ReasonBypass
	ReasonLocaleRoot
	ReasonLoginRequired
	ReasonSignedIn
)

func (r Reason) String() string {
	switch r {
	case ReasonAllowed:
		return "allowed"
	case ReasonBypass:
		return "bypass"
	case ReasonLocaleRoot:
		return "locale_root"
	case ReasonLoginRequired:
		return "login_required"
	case ReasonSignedIn:
		return "signed_in"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Decision is the outcome of evaluating one request.
type Decision struct {
	Action Action
	URL    string // set for ActionRedirect
	Reason Reason
}

// Continue is a Decision that serves the request.
func Continue() Decision {
	return Decision{Action: ActionContinue}
}

// RedirectTo is a Decision that sends the browser to url.
func RedirectTo(url string) Decision {
	return Decision{Action: ActionRedirect, URL: url}
}

// IsRedirect reports whether d redirects.
func (d Decision) IsRedirect() bool {
	return d.Action == ActionRedirect
}

func (d Decision) because(r Reason) Decision {
	d.Reason = r
	return d
}

func (d Decision) String() string {
	if d.Action == ActionRedirect {
		return "redirect(" + d.URL + ")"
	}
	return "continue"
}
