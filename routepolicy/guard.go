package routepolicy

// Outcome is the kind of a guard decision
type Outcome int

const (
	// Allow renders the page
	Allow Outcome = iota
	// Wait means the session is still hydrating; render a wait state and do not redirect
	Wait
	// RedirectTo sends the visitor to Decision.Location
	RedirectTo
	// Forbidden means signed in with the wrong role; Decision.Location is the unauthorized page
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Wait:
		return "wait"
	case RedirectTo:
		return "redirect"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision is the result of Guard
type Decision struct {
	Outcome  Outcome
	Location string
}

// Visitor is what the guard needs to know about the session
type Visitor struct {
	Loading         bool
	IsAuthenticated bool
	Role            string
}

// Guard decides, before anything is rendered, what happens to a visitor
// asking for path. No redirect is ever issued while the session is loading.
func Guard(v Visitor, path string) Decision {
	if _, guardedPath := RequiredRole(path); !guardedPath {
		return Decision{Outcome: Allow}
	}
	if v.Loading {
		return Decision{Outcome: Wait}
	}
	if !v.IsAuthenticated {
		return Decision{Outcome: RedirectTo, Location: LoginPath}
	}
	if !IsAuthorizedForRoute(v.Role, path) {
		return Decision{Outcome: Forbidden, Location: UnauthorizedPath}
	}
	return Decision{Outcome: Allow}
}
