// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package router

// InsufficientPermissions is the warning shown when a role check fails.
const InsufficientPermissions = "Insufficient permissions!"

// View is the part of a session the guard reads.
type View interface {
	IsAuthenticated() bool
	UserRole() string
}

// Verdict labels the outcome of one guard check.
type Verdict string

// Guard verdicts.
const (
	VerdictAllow        Verdict = "allow"
	VerdictRequireAuth  Verdict = "require_auth"
	VerdictRoleMismatch Verdict = "role_mismatch"
	VerdictRedirect     Verdict = "redirect"
)

// Decision is what the guard wants done with a navigation.
type Decision struct {
	Verdict Verdict `json:"verdict" yaml:"verdict"`
	// RedirectTo names the route to go to instead. Empty when allowed.
	RedirectTo string `json:"redirect_to,omitempty" yaml:"redirect_to,omitempty"`
	// Warning must be shown to the user before redirecting.
	Warning string `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// Allowed reports whether navigation may proceed unchanged.
func (d Decision) Allowed() bool {
	return d.Verdict == VerdictAllow
}

// Guard gates routes by authentication, then by role.
type Guard struct {
	// LoginRoute is where anonymous visitors go. Defaults to NameLogin.
	LoginRoute string
	// FallbackRoute is where visitors with the wrong role go. Defaults to NameDashboard.
	FallbackRoute string
}

// Check runs the ordered checks for one route. Authentication is checked
// strictly before role, so an anonymous visitor to an admin page is sent to
// login. Roles match exactly, case included.
func (g Guard) Check(route Route, view View) Decision {
	if route.RequiresAuth && !view.IsAuthenticated() {
		return Decision{Verdict: VerdictRequireAuth, RedirectTo: g.login()}
	}
	if route.RequiresRole != "" && route.RequiresRole != view.UserRole() {
		return Decision{
			Verdict:    VerdictRoleMismatch,
			RedirectTo: g.fallback(),
			Warning:    InsufficientPermissions,
		}
	}
	return Decision{Verdict: VerdictAllow}
}

func (g Guard) login() string {
	if g.LoginRoute == "" {
		return NameLogin
	}
	return g.LoginRoute
}

func (g Guard) fallback() string {
	if g.FallbackRoute == "" {
		return NameDashboard
	}
	return g.FallbackRoute
}

// anonymous is the view used before a session is attached.
type anonymous struct{}

func (anonymous) IsAuthenticated() bool { return false }
func (anonymous) UserRole() string      { return "user" }
