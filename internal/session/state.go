// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

// State is an immutable snapshot of a session.
//
// The zero value is anonymous. An authenticated state always has a token
// and may or may not have a profile yet.
type State struct {
	token   string
	profile *Profile
}

// Anonymous returns the signed-out state.
func Anonymous() State {
	return State{}
}

// Authenticated returns a signed-in state. A nil profile means it has not been fetched yet.
// An empty token yields the anonymous state, since a profile cannot exist without one.
func Authenticated(token string, profile *Profile) State {
	if token == "" {
		return State{}
	}
	if profile != nil {
		cp := *profile
		profile = &cp
	}
	return State{token: token, profile: profile}
}

// IsAuthenticated reports whether a token is held.
func (s State) IsAuthenticated() bool {
	return s.token != ""
}

// Token returns the bearer token, or "" when anonymous.
func (s State) Token() string {
	return s.token
}

// Profile returns a copy of the loaded profile, or nil.
func (s State) Profile() *Profile {
	if s.profile == nil {
		return nil
	}
	cp := *s.profile
	return &cp
}

// UserRole is the profile's role, or DefaultRole when no profile is loaded.
func (s State) UserRole() string {
	if s.profile == nil {
		return DefaultRole
	}
	return s.profile.EffectiveRole()
}
