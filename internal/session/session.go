// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/authclient/internal/apiclient"
	"github.com/holomush/authclient/internal/notify"
	"github.com/holomush/authclient/internal/storage"
	"github.com/holomush/authclient/pkg/errutil"
)

// Backend endpoints.
const (
	PathAccessToken = "/api/v1/auth/login/access-token"
	PathRegister    = "/api/v1/auth/register"
	PathCurrentUser = "/api/v1/auth/users/me"
	PathLogout      = "/api/v1/auth/logout"
)

// Storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Default navigation targets.
const (
	DefaultLandingPath = "/dashboard"
	DefaultLoginPath   = "/login"
)

// API is the subset of apiclient.Client a session calls.
type API interface {
	Get(ctx context.Context, path string, opts ...apiclient.RequestOption) (*apiclient.Response, error)
	Post(ctx context.Context, path string, body any, opts ...apiclient.RequestOption) (*apiclient.Response, error)
}

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(ctx context.Context, path string) error { return f(ctx, path) }

// Options configures a Session. API and Storage are required.
type Options struct {
	API       API
	Storage   storage.Store
	Navigator Navigator
	Notifier  notify.Notifier
	Logger    *slog.Logger

	// LandingPath is where Login sends the user. Defaults to DefaultLandingPath.
	LandingPath string
	// LoginPath is where Register and Logout send the user. Defaults to DefaultLoginPath.
	LoginPath string
}

// Session is the explicit, injectable authentication context.
// All methods are safe for concurrent use.
type Session struct {
	api      API
	store    storage.Store
	nav      Navigator
	notifier notify.Notifier
	logger   *slog.Logger
	landing  string
	login    string

	// mu guards state and serializes the storage writes that mirror it.
	// It is never held across a backend call.
	mu    sync.RWMutex
	state State
}

// Open creates a Session and hydrates it from storage.
//
// A stored token with an unreadable profile keeps the token and drops the
// profile. A stored profile without a token is ignored.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.API == nil {
		return nil, oops.Code("SESSION_INVALID_OPTIONS").Errorf("API client is required")
	}
	if opts.Storage == nil {
		return nil, oops.Code("SESSION_INVALID_OPTIONS").Errorf("storage is required")
	}

	s := &Session{
		api:      opts.API,
		store:    opts.Storage,
		nav:      opts.Navigator,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		landing:  opts.LandingPath,
		login:    opts.LoginPath,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.nav == nil {
		s.nav = NavigatorFunc(func(context.Context, string) error { return nil })
	}
	if s.notifier == nil {
		s.notifier = notify.NewLog(s.logger)
	}
	if s.landing == "" {
		s.landing = DefaultLandingPath
	}
	if s.login == "" {
		s.login = DefaultLoginPath
	}

	state, err := s.hydrate(ctx)
	if err != nil {
		return nil, err
	}
	s.state = state
	setAuthenticatedGauge(state)
	return s, nil
}

func (s *Session) hydrate(ctx context.Context) (State, error) {
	token, ok, err := s.store.Get(ctx, KeyToken)
	if errutil.Code(err) == storage.CodeCorrupt {
		errutil.LogBestEffort(ctx, s.logger, "stored session is unreadable, starting signed out", err)
		return Anonymous(), nil
	}
	if err != nil {
		return State{}, oops.Code("SESSION_HYDRATE_FAILED").With("key", KeyToken).Wrap(err)
	}
	if !ok || token == "" {
		return Anonymous(), nil
	}

	raw, ok, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		return State{}, oops.Code("SESSION_HYDRATE_FAILED").With("key", KeyUser).Wrap(err)
	}
	if !ok || raw == "" || raw == "null" {
		return Authenticated(token, nil), nil
	}

	var profile Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		errutil.LogBestEffort(ctx, s.logger, "discarding unreadable stored profile",
			oops.Code("SESSION_PROFILE_CORRUPT").Wrap(err))
		return Authenticated(token, nil), nil
	}
	return Authenticated(token, &profile), nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token implements apiclient.TokenSource.
func (s *Session) Token() (string, bool) {
	st := s.Snapshot()
	return st.Token(), st.IsAuthenticated()
}

// IsAuthenticated reports whether a token is held.
func (s *Session) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// UserRole is the loaded profile's role, or DefaultRole.
func (s *Session) UserRole() string {
	return s.Snapshot().UserRole()
}

// Profile returns a copy of the loaded profile, or nil.
func (s *Session) Profile() *Profile {
	return s.Snapshot().Profile()
}

func (s *Session) navigate(ctx context.Context, path string) {
	if err := s.nav.Navigate(ctx, path); err != nil {
		errutil.LogBestEffort(ctx, s.logger, "navigation failed", err)
	}
}
