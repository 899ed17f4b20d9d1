// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"context"
	"net/url"

	"github.com/samber/oops"

	"github.com/holomush/authclient/internal/notify"
	"github.com/holomush/authclient/pkg/errutil"
)

// RegisteredMessage acknowledges a successful registration.
const RegisteredMessage = "Registration succeeded! Please log in with your username and password."

// Credentials are exchanged for an access token.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// UserInfo is the registration payload.
type UserInfo struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Outcome reports what a best-effort action did on the backend.
// The local effect of the action has happened regardless.
type Outcome struct {
	// Attempted is false when the action had nothing to do.
	Attempted bool
	// Err is the swallowed backend or storage failure, if any.
	Err error
}

// OK reports whether the backend call was made and succeeded.
func (o Outcome) OK() bool {
	return o.Attempted && o.Err == nil
}

// Login exchanges credentials for a token, loads the profile and navigates
// to the landing page. On failure the state is left unchanged and the
// error is returned.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	if err := validateInput("login", creds); err != nil {
		recordTransition(ActionLogin, OutcomeFailure)
		return err
	}

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	resp, err := s.api.Post(ctx, PathAccessToken, form)
	if err != nil {
		recordTransition(ActionLogin, OutcomeFailure)
		errutil.LogBestEffort(ctx, s.logger, "login failed", err)
		return oops.With("operation", "login").With("username", creds.Username).Wrap(err)
	}

	var tr tokenResponse
	if err := resp.Decode(&tr); err != nil {
		recordTransition(ActionLogin, OutcomeFailure)
		return oops.With("operation", "login").Wrap(err)
	}
	if tr.AccessToken == "" {
		recordTransition(ActionLogin, OutcomeFailure)
		return oops.Code("SESSION_TOKEN_MISSING").
			With("operation", "login").
			Errorf("login response carried no access_token")
	}

	if err := s.transition(ctx, Authenticated(tr.AccessToken, nil)); err != nil {
		recordTransition(ActionLogin, OutcomeFailure)
		return oops.With("operation", "login").Wrap(err)
	}
	recordTransition(ActionLogin, OutcomeSuccess)
	s.logger.InfoContext(ctx, "logged in", "username", creds.Username)

	s.FetchUser(ctx)
	s.navigate(ctx, s.landing)
	return nil
}

// Register creates an account. On success the user is told to log in and
// sent to the login page. The session state is never touched.
func (s *Session) Register(ctx context.Context, info UserInfo) error {
	if err := validateInput("register", info); err != nil {
		recordTransition(ActionRegister, OutcomeFailure)
		return err
	}
	if _, err := s.api.Post(ctx, PathRegister, info); err != nil {
		recordTransition(ActionRegister, OutcomeFailure)
		errutil.LogBestEffort(ctx, s.logger, "registration failed", err)
		return oops.With("operation", "register").With("username", info.Username).Wrap(err)
	}
	recordTransition(ActionRegister, OutcomeSuccess)

	s.notifier.Notify(ctx, notify.Notice{Level: notify.LevelInfo, Message: RegisteredMessage})
	s.navigate(ctx, s.login)
	return nil
}

// FetchUser reloads the profile for the held token.
//
// It does nothing when anonymous. Any failure, transient or not, is taken
// to mean the token is no longer valid and ends in Logout. The failure is
// logged and reported in the Outcome, never returned as an error.
//
// A profile is applied, and a failure acted on, only if the session still
// holds the token it was fetched with, so a concurrent Logout or Login wins
// over a stale fetch.
func (s *Session) FetchUser(ctx context.Context) Outcome {
	token, ok := s.Token()
	if !ok {
		recordTransition(ActionFetchUser, OutcomeSkipped)
		return Outcome{}
	}

	profile, err := s.fetchProfile(ctx)
	if err != nil {
		if !s.holds(token) {
			recordTransition(ActionFetchUser, OutcomeStale)
			s.logger.DebugContext(ctx, "session changed while fetching user, ignoring failure", "error", err)
			return Outcome{Attempted: true, Err: err}
		}
		recordTransition(ActionFetchUser, OutcomeFailure)
		errutil.LogBestEffort(ctx, s.logger, "could not fetch current user, logging out", err)
		s.Logout(ctx)
		return Outcome{Attempted: true, Err: err}
	}

	applied, err := s.compareAndTransition(ctx, token, Authenticated(token, profile))
	if err != nil {
		recordTransition(ActionFetchUser, OutcomeFailure)
		errutil.LogBestEffort(ctx, s.logger, "could not persist current user", err)
		return Outcome{Attempted: true, Err: err}
	}
	if !applied {
		recordTransition(ActionFetchUser, OutcomeStale)
		s.logger.DebugContext(ctx, "session changed while fetching user, discarding profile")
		return Outcome{Attempted: true}
	}

	recordTransition(ActionFetchUser, OutcomeSuccess)
	return Outcome{Attempted: true}
}

func (s *Session) fetchProfile(ctx context.Context) (*Profile, error) {
	resp, err := s.api.Get(ctx, PathCurrentUser)
	if err != nil {
		return nil, oops.With("operation", "fetch_user").Wrap(err)
	}
	var profile Profile
	if err := resp.Decode(&profile); err != nil {
		return nil, oops.With("operation", "fetch_user").Wrap(err)
	}
	return &profile, nil
}

// Logout tells the backend the session is over, then clears the token and
// profile from memory and storage and navigates to the login page.
//
// The local cleanup runs even if the backend call fails, panics or ctx is
// cancelled. Backend and storage failures are logged and reported in the Outcome.
func (s *Session) Logout(ctx context.Context) (out Outcome) {
	out.Attempted = true
	cleanupCtx := context.WithoutCancel(ctx)

	defer func() {
		if err := s.clear(cleanupCtx); err != nil {
			errutil.LogBestEffort(cleanupCtx, s.logger, "could not remove stored session", err)
			if out.Err == nil {
				out.Err = err
			}
		}
		if out.Err != nil {
			recordTransition(ActionLogout, OutcomeFailure)
		} else {
			recordTransition(ActionLogout, OutcomeSuccess)
		}
		s.navigate(cleanupCtx, s.login)
	}()

	if _, err := s.api.Post(ctx, PathLogout, nil); err != nil {
		errutil.LogBestEffort(ctx, s.logger, "backend logout failed, clearing local session anyway", err)
		out.Err = oops.With("operation", "logout").Wrap(err)
	}
	return out
}
