// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/samber/oops"
)

// transition persists next and then makes it the current state.
// If persisting fails the in-memory state is left as it was.
func (s *Session) transition(ctx context.Context, next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(ctx, next)
}

// holds reports whether the session currently holds token.
func (s *Session) holds(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token() == token
}

// compareAndTransition is transition, applied only while the session still
// holds token. It reports whether next was applied.
func (s *Session) compareAndTransition(ctx context.Context, token string, next State) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token() != token {
		return false, nil
	}
	if err := s.transitionLocked(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) transitionLocked(ctx context.Context, next State) error {
	if !next.IsAuthenticated() {
		return oops.Code("SESSION_INVALID_TRANSITION").Errorf("use clear to sign out")
	}
	if err := s.store.Set(ctx, KeyToken, next.Token()); err != nil {
		return oops.Code("SESSION_PERSIST_FAILED").With("key", KeyToken).Wrap(err)
	}
	if p := next.Profile(); p != nil {
		data, err := json.Marshal(p)
		if err != nil {
			return oops.Code("SESSION_PERSIST_FAILED").With("key", KeyUser).Wrap(err)
		}
		if err := s.store.Set(ctx, KeyUser, string(data)); err != nil {
			return oops.Code("SESSION_PERSIST_FAILED").With("key", KeyUser).Wrap(err)
		}
	} else if err := s.store.Remove(ctx, KeyUser); err != nil {
		return oops.Code("SESSION_PERSIST_FAILED").With("key", KeyUser).Wrap(err)
	}

	s.state = next
	setAuthenticatedGauge(next)
	return nil
}

// clear drops the in-memory state first, then removes both keys from
// storage. Every removal is attempted even if an earlier one fails.
func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Anonymous()
	setAuthenticatedGauge(s.state)

	var errs []error
	for _, key := range []string{KeyToken, KeyUser} {
		if err := s.store.Remove(ctx, key); err != nil {
			errs = append(errs, oops.Code("SESSION_CLEAR_FAILED").With("key", key).Wrap(err))
		}
	}
	return errors.Join(errs...)
}
