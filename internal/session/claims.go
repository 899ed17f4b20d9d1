// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Claims is what the access token says about itself.
// It is decoded without verifying the signature and is for display only.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's exp is before now. A token without exp never expires.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes the registered claims of a JWT without verifying it.
func ParseClaims(token string) (Claims, error) {
	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &registered); err != nil {
		return Claims{}, oops.Code("SESSION_TOKEN_NOT_JWT").Wrap(err)
	}

	var c Claims
	c.Subject = registered.Subject
	if registered.IssuedAt != nil {
		c.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		c.ExpiresAt = registered.ExpiresAt.Time
	}
	return c, nil
}

// Claims decodes the held token. It fails with SESSION_ANONYMOUS when no token is held.
func (s *Session) Claims() (Claims, error) {
	token, ok := s.Token()
	if !ok {
		return Claims{}, oops.Code("SESSION_ANONYMOUS").Errorf("no token held")
	}
	return ParseClaims(token)
}
