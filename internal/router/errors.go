// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package router

import (
	"github.com/samber/oops"
)

// Error codes for routing failures.
const (
	CodeNotFound      = "ROUTE_NOT_FOUND"
	CodeRedirectLoop  = "ROUTE_REDIRECT_LOOP"
	CodeInvalidRoute  = "ROUTE_INVALID"
	CodeInvalidPath   = "ROUTE_INVALID_PATH"
	CodeUnknownTarget = "ROUTE_UNKNOWN_TARGET"
)

// ErrNotFound creates an error for a path no route matches.
func ErrNotFound(path string) error {
	return oops.Code(CodeNotFound).
		With("path", path).
		Errorf("no route matches %s", path)
}

// ErrRedirectLoop creates an error for a navigation that never settles.
func ErrRedirectLoop(path string, hops int) error {
	return oops.Code(CodeRedirectLoop).
		With("path", path).
		With("hops", hops).
		Errorf("navigation to %s did not settle after %d redirects", path, hops)
}

// ErrInvalidRoute creates an error for a route that cannot be added to a table.
func ErrInvalidRoute(path, reason string) error {
	return oops.Code(CodeInvalidRoute).
		With("route", path).
		Errorf("invalid route %q: %s", path, reason)
}

// ErrUnknownTarget creates an error for a guard redirect to a route name the table lacks.
func ErrUnknownTarget(name string) error {
	return oops.Code(CodeUnknownTarget).
		With("route_name", name).
		Errorf("redirect target route %q is not in the table", name)
}
