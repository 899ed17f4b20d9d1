// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err carries the given oops code, looked up
// the way Code does. Wrapping without a new code keeps the original one.
func AssertErrorCode(t testing.TB, err error, code string) {
	t.Helper()
	require.Error(t, err, "expected an error with code %s", code)
	_, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	assert.Equal(t, code, Code(err), "unexpected code for: %v", err)
}

// AssertErrorContext asserts that err, or any error joined into it, has
// key=value in its oops context.
func AssertErrorContext(t testing.TB, err error, key string, value any) {
	t.Helper()
	require.Error(t, err)
	for _, e := range flatten(err) {
		oopsErr, ok := oops.AsOops(e)
		if !ok {
			continue
		}
		if got, ok := oopsErr.Context()[key]; ok {
			assert.Equal(t, value, got, "context key %q", key)
			return
		}
	}
	assert.Failf(t, "missing error context", "no error in %q carries context key %q", err, key)
}

// AssertNoSecret asserts that secret appears neither in err's message nor
// in its oops context.
func AssertNoSecret(t testing.TB, err error, secret string) {
	t.Helper()
	require.NotEmpty(t, secret, "secret must not be empty")
	if err == nil {
		return
	}
	assert.NotContains(t, err.Error(), secret, "error message leaks a secret")
	for _, e := range flatten(err) {
		if oopsErr, ok := oops.AsOops(e); ok {
			assert.NotContains(t, fmt.Sprint(oopsErr.Context()), secret, "error context leaks a secret")
		}
	}
}

// flatten expands errors.Join trees into their leaves.
func flatten(err error) []error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, flatten(e)...)
	}
	return out
}
