// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package session holds the client's authentication state and the actions
// that change it.
//
// # State
//
// A [Session] is either anonymous or authenticated with a bearer token and,
// once fetched, the user's [Profile]. A profile never exists without a token.
// The pair is replaced as one value, so readers never see a token from one
// login next to a profile from another.
//
// The state is mirrored to a [storage.Store] under the keys "token" and
// "user" and rehydrated by [Open].
//
// # Actions
//
//   - Login - exchange credentials for a token, load the profile, go to the landing page
//   - Register - create an account, acknowledge, go to the login page
//   - FetchUser - reload the profile; any failure is treated as token invalidation
//   - Logout - best-effort backend call, then unconditional local cleanup
//
// Login and Register return backend failures to the caller. FetchUser and
// Logout log them and report them in an [Outcome]; their local effect
// happens regardless.
package session
