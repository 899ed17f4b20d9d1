// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package router resolves navigation targets against a route table and
// gates them by authentication and role.
//
// A Router is the process-side stand-in for a single-page application's
// history: Push resolves a path, follows static redirects, runs the Guard
// and records where the user ended up. Router implements session.Navigator
// so session actions can move the user after login and logout.
package router
