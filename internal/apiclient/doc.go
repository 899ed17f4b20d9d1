// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package apiclient is the HTTP client every backend call goes through.
//
// A Client is bound to one base URL. Before each request it asks its
// [TokenSource] for the current bearer token and, if one is held, sets
// "Authorization: Bearer <token>". The token is read per request, never cached.
//
// There is no response interceptor. Transport failures come back with code
// API_TRANSPORT, and non-2xx responses come back as a [*ResponseError] with
// code API_STATUS. Nothing is retried, and a 401 does not log anyone out here.
// Reacting to failures is the session layer's job.
package apiclient
