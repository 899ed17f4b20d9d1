// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package storage provides the durable key-value store a session is mirrored to.
//
// # Backends
//
//   - [Memory] - process-local map, used by tests and --storage=memory
//   - [File] - a single JSON document, replaced atomically on every write
//   - [Redis] - keys under a prefix on a shared Redis server
//
// Every backend treats keys independently. There is no transaction spanning
// several keys, so a crash between two writes can leave them inconsistent.
// Callers that persist related keys must tolerate that on the next read.
package storage
