// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/holomush/authclient/internal/session"
	"github.com/holomush/authclient/internal/storage"
)

// backend is a minimal auth API. Any password other than "pw" is rejected.
type backend struct {
	srv *httptest.Server

	mu      sync.Mutex
	role    string
	meFails bool
	token   string
	logouts int
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	b := &backend{role: "user", token: token}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+session.PathAccessToken, b.login)
	mux.HandleFunc("POST "+session.PathRegister, b.register)
	mux.HandleFunc("GET "+session.PathCurrentUser, b.me)
	mux.HandleFunc("POST "+session.PathLogout, b.logout)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeBody(w, http.StatusOK, map[string]any{"message": "ok"})
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) set(fn func(b *backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func (b *backend) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("password") != "pw" {
		writeBody(w, http.StatusUnauthorized, map[string]any{"detail": "Incorrect username or password"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	writeBody(w, http.StatusOK, map[string]any{"access_token": b.token, "token_type": "bearer"})
}

func (b *backend) register(w http.ResponseWriter, r *http.Request) {
	var info session.UserInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil || info.Email == "" {
		writeBody(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{{"msg": "field required"}}})
		return
	}
	writeBody(w, http.StatusCreated, map[string]any{"username": info.Username, "email": info.Email})
}

func (b *backend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.meFails || r.Header.Get("Authorization") != "Bearer "+b.token {
		writeBody(w, http.StatusUnauthorized, map[string]any{"detail": "Could not validate credentials"})
		return
	}
	writeBody(w, http.StatusOK, map[string]any{
		"id": 1, "username": "alice", "email": "alice@example.com", "is_active": true, "role": b.role,
	})
}

func (b *backend) logout(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.logouts++
	b.mu.Unlock()
	writeBody(w, http.StatusOK, map[string]any{"message": "logged out"})
}

func (b *backend) logoutCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logouts
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// cli runs authclient commands against one backend and one session file.
type cli struct {
	t           *testing.T
	backendURL  string
	sessionPath string
	deps        *Deps
}

func newCLI(t *testing.T, b *backend) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "AUTHCLIENT_") {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	url := ""
	if b != nil {
		url = b.srv.URL
	}
	return &cli{t: t, backendURL: url, sessionPath: filepath.Join(dir, "state", "session.json")}
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes one command with the backend and session flags prepended.
func (c *cli) run(stdin string, args ...string) result {
	c.t.Helper()
	base := []string{"--storage", "file", "--storage-path", c.sessionPath, "--log-level", "error"}
	if c.backendURL != "" {
		base = append(base, "--api-base-url", c.backendURL)
	}

	cmd := newRootCmdWithDeps(c.deps)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, base...))

	err := cmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (c *cli) login(t *testing.T) {
	t.Helper()
	res := c.run("pw\n", "login", "--username", "alice", "--password-stdin")
	require.NoError(t, res.err, res.stderr)
}

func (c *cli) storedSession(t *testing.T) map[string]string {
	t.Helper()
	data, err := os.ReadFile(c.sessionPath)
	if os.IsNotExist(err) {
		return map[string]string{}
	}
	require.NoError(t, err)
	out := map[string]string{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

var errTestConfig = errors.New("config unavailable")

// nopCloser keeps a shared store open across command runs.
type nopCloser struct {
	*storage.Memory
}

func (nopCloser) Close() error { return nil }

// spanRecorder is a no-op TracerProvider that remembers span names.
type spanRecorder struct {
	noop.TracerProvider

	mu    sync.Mutex
	spans []string
}

func (p *spanRecorder) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return recordingTracer{Tracer: p.TracerProvider.Tracer(name, opts...), p: p}
}

func (p *spanRecorder) Spans() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.spans))
	copy(out, p.spans)
	return out
}

type recordingTracer struct {
	trace.Tracer
	p *spanRecorder
}

func (t recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	t.p.mu.Lock()
	t.p.spans = append(t.p.spans, name)
	t.p.mu.Unlock()
	return t.Tracer.Start(ctx, name, opts...)
}
