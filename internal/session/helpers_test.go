// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/holomush/authclient/internal/apiclient"
	"github.com/holomush/authclient/internal/notify"
	"github.com/holomush/authclient/internal/session"
	"github.com/holomush/authclient/internal/storage"
)

// request is one call the fake backend received.
type request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          string
}

// fakeBackend imitates the auth endpoints. Zero status fields mean 200.
type fakeBackend struct {
	srv *httptest.Server

	mu             sync.Mutex
	requests       []request
	accessToken    string
	loginStatus    int
	loginBody      string
	meStatus       int
	meBody         string
	meGate         chan struct{}
	meEntered      chan struct{}
	logoutStatus   int
	registerStatus int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		accessToken: signedToken(t, "alice"),
		meBody:      `{"id":1,"email":"alice@example.com","username":"alice","is_active":true,"role":"user"}`,
	}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          string(body),
	})
	gate, entered := b.meGate, b.meEntered
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case session.PathAccessToken:
		b.mu.Lock()
		status, respBody := b.loginStatus, b.loginBody
		if respBody == "" {
			respBody = `{"access_token":"` + b.accessToken + `","token_type":"bearer"}`
		}
		b.mu.Unlock()
		writeStatus(w, status, respBody)
	case session.PathCurrentUser:
		// The reply is fixed when the request arrives, not when the gate opens.
		b.mu.Lock()
		status, respBody := b.meStatus, b.meBody
		b.mu.Unlock()
		if gate != nil {
			if entered != nil {
				close(entered)
			}
			<-gate
		}
		writeStatus(w, status, respBody)
	case session.PathLogout:
		b.mu.Lock()
		status := b.logoutStatus
		b.mu.Unlock()
		writeStatus(w, status, `{"message":"logged out"}`)
	case session.PathRegister:
		b.mu.Lock()
		status := b.registerStatus
		b.mu.Unlock()
		if status == 0 {
			status = http.StatusCreated
		}
		writeStatus(w, status, `{"detail":"Username already registered"}`)
	default:
		http.NotFound(w, r)
	}
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (b *fakeBackend) set(fn func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func (b *fakeBackend) Requests() []request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]request, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *fakeBackend) requestsTo(path string) []request {
	var out []request
	for _, r := range b.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// navRecorder records every navigation.
type navRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (n *navRecorder) Navigate(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
	return nil
}

func (n *navRecorder) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.paths))
	copy(out, n.paths)
	return out
}

// harness wires a real apiclient.Client to a fake backend and a session.
type harness struct {
	backend *fakeBackend
	client  *apiclient.Client
	store   *storage.Memory
	nav     *navRecorder
	notices *notify.Recorder
	sess    *session.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		backend: newFakeBackend(t),
		store:   storage.NewMemory(),
		nav:     &navRecorder{},
		notices: &notify.Recorder{},
	}
	h.open(t)
	return h
}

// open (re)creates the client and session on the harness store.
func (h *harness) open(t *testing.T) {
	t.Helper()
	client, err := apiclient.New(h.backend.srv.URL)
	require.NoError(t, err)

	sess, err := session.Open(context.Background(), session.Options{
		API:       client,
		Storage:   h.store,
		Navigator: h.nav,
		Notifier:  h.notices,
	})
	require.NoError(t, err)
	client.SetTokenSource(sess)

	h.client = client
	h.sess = sess
}

func (h *harness) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := h.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	now := time.Now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func parseForm(t *testing.T, body string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(body)
	require.NoError(t, err)
	return v
}

func decodeJSON(t *testing.T, body string) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

// faultyStore fails the operations it is told to.
type faultyStore struct {
	*storage.Memory
	failGet    bool
	failSet    bool
	failRemove bool
}

var errStorageDown = errors.New("storage unavailable")

func (f *faultyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errStorageDown
	}
	return f.Memory.Get(ctx, key)
}

func (f *faultyStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errStorageDown
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *faultyStore) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return errStorageDown
	}
	return f.Memory.Remove(ctx, key)
}
