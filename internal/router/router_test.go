// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package router_test

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/holomush/authclient/internal/notify"
	"github.com/holomush/authclient/internal/router"
	"github.com/holomush/authclient/pkg/errutil"
)

// mutableView is a session stand-in whose state tests can flip.
type mutableView struct {
	mu sync.Mutex
	v  fakeView
}

func (m *mutableView) set(v fakeView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.v = v
}

func (m *mutableView) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.authenticated
}

func (m *mutableView) UserRole() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.role
}

func newRouter(t *testing.T, view router.View) (*router.Router, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	r, err := router.NewDefault(router.WithNotifier(rec), router.WithView(view))
	require.NoError(t, err)
	return r, rec
}

func TestNew_RequiresTable(t *testing.T) {
	r, err := router.New(nil)
	require.Error(t, err)
	assert.Nil(t, r)
	errutil.AssertErrorCode(t, err, "ROUTER_INVALID_OPTIONS")
}

func TestPush_DefaultTable(t *testing.T) {
	tests := []struct {
		name      string
		view      router.View
		path      string
		wantPath  string
		wantRoute string
		verdicts  []router.Verdict
		warned    bool
	}{
		{
			name: "anonymous to login", view: anonymousView, path: "/login",
			wantPath: "/login", wantRoute: router.NameLogin,
			verdicts: []router.Verdict{router.VerdictAllow},
		},
		{
			name: "anonymous to dashboard goes to login", view: anonymousView, path: "/dashboard",
			wantPath: "/login", wantRoute: router.NameLogin,
			verdicts: []router.Verdict{router.VerdictRequireAuth, router.VerdictAllow},
		},
		{
			name: "anonymous to admin goes to login", view: anonymousView, path: "/admin/users",
			wantPath: "/login", wantRoute: router.NameLogin,
			verdicts: []router.Verdict{router.VerdictRequireAuth, router.VerdictAllow},
		},
		{
			name: "user to admin goes to dashboard with warning", view: userView, path: "/admin/users",
			wantPath: "/dashboard", wantRoute: router.NameDashboard,
			verdicts: []router.Verdict{router.VerdictRoleMismatch, router.VerdictAllow},
			warned:   true,
		},
		{
			name: "admin to admin", view: adminView, path: "/admin/users",
			wantPath: "/admin/users", wantRoute: router.NameAdminUserManagement,
			verdicts: []router.Verdict{router.VerdictAllow},
		},
		{
			name: "root redirects to dashboard", view: userView, path: "/",
			wantPath: "/dashboard", wantRoute: router.NameDashboard,
			verdicts: []router.Verdict{router.VerdictRedirect, router.VerdictAllow},
		},
		{
			name: "anonymous root ends at login", view: anonymousView, path: "/",
			wantPath: "/login", wantRoute: router.NameLogin,
			verdicts: []router.Verdict{router.VerdictRedirect, router.VerdictRequireAuth, router.VerdictAllow},
		},
		{
			name: "empty path is root", view: userView, path: "",
			wantPath: "/dashboard", wantRoute: router.NameDashboard,
			verdicts: []router.Verdict{router.VerdictRedirect, router.VerdictAllow},
		},
		{
			name: "query and trailing slash are ignored", view: adminView, path: "/admin/users/?page=2#top",
			wantPath: "/admin/users", wantRoute: router.NameAdminUserManagement,
			verdicts: []router.Verdict{router.VerdictAllow},
		},
		{
			name: "no view attached is anonymous", view: nil, path: "/dashboard",
			wantPath: "/login", wantRoute: router.NameLogin,
			verdicts: []router.Verdict{router.VerdictRequireAuth, router.VerdictAllow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rec := newRouter(t, tt.view)

			nav, err := r.Push(context.Background(), tt.path)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPath, nav.Path)
			assert.Equal(t, tt.wantRoute, nav.Route.Name)
			verdicts := make([]router.Verdict, 0, len(nav.Steps))
			for _, s := range nav.Steps {
				verdicts = append(verdicts, s.Decision.Verdict)
			}
			assert.Equal(t, tt.verdicts, verdicts)

			loc, ok := r.Current()
			require.True(t, ok)
			assert.Equal(t, tt.wantPath, loc.Path)

			if tt.warned {
				assert.Equal(t, []notify.Notice{{Level: notify.LevelWarning, Message: router.InsufficientPermissions}}, rec.Notices())
			} else {
				assert.Empty(t, rec.Notices())
			}
		})
	}
}

func TestPush_NeverReachesGuardedTarget(t *testing.T) {
	r, _ := newRouter(t, anonymousView)

	nav, err := r.Push(context.Background(), "/dashboard")
	require.NoError(t, err)

	assert.True(t, nav.Redirected())
	assert.Equal(t, "/dashboard", nav.Requested)
	assert.NotEqual(t, "/dashboard", nav.Path)
	loc, _ := r.Current()
	assert.Equal(t, "/login", loc.Path)
}

func TestPush_UnknownPath(t *testing.T) {
	r, _ := newRouter(t, userView)
	_, err := r.Push(context.Background(), "/login")
	require.NoError(t, err)

	_, err = r.Push(context.Background(), "/nowhere")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, router.CodeNotFound)

	loc, _ := r.Current()
	assert.Equal(t, "/login", loc.Path, "a failed push keeps the current location")
}

func TestPush_InvalidPath(t *testing.T) {
	r, _ := newRouter(t, userView)

	for _, p := range []string{"https://example.com/dashboard", "dashboard", "//evil.example/login"} {
		t.Run(p, func(t *testing.T) {
			_, err := r.Push(context.Background(), p)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, router.CodeInvalidPath)
		})
	}
	_, ok := r.Current()
	assert.False(t, ok)
}

func TestPush_RedirectLoop(t *testing.T) {
	table, err := router.NewTable(
		router.Route{Path: "/a", Redirect: "/b"},
		router.Route{Path: "/b", Redirect: "/a"},
		router.Route{Path: "/login", Name: router.NameLogin, RequiresAuth: true},
	)
	require.NoError(t, err)
	r, err := router.New(table, router.WithMaxRedirects(3))
	require.NoError(t, err)

	for _, p := range []string{"/a", "/login"} {
		nav, err := r.Push(context.Background(), p)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, router.CodeRedirectLoop)
		assert.Len(t, nav.Steps, 4)
	}
}

func TestPush_UnknownGuardTarget(t *testing.T) {
	table, err := router.NewTable(router.Route{Path: "/private", RequiresAuth: true})
	require.NoError(t, err)
	r, err := router.New(table)
	require.NoError(t, err)

	_, err = r.Push(context.Background(), "/private")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, router.CodeUnknownTarget)
}

func TestPush_PatternRoutes(t *testing.T) {
	table, err := router.NewTable(append(router.DefaultRoutes(),
		router.Route{Path: "/files/*", Name: "Files", RequiresAuth: true},
	)...)
	require.NoError(t, err)
	view := &mutableView{v: anonymousView}
	r, err := router.New(table, router.WithView(view))
	require.NoError(t, err)

	nav, err := r.Push(context.Background(), "/files/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/login", nav.Path)

	view.set(userView)
	nav, err = r.Push(context.Background(), "/files/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/files/report.pdf", nav.Path)
	assert.Equal(t, "Files", nav.Route.Name)
}

func TestAttach_GuardFollowsSession(t *testing.T) {
	view := &mutableView{v: anonymousView}
	r, _ := newRouter(t, nil)
	ctx := context.Background()

	require.NoError(t, r.Navigate(ctx, "/dashboard"))
	loc, _ := r.Current()
	assert.Equal(t, "/login", loc.Path)

	r.Attach(view)
	view.set(userView)
	require.NoError(t, r.Navigate(ctx, "/dashboard"))
	loc, _ = r.Current()
	assert.Equal(t, "/dashboard", loc.Path)

	view.set(anonymousView)
	require.NoError(t, r.Navigate(ctx, "/dashboard"))
	loc, _ = r.Current()
	assert.Equal(t, "/login", loc.Path)
}

func TestPush_RecordsMetrics(t *testing.T) {
	r, _ := newRouter(t, userView)
	mismatch := router.Navigations.WithLabelValues(router.NameAdminUserManagement, string(router.VerdictRoleMismatch))
	allowed := router.Navigations.WithLabelValues(router.NameDashboard, string(router.VerdictAllow))
	beforeMismatch, beforeAllowed := testutil.ToFloat64(mismatch), testutil.ToFloat64(allowed)

	_, err := r.Push(context.Background(), "/admin/users")
	require.NoError(t, err)

	assert.Equal(t, beforeMismatch+1, testutil.ToFloat64(mismatch))
	assert.Equal(t, beforeAllowed+1, testutil.ToFloat64(allowed))
}

func TestPush_Concurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	view := &mutableView{v: userView}
	r, _ := newRouter(t, view)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%10 == 0 {
				view.set(fakeView{authenticated: i%20 == 0, role: "user"})
			}
			_, err := r.Push(context.Background(), "/dashboard")
			assert.NoError(t, err)
			_, _ = r.Current()
		}()
	}
	wg.Wait()

	loc, ok := r.Current()
	require.True(t, ok)
	assert.Contains(t, []string{"/dashboard", "/login"}, loc.Path)
}
