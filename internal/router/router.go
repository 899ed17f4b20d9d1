// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package router

import (
	"context"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/authclient/internal/notify"
)

const instrumentationName = "github.com/holomush/authclient/internal/router"

// DefaultMaxRedirects bounds how many redirects one Push may follow.
const DefaultMaxRedirects = 8

// Location is where the user currently is.
type Location struct {
	Path  string `json:"path" yaml:"path"`
	Route Route  `json:"route" yaml:"route"`
}

// Step records one visit during a navigation.
type Step struct {
	Path     string   `json:"path" yaml:"path"`
	Route    string   `json:"route" yaml:"route"`
	Decision Decision `json:"decision" yaml:"decision"`
}

// Navigation is the result of one Push.
type Navigation struct {
	Requested string `json:"requested" yaml:"requested"`
	Path      string `json:"path" yaml:"path"`
	Route     Route  `json:"route" yaml:"route"`
	Steps     []Step `json:"steps" yaml:"steps"`
}

// Redirected reports whether the user ended up somewhere other than requested.
func (n Navigation) Redirected() bool {
	return n.Path != n.Requested
}

// Router resolves paths against a table and gates them with a guard.
// It is safe for concurrent use.
type Router struct {
	table        *Table
	guard        Guard
	notifier     notify.Notifier
	logger       *slog.Logger
	tracer       trace.Tracer
	maxRedirects int

	mu      sync.RWMutex
	view    View
	current *Location
}

// Option configures a Router during construction.
type Option func(*Router)

// WithTracerProvider sets the OpenTelemetry tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Router) {
		if tp != nil {
			r.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// WithNotifier sets where guard warnings are shown.
// If not provided, warnings are logged.
func WithNotifier(n notify.Notifier) Option {
	return func(r *Router) {
		r.notifier = n
	}
}

// WithLogger sets the router's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithView attaches the session the guard reads. See Attach.
func WithView(v View) Option {
	return func(r *Router) {
		r.view = v
	}
}

// WithMaxRedirects bounds the redirects one Push may follow.
func WithMaxRedirects(n int) Option {
	return func(r *Router) {
		r.maxRedirects = n
	}
}

// New creates a router over table. Returns an error if table is nil.
func New(table *Table, opts ...Option) (*Router, error) {
	if table == nil {
		return nil, oops.Code("ROUTER_INVALID_OPTIONS").Errorf("route table is required")
	}
	r := &Router{
		table:        table,
		tracer:       otel.Tracer(instrumentationName),
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.notifier == nil {
		r.notifier = notify.NewLog(r.logger)
	}
	return r, nil
}

// NewDefault creates a router over DefaultRoutes.
func NewDefault(opts ...Option) (*Router, error) {
	table, err := NewTable(DefaultRoutes()...)
	if err != nil {
		return nil, err
	}
	return New(table, opts...)
}

// Attach sets the session the guard reads. Until a view is attached every
// visitor is anonymous. The session and router reference each other, so
// one of them has to be wired after construction.
func (r *Router) Attach(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view = v
}

// Routes returns the route table in order.
func (r *Router) Routes() []Route {
	return r.table.All()
}

// Current returns the last location a Push settled on.
func (r *Router) Current() (Location, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Location{}, false
	}
	return *r.current, true
}

// Navigate implements session.Navigator.
func (r *Router) Navigate(ctx context.Context, path string) error {
	_, err := r.Push(ctx, path)
	return err
}

// Push navigates to path.
//
// Static redirects are followed first. The guard then runs on the route and
// any route it redirects to is guarded again. Warnings are shown before the
// redirect is taken. On success the final location is recorded. On error the
// current location is unchanged and the returned Navigation holds the steps
// taken so far.
func (r *Router) Push(ctx context.Context, rawPath string) (nav Navigation, err error) {
	ctx, span := r.tracer.Start(ctx, "router.push",
		trace.WithAttributes(attribute.String("route.requested", rawPath)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("route.final", nav.Path))
		}
		span.End()
	}()

	target, err := cleanPath(rawPath)
	if err != nil {
		return nav, err
	}
	nav.Requested = target
	view := r.snapshotView()

	for hops := 0; hops <= r.maxRedirects; hops++ {
		route, ok := r.table.Match(target)
		if !ok {
			return nav, ErrNotFound(target)
		}
		label := routeLabel(route)

		if route.Redirect != "" {
			d := Decision{Verdict: VerdictRedirect, RedirectTo: route.Redirect}
			nav.Steps = append(nav.Steps, Step{Path: target, Route: label, Decision: d})
			RecordNavigation(label, d.Verdict)
			target = route.Redirect
			continue
		}

		d := r.guard.Check(route, view)
		nav.Steps = append(nav.Steps, Step{Path: target, Route: label, Decision: d})
		RecordNavigation(label, d.Verdict)

		if d.Allowed() {
			nav.Path = target
			nav.Route = route
			r.setCurrent(Location{Path: target, Route: route})
			r.logger.DebugContext(ctx, "navigated",
				"requested", nav.Requested,
				"path", target,
				"redirects", len(nav.Steps)-1)
			return nav, nil
		}

		if d.Warning != "" {
			r.notifier.Notify(ctx, notify.Notice{Level: notify.LevelWarning, Message: d.Warning})
		}
		next, ok := r.table.ByName(d.RedirectTo)
		if !ok {
			return nav, ErrUnknownTarget(d.RedirectTo)
		}
		if isPattern(next.Path) {
			return nav, ErrInvalidRoute(next.Path, "a pattern cannot be a redirect target")
		}
		r.logger.DebugContext(ctx, "navigation redirected by guard",
			"path", target,
			"verdict", string(d.Verdict),
			"redirect_to", next.Path)
		target = next.Path
	}
	return nav, ErrRedirectLoop(nav.Requested, r.maxRedirects)
}

func (r *Router) snapshotView() View {
	r.mu.RLock()
	v := r.view
	r.mu.RUnlock()
	if v == nil {
		return anonymous{}
	}
	return frozen{authenticated: v.IsAuthenticated(), role: v.UserRole()}
}

func (r *Router) setCurrent(loc Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = &loc
}

// frozen pins a view for the length of one Push.
type frozen struct {
	authenticated bool
	role          string
}

func (f frozen) IsAuthenticated() bool { return f.authenticated }
func (f frozen) UserRole() string      { return f.role }

func routeLabel(r Route) string {
	if r.Name != "" {
		return r.Name
	}
	return r.Path
}

// cleanPath accepts an absolute path, optionally with query or fragment,
// and returns its cleaned path component.
func cleanPath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", oops.Code(CodeInvalidPath).With("path", raw).Wrap(err)
	}
	if u.Scheme != "" || u.Host != "" {
		return "", oops.Code(CodeInvalidPath).With("path", raw).Errorf("navigation target must be a path, got %q", raw)
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		return "", oops.Code(CodeInvalidPath).With("path", raw).Errorf("navigation target must be absolute, got %q", raw)
	}
	return path.Clean(p), nil
}
