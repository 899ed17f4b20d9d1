// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package router

import (
	"strings"

	"github.com/gobwas/glob"
)

type entry struct {
	route   Route
	pattern glob.Glob // nil for literal paths
}

// Table is an immutable, ordered set of routes.
// Literal paths win over patterns; patterns are tried in table order.
type Table struct {
	entries []entry
	literal map[string]int
	byName  map[string]int
}

// NewTable compiles routes into a table.
// Paths must be absolute and unique. Names must be unique when set.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{
		entries: make([]entry, 0, len(routes)),
		literal: make(map[string]int),
		byName:  make(map[string]int),
	}
	seen := make(map[string]bool)
	for _, r := range routes {
		if !strings.HasPrefix(r.Path, "/") {
			return nil, ErrInvalidRoute(r.Path, "path must start with /")
		}
		if seen[r.Path] {
			return nil, ErrInvalidRoute(r.Path, "duplicate path")
		}
		seen[r.Path] = true
		if r.Redirect != "" && !strings.HasPrefix(r.Redirect, "/") {
			return nil, ErrInvalidRoute(r.Path, "redirect must start with /")
		}
		if r.Name != "" {
			if _, dup := t.byName[r.Name]; dup {
				return nil, ErrInvalidRoute(r.Path, "duplicate name "+r.Name)
			}
			t.byName[r.Name] = len(t.entries)
		}

		e := entry{route: r}
		if isPattern(r.Path) {
			g, err := glob.Compile(r.Path, '/')
			if err != nil {
				return nil, ErrInvalidRoute(r.Path, err.Error())
			}
			e.pattern = g
		} else {
			t.literal[r.Path] = len(t.entries)
		}
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// Match finds the route for a cleaned path.
func (t *Table) Match(path string) (Route, bool) {
	if i, ok := t.literal[path]; ok {
		return t.entries[i].route, true
	}
	for _, e := range t.entries {
		if e.pattern != nil && e.pattern.Match(path) {
			return e.route, true
		}
	}
	return Route{}, false
}

// ByName finds a route by its name.
func (t *Table) ByName(name string) (Route, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return t.entries[i].route, true
}

// All returns the routes in table order.
// The returned slice is a copy and safe to modify.
func (t *Table) All() []Route {
	out := make([]Route, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.route
	}
	return out
}

func isPattern(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
