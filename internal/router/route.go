// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package router

// Route names of the default table.
const (
	NameRoot                = "Root"
	NameLogin               = "Login"
	NameRegister            = "Register"
	NameDashboard           = "Dashboard"
	NameAdminUserManagement = "AdminUserManagement"
)

// RoleAdmin is the role the admin pages require.
const RoleAdmin = "admin"

// Route is one entry of the route table.
type Route struct {
	// Path is an absolute path. It may contain gobwas/glob wildcards,
	// e.g. "/files/*", with "/" as the separator.
	Path string `json:"path" yaml:"path"`
	// Name identifies the route for guard redirects. Optional for
	// routes that only redirect.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Redirect sends every visit to another path before any guard runs.
	Redirect string `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	// RequiresAuth rejects anonymous visitors.
	RequiresAuth bool `json:"requires_auth,omitempty" yaml:"requires_auth,omitempty"`
	// RequiresRole rejects visitors whose role is not exactly this one.
	RequiresRole string `json:"requires_role,omitempty" yaml:"requires_role,omitempty"`
}

// DefaultRoutes returns the application's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Name: NameRoot, Redirect: "/dashboard"},
		{Path: "/login", Name: NameLogin},
		{Path: "/register", Name: NameRegister},
		{Path: "/dashboard", Name: NameDashboard, RequiresAuth: true},
		{Path: "/admin/users", Name: NameAdminUserManagement, RequiresAuth: true, RequiresRole: RoleAdmin},
	}
}
