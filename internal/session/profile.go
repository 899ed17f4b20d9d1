// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"bytes"
	"encoding/json"
)

// DefaultRole is reported when no profile is loaded or the profile has no role.
const DefaultRole = "user"

// Profile is the current user as the backend describes it.
// Fields the backend sends beyond the typed ones are kept and round-trip
// through storage unchanged.
type Profile struct {
	ID       int64  `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	IsActive bool   `json:"is_active"`
	Role     string `json:"role,omitempty"`

	raw json.RawMessage
}

type profileFields Profile

// UnmarshalJSON decodes the typed fields and remembers the full document.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var fields profileFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err //nolint:wrapcheck // json.Unmarshaler passthrough
	}
	*p = Profile(fields)
	p.raw = bytes.Clone(data)
	return nil
}

// MarshalJSON returns the document the profile was decoded from, if any.
func (p Profile) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	return json.Marshal(profileFields(p)) //nolint:wrapcheck // json.Marshaler passthrough
}

// Attributes returns every attribute of the profile, including ones
// without a typed field.
func (p Profile) Attributes() map[string]any {
	data, err := p.MarshalJSON()
	if err != nil {
		return nil
	}
	out := make(map[string]any)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// EffectiveRole is Role, or DefaultRole when Role is empty.
func (p Profile) EffectiveRole() string {
	if p.Role == "" {
		return DefaultRole
	}
	return p.Role
}
