// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ResponseError describes a non-2xx backend response.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	// Detail is the backend's human-readable reason, when it sent one.
	Detail string
}

func (e *ResponseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// StatusCode extracts the HTTP status from an error returned by Client.
// It reports false for transport failures and unrelated errors.
func StatusCode(err error) (int, bool) {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode, true
	}
	return 0, false
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	code, ok := StatusCode(err)
	return ok && code == http.StatusUnauthorized
}

// detailFrom pulls a message out of the common error body shapes:
// {"detail": "..."}, {"detail": [{"msg": "..."}]} and {"message": "..."}.
func detailFrom(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
			return items[0].Msg
		}
	}
	return payload.Message
}
