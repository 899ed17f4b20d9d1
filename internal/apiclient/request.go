// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package apiclient

import (
	"encoding/json"
	"net/http"

	"github.com/samber/oops"
)

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	header http.Header
}

// WithHeader sets a header on one request, replacing the client default.
// Authorization cannot be overridden while a token is held.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Set(key, value)
	}
}

// WithContentType overrides the Content-Type of one request.
func WithContentType(contentType string) RequestOption {
	return WithHeader("Content-Type", contentType)
}

// Response is a fully buffered backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return oops.Code("API_DECODE_FAILED").
			With("status", r.StatusCode).
			Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return oops.Code("API_DECODE_FAILED").
			With("status", r.StatusCode).
			Wrap(err)
	}
	return nil
}
