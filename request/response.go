// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"sort"
	"strings"
)

// A Response holds the parsed state of an HTTP response received by an
// asynchronous task.
//
// Header is a flattened view of the response header in which every
// field name is lower case and carries a single value. When a field
// appears more than once, the last value received wins. The complete
// header, as received, is available in RawHeader.
type Response struct {
	// StatusCode is the HTTP status code, e.g. 200.
	StatusCode int

	// Status is the status line text, e.g. "200 OK".
	Status string

	// Proto is the protocol version, e.g. "HTTP/1.1".
	Proto string

	// Header maps lower case header field names to their last value.
	Header map[string]string

	// RawHeader is the response header exactly as received.
	RawHeader http.Header

	body []byte
}

// NewResponse builds a Response from a raw HTTP response and its fully
// buffered body. A nil raw response yields a Response with a zero
// status code and an empty header.
func NewResponse(raw *http.Response, body []byte) *Response {
	r := &Response{
		body: body,
	}
	if raw == nil {
		r.Header = map[string]string{}
		return r
	}
	r.StatusCode = raw.StatusCode
	r.Status = raw.Status
	r.Proto = raw.Proto
	r.RawHeader = raw.Header
	r.Header = NormalizeHeader(raw.Header)
	return r
}

// Body returns the raw response body. It is never nil for a response
// built from a non-nil body, but may have zero length.
func (r *Response) Body() []byte {
	return r.body
}

// Get returns the value of the named header field. The lookup is case
// insensitive. It returns "" if the field is absent.
func (r *Response) Get(name string) string {
	return r.Header[strings.ToLower(name)]
}

// NormalizeHeader flattens h into a map keyed by lower case field name.
//
// Each field keeps its last value. If h holds several keys that differ
// only in case (possible when a header map is built by hand rather than
// through http.Header.Add), the keys are merged in sorted order, so
// the value of the key sorting last wins.
func NormalizeHeader(h http.Header) map[string]string {
	m := make(map[string]string, len(h))
	if len(h) == 0 {
		return m
	}

	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		values := h[k]
		if len(values) == 0 {
			continue
		}
		m[strings.ToLower(k)] = values[len(values)-1]
	}
	return m
}
