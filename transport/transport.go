// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gogama/asynchttp/request"
)

// A Sink receives the response produced by a Transport.
type Sink interface {
	// OnResponse is called by the transport at most once per Execute,
	// before Execute returns nil. The raw response body has already
	// been read in full into body and closed.
	OnResponse(raw *http.Response, body []byte)
}

// A Transport sends the HTTP request described by a plan.
//
// Execute blocks until the call completes. If a response is received
// it calls s.OnResponse and returns nil. Otherwise it returns the
// transport error and does not call s. The context carries deadlines
// and correlation values. Implementations may add the deadline chosen
// by their timeout policy to it before handing it to the underlying
// client, as HTTP and Resty do.
//
// Implementations must be safe for concurrent use by multiple
// goroutines, since many tasks share a transport.
type Transport interface {
	Execute(ctx context.Context, p *request.Plan, s Sink) error
}

// The Func type is an adapter to allow the use of ordinary functions
// as transports.
type Func func(ctx context.Context, p *request.Plan, s Sink) error

// Execute calls f(ctx, p, s).
func (f Func) Execute(ctx context.Context, p *request.Plan, s Sink) error {
	return f(ctx, p, s)
}

// Default is the transport used when none is specified. It sends
// requests with http.DefaultClient and timeout.DefaultPolicy.
var Default Transport = &HTTP{}

func urlErrorWrap(p *request.Plan, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(p.Method),
		URL: p.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
