// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/gogama/asynchttp/request"
	"github.com/gogama/asynchttp/timeout"
	"go.uber.org/zap"
)

// A Doer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type Doer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// Doer.
	Do(r *http.Request) (*http.Response, error)
}

// HTTP is a Transport that sends requests through a Doer, typically an
// *http.Client. Its zero value is a valid configuration.
//
// HTTP reads and buffers the entire response body before handing the
// response to the sink. Any error, whether from sending the request
// or from reading the body, is returned as a *url.Error.
type HTTP struct {
	// Doer sends the request. If nil, http.DefaultClient is used.
	Doer Doer

	// TimeoutPolicy sets the deadline on each call. If nil,
	// timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy

	// Logger receives debug logs about each call. If nil, nothing is
	// logged.
	Logger *zap.Logger
}

// Execute sends the request described by p and reports the response
// to s.
func (t *HTTP) Execute(ctx context.Context, p *request.Plan, s Sink) error {
	if err := p.Validate(); err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, t.timeoutPolicy().Timeout(p))
	defer cancel()

	r, err := p.ToRequest(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := t.doer().Do(r)
	if err != nil {
		return urlErrorWrap(p, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return urlErrorWrap(p, err)
	}

	logger(t.Logger).Debug("http call complete",
		zap.String("method", r.Method),
		zap.Stringer("url", p.URL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))
	s.OnResponse(resp, body)
	return nil
}

// CloseIdleConnections invokes the same method on the underlying Doer,
// if it has one.
func (t *HTTP) CloseIdleConnections() {
	if ic, ok := t.doer().(interface{ CloseIdleConnections() }); ok {
		ic.CloseIdleConnections()
	}
}

func (t *HTTP) doer() Doer {
	if t.Doer == nil {
		return http.DefaultClient
	}
	return t.Doer
}

func (t *HTTP) timeoutPolicy() timeout.Policy {
	if t.TimeoutPolicy == nil {
		return timeout.DefaultPolicy
	}
	return t.TimeoutPolicy
}

// withTimeout applies d to ctx unless d is non-positive or infinite.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 || d == math.MaxInt64 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return nopLogger
	}
	return l
}

var nopLogger = zap.NewNop()
