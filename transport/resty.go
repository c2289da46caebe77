// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gogama/asynchttp/request"
	"github.com/gogama/asynchttp/timeout"
	"go.uber.org/zap"
)

// Resty is a Transport backed by a resty client. Retry, proxy and TLS
// settings made on the resty client apply to every call.
//
// The plan's Host override is not supported by resty and is ignored.
// A plan with Close set sends "Connection: close".
type Resty struct {
	// Client is the resty client. It must not be nil.
	Client *resty.Client

	// TimeoutPolicy sets the deadline on each call. If nil,
	// timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy

	// Logger receives debug logs about each call. If nil, nothing is
	// logged.
	Logger *zap.Logger
}

// NewResty returns a Resty transport using c. If c is nil a new resty
// client is created.
func NewResty(c *resty.Client) *Resty {
	if c == nil {
		c = resty.New()
	}
	return &Resty{Client: c}
}

// Execute sends the request described by p and reports the response
// to s.
func (t *Resty) Execute(ctx context.Context, p *request.Plan, s Sink) error {
	if t.Client == nil {
		panic("asynchttp/transport: nil resty client")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	policy := t.TimeoutPolicy
	if policy == nil {
		policy = timeout.DefaultPolicy
	}
	ctx, cancel := withTimeout(ctx, policy.Timeout(p))
	defer cancel()

	req := t.Client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if len(p.Header) > 0 {
		req.SetHeaderMultiValues(p.Header.Clone())
	}
	if p.Close {
		req.SetHeader("Connection", "close")
	}
	if len(p.Body) > 0 {
		req.SetBody(p.Body)
	}

	start := time.Now()
	resp, err := req.Execute(p.Method, p.URL.String())
	if err != nil {
		return urlErrorWrap(p, err)
	}
	raw := resp.RawResponse
	defer func() {
		_ = raw.Body.Close()
	}()
	body, err := io.ReadAll(raw.Body)
	if err != nil {
		return urlErrorWrap(p, err)
	}

	logger(t.Logger).Debug("resty call complete",
		zap.String("method", p.Method),
		zap.Stringer("url", p.URL),
		zap.Int("status", raw.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))
	s.OnResponse(raw, body)
	return nil
}
