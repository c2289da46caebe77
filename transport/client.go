// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// Options configures the http.Client built by NewHTTPClient.
type Options struct {
	// Timeout is the overall http.Client timeout. Zero means none; a
	// per-call deadline is normally set through the transport's
	// timeout policy instead.
	Timeout time.Duration

	// MaxIdleConnsPerHost bounds the idle keep-alive connections kept
	// for each host. Zero means http.DefaultMaxIdleConnsPerHost.
	MaxIdleConnsPerHost int

	// HTTP2 enables HTTP/2 over TLS using golang.org/x/net/http2.
	HTTP2 bool

	// TLSClientConfig is the TLS configuration to use. May be nil.
	TLSClientConfig *tls.Config
}

// NewHTTPClient builds an *http.Client suitable for sharing between
// many concurrently running tasks.
func NewHTTPClient(o Options) (*http.Client, error) {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   o.MaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       o.TLSClientConfig,
	}
	if o.HTTP2 {
		if err := http2.ConfigureTransport(tr); err != nil {
			return nil, fmt.Errorf("configure http2: %w", err)
		}
	}
	return &http.Client{
		Transport: tr,
		Timeout:   o.Timeout,
	}, nil
}
