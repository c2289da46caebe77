// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"net/http"
	"strings"
	"time"

	"github.com/gogama/asynchttp/request"
)

// A Policy decides the timeout a transport sets on the HTTP call for a
// given request plan.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the HTTP call that will
	// carry out plan p.
	Timeout(p *request.Plan) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of 30 seconds on each call.
var DefaultPolicy Policy = Fixed(30 * time.Second)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that returns d for every plan.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

type fixed time.Duration

func (f fixed) Timeout(_ *request.Plan) time.Duration {
	return time.Duration(f)
}

// ByMethod constructs a timeout policy that looks up the timeout by
// HTTP method, falling back to usual for methods not in byMethod.
// Method names are matched case-insensitively, and an empty plan method
// counts as GET.
//
// For example, to give uploads more time than everything else:
//
//	p := timeout.ByMethod(5*time.Second, map[string]time.Duration{
//		"POST": time.Minute,
//		"PUT":  time.Minute,
//	})
func ByMethod(usual time.Duration, byMethod map[string]time.Duration) Policy {
	m := make(map[string]time.Duration, len(byMethod))
	for method, d := range byMethod {
		m[strings.ToUpper(method)] = d
	}
	return methodPolicy{usual: usual, byMethod: m}
}

type methodPolicy struct {
	usual    time.Duration
	byMethod map[string]time.Duration
}

func (p methodPolicy) Timeout(plan *request.Plan) time.Duration {
	method := strings.ToUpper(plan.Method)
	if method == "" {
		method = http.MethodGet
	}
	if d, ok := p.byMethod[method]; ok {
		return d
	}
	return p.usual
}
