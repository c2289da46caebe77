// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport defines the contract between an asynchronous task and
the HTTP engine that actually sends its request.

A Transport executes a request plan synchronously. When a response
arrives it hands the response to the task through the Sink interface,
then returns nil. When the call fails it returns the error instead, and
the task classifies it using package failure.

Two transports are provided. HTTP wraps anything with the Do method of
the standard library http.Client:

	t := &transport.HTTP{
		Doer:          client, // *http.Client, possibly from NewHTTPClient
		TimeoutPolicy: timeout.Fixed(10 * time.Second),
	}

Resty wraps a github.com/go-resty/resty/v2 client:

	t := transport.NewResty(resty.New())

Connection pooling, TLS, proxies, redirects and retries are configured
on the underlying client, not here.
*/
package transport
