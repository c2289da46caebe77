// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the two value types an asynchronous task is
built around: Plan, which describes the HTTP request to make, and
Response, which holds what came back.

Create a plan and hand it to a task:

	p, err := request.NewPlan("GET", "https://example.com", nil)
	...
	t := asynchttp.NewTask(transport.Default, p)

A Plan looks like a stripped-down http.Request (net/http) with all
server-side fields removed and the body replaced by a pre-buffered
[]byte. A transport turns the plan into an http.Request with ToRequest
each time it sends it.

A Response is built by the task when the transport reports a response.
Its Header field is a flattened, lower-cased view of the response
header:

	ct := resp.Header["content-type"]
*/
package request
