// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package asynchttp runs HTTP requests asynchronously and reports each
outcome through a callback.

A Task wraps one request plan. It is created pending, handed to an
executor, and run exactly once. When it runs it makes a single
synchronous call to its transport and fires exactly one handler:

	task := asynchttp.NewTask(transport.Default, plan).
		OnSuccess(func(t *asynchttp.Task) (interface{}, error) {
			return decode(t.Response.Body())
		}).
		OnFailure(func(t *asynchttp.Task, err *failure.Error) {
			log.Printf("%s failed: %s", t.Plan.URL, err.Kind)
		})
	f, err := p.Submit(ctx, task) // p is a *pool.Pool
	...

Any response, whatever its status code, is a success. A transport error
of a known kind (timeout, socket, protocol, or name resolution; see
package failure) is a failure. A transport error of unknown kind fires
no handler and is returned from Task.Run, so genuine bugs are not
mistaken for network trouble. A task that is still pending when its
executor shuts down is cancelled.

For queued batch execution, use a Client. Its zero value is ready to
use:

	client := &asynchttp.Client{}
	t, err := client.Get("https://www.example.com")
	...
	t, err = client.PostForm("http://example.com/form",
		url.Values{"key": {"Value"}, "id": {"123"}})
	...
	err = client.Execute(ctx)

For control over how tasks send HTTP requests, set a transport. Package
transport provides one built on the GoLang standard HTTP client and one
built on resty:

	client := &asynchttp.Client{
		Transport: &transport.HTTP{
			Doer:          &http.Client{...},
			TimeoutPolicy: timeout.Fixed(10 * time.Second),
		},
	}

Package asynchttp provides basic interfaces for each task-creating
method of the client (Doer, Getter, Header, Poster, and FormPoster); a
combined interface that adds batch execution (Executor); and utility
functions for working with a Doer (Get, Head, Post, and PostForm).
*/
package asynchttp
