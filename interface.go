// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"context"
	"net/url"

	"github.com/gogama/asynchttp/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do creates a pending task for an HTTP request plan and queues it for
// execution. Client implements the Doer interface, and any other Doer
// implementation must behave substantially the same as Client.Do.
//
// Any Doer can be used to emulate the other single-method interfaces
// via the Get, Head, Post, and PostForm functions.
type Doer interface {
	Do(p *request.Plan) *Task
}

// Getter is the interface that wraps the basic Get method.
//
// Get creates an HTTP request plan to issue a GET to the specified URL
// and queues a pending task for it. Client implements the Getter
// interface.
//
// Any Doer can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(url string) (*Task, error)
}

// Header is the interface that wraps the basic Head method.
//
// Head creates an HTTP request plan to issue a HEAD to the specified
// URL and queues a pending task for it. Client implements the Header
// interface.
//
// Any Doer can be used to emulate a Header via the Head function.
type Header interface {
	Head(url string) (*Task, error)
}

// Poster is the interface that wraps the basic Post method.
//
// Post creates an HTTP request plan to issue a POST to the specified
// URL and queues a pending task for it. Client implements the Poster
// interface.
//
// The body parameter may be nil for an empty body, or may be any of the
// types supported by request.NewPlan and request.BodyBytes, namely:
// string; []byte; io.Reader; and io.ReadCloser.
//
// Any Doer can be used to emulate a Poster via the Post function.
type Poster interface {
	Post(url, contentType string, body interface{}) (*Task, error)
}

// FormPoster is the interface that wraps the basic PostForm method.
//
// PostForm creates an HTTP request plan to issue a form POST to the
// specified URL and queues a pending task for it. The request plan body
// is set to the URL-encoded keys and values from data, and the content
// type is set to application/x-www-form-urlencoded.
//
// Any Doer can be used to emulate a FormPoster via the PostForm
// function.
type FormPoster interface {
	PostForm(url string, data url.Values) (*Task, error)
}

// Executor is the interface that groups the task-creating methods with
// the batch methods Execute and Clear. Client implements Executor.
type Executor interface {
	Doer
	Getter
	Header
	Poster
	FormPoster
	Execute(ctx context.Context) error
	Clear() int
}

// Get uses the specified Doer to queue a GET to the specified URL.
//
// To make a request plan with custom headers, use request.NewPlan and
// d.Do.
func Get(d Doer, url string) (*Task, error) {
	p, err := request.NewPlan("GET", url, nil)
	if err != nil {
		return nil, err
	}
	return d.Do(p), nil
}

// Head uses the specified Doer to queue a HEAD to the specified URL.
//
// To make a request plan with custom headers, use request.NewPlan and
// d.Do.
func Head(d Doer, url string) (*Task, error) {
	p, err := request.NewPlan("HEAD", url, nil)
	if err != nil {
		return nil, err
	}
	return d.Do(p), nil
}

// Post uses the specified Doer to queue a POST to the specified URL.
//
// The body parameter may be nil for an empty body, or may be any of the
// types supported by request.NewPlan and request.BodyBytes, namely:
// string; []byte; io.Reader; and io.ReadCloser.
//
// To make a request plan with custom headers, use request.NewPlan and
// d.Do.
func Post(d Doer, url, contentType string, body interface{}) (*Task, error) {
	p, err := request.NewPlan("POST", url, body)
	if err != nil {
		return nil, err
	}
	p.Header.Set("Content-Type", contentType)
	return d.Do(p), nil
}

// PostForm uses the specified Doer to queue a POST to the specified
// URL, with data's keys and values URL-encoded as the request body.
//
// The Content-Type header is set to application/x-www-form-urlencoded.
// To set other headers, use request.NewPlan and d.Do.
func PostForm(d Doer, url string, data url.Values) (*Task, error) {
	return Post(d, url, "application/x-www-form-urlencoded", data.Encode())
}
