// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failure

// Error is a classified transport error. It is the value handed to a
// task's failure handler.
//
// Kind is never Not: errors outside the taxonomy are not wrapped.
type Error struct {
	// Kind is the failure category of Err.
	Kind Kind

	// Op is the operation that failed, typically the HTTP method in
	// the same casing used by url.Error (for example "Get").
	Op string

	// URL is the request URL, if known.
	URL string

	// Err is the original transport error.
	Err error
}

// New classifies err and wraps it in an Error. It returns nil if err
// is nil or is outside the taxonomy.
func New(op, url string, err error) *Error {
	k := Classify(err)
	if k == Not {
		return nil
	}

	return &Error{
		Kind: k,
		Op:   op,
		URL:  url,
		Err:  err,
	}
}

// Error returns the kind name followed by the wrapped error message.
func (e *Error) Error() string {
	return e.Kind.Name() + ": " + e.Err.Error()
}

// Unwrap allows to access the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the error is of kind Timeout.
func (e *Error) Timeout() bool {
	return e.Kind == Timeout
}
