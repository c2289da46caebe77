// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"github.com/gogama/asynchttp/failure"
)

// A SuccessFunc handles the Success outcome of a task. The task's
// Response is set when it runs.
//
// The returned value is stored in the task's Result field. A non-nil
// error, or a panic, is stored in the task's HandlerErr field; it is
// never returned from Task.Run.
type SuccessFunc func(t *Task) (interface{}, error)

// A FailureFunc handles the Failure outcome of a task. The err
// parameter is the same value as the task's Err field.
//
// Unlike a SuccessFunc, a panicking FailureFunc is not recovered: the
// panic propagates out of Task.Run.
type FailureFunc func(t *Task, err *failure.Error)

// A CancelledFunc handles the Cancelled outcome of a task.
type CancelledFunc func(t *Task)

// Handlers holds one handler per task outcome. A nil field means the
// default handler for that outcome is used.
//
// Handlers is a plain value, so a fully built Handlers can be shared by
// many tasks via WithHandlers.
type Handlers struct {
	Success   SuccessFunc
	Failure   FailureFunc
	Cancelled CancelledFunc
}

// DefaultSuccess is the success handler used when none is given. It
// returns the response body.
func DefaultSuccess(t *Task) (interface{}, error) {
	return t.Response.Body(), nil
}

// DefaultFailure is the failure handler used when none is given. It does
// nothing.
func DefaultFailure(_ *Task, _ *failure.Error) {}

// DefaultCancelled is the cancelled handler used when none is given. It
// does nothing.
func DefaultCancelled(_ *Task) {}

// withDefaults returns a copy of h with every nil slot filled in with
// the default handler for that outcome.
func (h Handlers) withDefaults() Handlers {
	if h.Success == nil {
		h.Success = DefaultSuccess
	}
	if h.Failure == nil {
		h.Failure = DefaultFailure
	}
	if h.Cancelled == nil {
		h.Cancelled = DefaultCancelled
	}
	return h
}
