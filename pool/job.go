// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pool

import (
	"context"
	"errors"
	"fmt"
)

// A Job is a unit of work run by a Pool.
type Job interface {
	Work() error
}

// A Canceller is a Job that wants to know when the pool abandons it
// without running it.
type Canceller interface {
	// Cancel is called at most once, instead of Work, when the job is
	// abandoned. It reports whether the job accepted the cancellation.
	Cancel() bool
}

// The JobFunc type is an adapter to allow the use of ordinary functions
// as jobs.
type JobFunc func() error

// Work calls f().
func (f JobFunc) Work() error {
	return f()
}

// ErrCancelled is returned by Future.Wait when the job was abandoned
// without running.
var ErrCancelled = errors.New("asynchttp/pool: job cancelled")

// A PanicError reports a panic recovered from a job.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("asynchttp/pool: job panicked: %v", e.Value)
}

// A Future is the pending result of a submitted job.
type Future struct {
	done      chan struct{}
	err       error
	cancelled bool
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Done returns a channel that is closed once the job has finished or
// been cancelled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the job has finished or ctx is done. It returns the
// job's error, ErrCancelled if the job was abandoned, or ctx.Err().
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the outcome of a finished job without blocking. It
// returns nil while the job is still pending.
func (f *Future) Err() error {
	select {
	case <-f.done:
	default:
		return nil
	}
	if f.cancelled {
		return ErrCancelled
	}
	return f.err
}

// Cancelled reports whether the job was abandoned without running. It
// returns false while the job is still pending.
func (f *Future) Cancelled() bool {
	select {
	case <-f.done:
		return f.cancelled
	default:
		return false
	}
}

func (f *Future) resolve(err error, cancelled bool) {
	f.err = err
	f.cancelled = cancelled
	close(f.done)
}
