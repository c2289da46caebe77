// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gogama/asynchttp/failure"
	"github.com/gogama/asynchttp/request"
	"github.com/gogama/asynchttp/transport"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// A State is a stage in the life of a task.
type State int

const (
	// Pending is the state of a task that has not started. Only a
	// pending task can be run, cancelled, or have its handlers
	// replaced.
	Pending State = iota
	// Running is the state of a task whose transport call is in
	// progress.
	Running
	// Completed is the terminal state of a task that got a response.
	Completed
	// Failed is the terminal state of a task whose transport call
	// returned an error, whether classified or not.
	Failed
	// Cancelled is the terminal state of a task cancelled while
	// pending.
	Cancelled
)

var stateNames = []string{
	"Pending",
	"Running",
	"Completed",
	"Failed",
	"Cancelled",
}

// String returns the name of the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ErrNotPending is returned by Task.Run when the task has already been
// run or cancelled.
var ErrNotPending = errors.New("asynchttp: task not pending")

// A Task is a single asynchronous HTTP request together with the
// handlers that report its outcome.
//
// A task is created pending, handed to an executor (see package pool,
// or Client), and run exactly once. Running a task makes one
// synchronous call to its transport and then fires exactly one handler:
// Success if the transport produced a response, Failure if it returned
// an error of a known kind (see package failure). A transport error of
// unknown kind fires no handler and is returned from Run. A task that
// is cancelled before it runs fires the Cancelled handler instead.
//
// The exported result fields are written by Run and must not be read
// until Run has returned (or, for a pooled task, until its future is
// done). Handlers may read them freely, since they run inside Run.
type Task struct {
	// ID uniquely identifies the task in logs.
	ID string

	// Plan is the request the task makes. The task owns the plan: it
	// must not be modified after the task is created.
	Plan *request.Plan

	// Response is the parsed response. It is set just before the
	// success handler fires, and is nil for every other outcome.
	Response *request.Response

	// Err is the classified transport error. It is set just before the
	// failure handler fires, and is nil for every other outcome.
	Err *failure.Error

	// Result is the value returned by the success handler.
	Result interface{}

	// HandlerErr is the error returned by the success handler, or the
	// panic recovered from it. It is never returned from Run.
	HandlerErr error

	// Start is the time the task started running.
	Start time.Time

	// End is the time the task reached its terminal state.
	End time.Time

	ctx       context.Context
	transport transport.Transport
	logger    *zap.Logger

	mu        sync.Mutex
	state     State
	handlers  Handlers
	active    Handlers
	responded bool
}

// A TaskOption configures a Task at construction.
type TaskOption func(*Task)

// WithHandlers sets all the task's handlers at once. Nil fields keep the
// default handler for their outcome.
func WithHandlers(h Handlers) TaskOption {
	return func(t *Task) {
		t.handlers = h.withDefaults()
	}
}

// WithLogger sets the logger the task reports state changes to. The
// default discards all logs.
func WithLogger(l *zap.Logger) TaskOption {
	return func(t *Task) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithID overrides the randomly generated task ID.
func WithID(id string) TaskOption {
	return func(t *Task) {
		t.ID = id
	}
}

// NewTask creates a pending task that will execute p using tr.
func NewTask(tr transport.Transport, p *request.Plan, opts ...TaskOption) *Task {
	return NewTaskWithContext(context.Background(), tr, p, opts...)
}

// NewTaskWithContext creates a pending task that will execute p using
// tr, passing ctx to the transport.
//
// The context carries the caller's correlation data through to the
// handlers, which can read it back with Context or Value. A deadline or
// cancellation on ctx is honoured by the transport, and shows up as a
// failure of kind failure.Timeout or as an unclassified error.
func NewTaskWithContext(ctx context.Context, tr transport.Transport, p *request.Plan, opts ...TaskOption) *Task {
	if ctx == nil {
		panic("asynchttp: nil context")
	}
	if tr == nil {
		panic("asynchttp: nil transport")
	}
	if p == nil {
		panic("asynchttp: nil plan")
	}

	t := &Task{
		ID:        uuid.NewString(),
		Plan:      p,
		ctx:       ctx,
		transport: tr,
		logger:    zap.NewNop(),
		handlers:  Handlers{}.withDefaults(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnSuccess replaces the task's success handler and returns the task.
//
// Replacing a handler once the task has left the Pending state has no
// effect.
func (t *Task) OnSuccess(f SuccessFunc) *Task {
	if f == nil {
		panic("asynchttp: nil handler")
	}
	t.mu.Lock()
	if t.state == Pending {
		t.handlers.Success = f
	}
	t.mu.Unlock()
	return t
}

// OnFailure replaces the task's failure handler and returns the task.
//
// Replacing a handler once the task has left the Pending state has no
// effect.
func (t *Task) OnFailure(f FailureFunc) *Task {
	if f == nil {
		panic("asynchttp: nil handler")
	}
	t.mu.Lock()
	if t.state == Pending {
		t.handlers.Failure = f
	}
	t.mu.Unlock()
	return t
}

// OnCancelled replaces the task's cancelled handler and returns the
// task.
//
// Replacing a handler once the task has left the Pending state has no
// effect.
func (t *Task) OnCancelled(f CancelledFunc) *Task {
	if f == nil {
		panic("asynchttp: nil handler")
	}
	t.mu.Lock()
	if t.state == Pending {
		t.handlers.Cancelled = f
	}
	t.mu.Unlock()
	return t
}

// Run executes the task's plan and fires the handler for its outcome.
//
// Run returns the task and a nil error both on success and on a
// failure of known kind: those outcomes are reported through the
// handlers. A transport error of unknown kind is returned as is, and no
// handler fires. Run returns ErrNotPending, firing nothing, if the task
// is not pending.
//
// Errors and panics from the success handler are captured in
// HandlerErr. A panic from the failure handler propagates.
func (t *Task) Run() (*Task, error) {
	if !t.begin() {
		return t, ErrNotPending
	}

	t.logger.Debug("task started", t.fields()...)
	err := t.transport.Execute(t.ctx, t.Plan, t)
	t.End = time.Now()

	if err == nil {
		t.finish(Completed)
		t.logger.Debug("task completed", append(t.fields(),
			zap.Int("status", t.StatusCode()),
			zap.Duration("elapsed", t.Duration()),
			zap.NamedError("handler_error", t.HandlerErr))...)
		return t, nil
	}

	t.finish(Failed)
	ferr := failure.New(t.op(err), t.url(), err)
	if ferr == nil {
		t.logger.Debug("task failed with unclassified error", append(t.fields(), zap.Error(err))...)
		return t, err
	}

	t.Err = ferr
	t.logger.Debug("task failed", append(t.fields(),
		zap.Stringer("kind", ferr.Kind),
		zap.Error(err),
		zap.Duration("elapsed", t.Duration()))...)
	t.active.Failure(t, ferr)
	return t, nil
}

// OnResponse records the response produced by the task's transport and
// fires the success handler. It is the task's side of the
// transport.Sink contract and is only meant to be called by the
// transport during Run; other calls are ignored.
func (t *Task) OnResponse(raw *http.Response, body []byte) {
	t.mu.Lock()
	if t.state != Running || t.responded {
		t.mu.Unlock()
		return
	}
	t.responded = true
	f := t.active.Success
	t.mu.Unlock()

	t.Response = request.NewResponse(raw, body)
	t.Result, t.HandlerErr = callSuccess(f, t)
}

// Cancel cancels a pending task and fires its cancelled handler. It
// reports whether the task was pending. Cancelling a task that is
// running or finished does nothing.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	if t.state != Pending {
		t.mu.Unlock()
		return false
	}
	t.state = Cancelled
	f := t.handlers.Cancelled
	t.mu.Unlock()

	t.End = time.Now()
	t.logger.Debug("task cancelled", t.fields()...)
	f(t)
	return true
}

// Work runs the task, discarding the returned task. It lets any
// executor built around a Work method, such as package pool, run a
// task.
func (t *Task) Work() error {
	_, err := t.Run()
	return err
}

// State returns the task's current state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Outcome returns the outcome of a task in a terminal state. The second
// return value is false for a task that is still pending or running,
// for a task that failed with an unclassified error, and for a task
// whose transport returned no error without producing a response. No
// handler fired in any of those cases.
func (t *Task) Outcome() (Outcome, bool) {
	t.mu.Lock()
	state, responded := t.state, t.responded
	t.mu.Unlock()
	switch state {
	case Completed:
		if responded {
			return Success, true
		}
	case Failed:
		if t.Err != nil {
			return Failure, true
		}
	case Cancelled:
		return Cancelled, true
	}
	return 0, false
}

// Context returns the context given when the task was created.
func (t *Task) Context() context.Context {
	return t.ctx
}

// Value returns the value associated with key in the task's context.
func (t *Task) Value(key interface{}) interface{} {
	return t.ctx.Value(key)
}

// StatusCode returns the response status code, or 0 if there is no
// response.
func (t *Task) StatusCode() int {
	if t.Response == nil {
		return 0
	}
	return t.Response.StatusCode
}

// Header returns the normalized response header, or nil if there is no
// response. Keys are lower case and each holds the field's last value.
func (t *Task) Header() map[string]string {
	if t.Response == nil {
		return nil
	}
	return t.Response.Header
}

// Duration returns the time between the task starting and reaching its
// terminal state. It is zero until both times are known.
func (t *Task) Duration() time.Duration {
	if t.Start.IsZero() || t.End.IsZero() {
		return 0
	}
	return t.End.Sub(t.Start)
}

// begin moves a pending task to Running and snapshots its handlers.
func (t *Task) begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Pending {
		return false
	}
	t.state = Running
	t.active = t.handlers
	t.Start = time.Now()
	return true
}

func (t *Task) finish(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *Task) op(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Op
	}
	return t.Plan.Method
}

func (t *Task) url() string {
	if t.Plan.URL == nil {
		return ""
	}
	return t.Plan.URL.String()
}

func (t *Task) fields() []zap.Field {
	return []zap.Field{
		zap.String("task_id", t.ID),
		zap.String("method", t.Plan.Method),
		zap.String("url", t.url()),
	}
}

func callSuccess(f SuccessFunc, t *Task) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = &HandlerPanic{Value: r}
			}
		}
	}()
	return f(t)
}

// A HandlerPanic holds a non-error value recovered from a panicking
// success handler. A panic with an error value is stored as that error.
type HandlerPanic struct {
	Value interface{}
}

func (p *HandlerPanic) Error() string {
	return fmt.Sprintf("asynchttp: success handler panicked: %v", p.Value)
}
