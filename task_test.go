// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/gogama/asynchttp/failure"
	"github.com/gogama/asynchttp/request"
	"github.com/gogama/asynchttp/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "Pending", Pending.String())
	assert.Equal(t, "Running", Running.String())
	assert.Equal(t, "Completed", Completed.String())
	assert.Equal(t, "Failed", Failed.String())
	assert.Equal(t, "Cancelled", Cancelled.String())
	assert.Equal(t, "State(99)", State(99).String())
}

func TestNewTask(t *testing.T) {
	p := newPlan(t, "GET", "http://example.com")
	tr := newMockTransport(t)

	t.Run("defaults", func(t *testing.T) {
		task := NewTask(tr, p)
		assert.NotEmpty(t, task.ID)
		assert.Same(t, p, task.Plan)
		assert.Equal(t, Pending, task.State())
		assert.Equal(t, context.Background(), task.Context())
		assert.NotNil(t, task.handlers.Success)
		assert.NotNil(t, task.handlers.Failure)
		assert.NotNil(t, task.handlers.Cancelled)
		_, ok := task.Outcome()
		assert.False(t, ok)
		assert.Zero(t, task.Duration())
		assert.Zero(t, task.StatusCode())
		assert.Nil(t, task.Header())
	})
	t.Run("unique IDs", func(t *testing.T) {
		assert.NotEqual(t, NewTask(tr, p).ID, NewTask(tr, p).ID)
	})
	t.Run("options", func(t *testing.T) {
		task := NewTask(tr, p, WithID("fixed"), WithLogger(nil), WithHandlers(Handlers{}))
		assert.Equal(t, "fixed", task.ID)
		assert.NotNil(t, task.logger)
		assert.NotNil(t, task.handlers.Success)
	})
	t.Run("panics", func(t *testing.T) {
		assert.PanicsWithValue(t, "asynchttp: nil context", func() {
			//nolint:staticcheck
			NewTaskWithContext(nil, tr, p)
		})
		assert.PanicsWithValue(t, "asynchttp: nil transport", func() { NewTask(nil, p) })
		assert.PanicsWithValue(t, "asynchttp: nil plan", func() { NewTask(tr, nil) })
		task := NewTask(tr, p)
		assert.PanicsWithValue(t, "asynchttp: nil handler", func() { task.OnSuccess(nil) })
		assert.PanicsWithValue(t, "asynchttp: nil handler", func() { task.OnFailure(nil) })
		assert.PanicsWithValue(t, "asynchttp: nil handler", func() { task.OnCancelled(nil) })
	})
}

func TestTask_Run(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/ok")
		tr := newMockTransport(t)
		tr.respondWith(&http.Response{
			StatusCode: 200,
			Status:     "200 OK",
			Header: http.Header{
				"Content-Type": {"text/plain"},
				"X-Multi":      {"one", "two"},
			},
		}, []byte("hello"))
		rec := &recorder{}
		task := rec.install(NewTask(tr, p))

		result, err := task.Run()

		require.NoError(t, err)
		assert.Same(t, task, result)
		assert.Equal(t, 1, rec.successes)
		assert.Equal(t, 0, rec.failures)
		assert.Equal(t, 0, rec.cancels)
		assert.Same(t, task, rec.successTask)
		assert.Equal(t, Completed, task.State())
		assert.Equal(t, 200, task.StatusCode())
		assert.Equal(t, map[string]string{"content-type": "text/plain", "x-multi": "two"}, task.Header())
		assert.Equal(t, []byte("hello"), task.Response.Body())
		assert.Equal(t, "handled", task.Result)
		assert.NoError(t, task.HandlerErr)
		assert.Nil(t, task.Err)
		outcome, ok := task.Outcome()
		assert.True(t, ok)
		assert.Equal(t, Success, outcome)
		assert.False(t, task.Start.IsZero())
		assert.False(t, task.End.Before(task.Start))
		tr.AssertExpectations(t)
	})
	t.Run("mapped failure", func(t *testing.T) {
		testCases := []struct {
			name string
			err  error
			kind failure.Kind
			op   string
		}{
			{
				name: "timeout",
				err:  &url.Error{Op: "Get", URL: "http://example.com/x", Err: context.DeadlineExceeded},
				kind: failure.Timeout,
				op:   "Get",
			},
			{
				name: "socket",
				err:  &url.Error{Op: "Post", URL: "http://example.com/x", Err: &net.OpError{Op: "read", Err: syscall.ECONNRESET}},
				kind: failure.Socket,
				op:   "Post",
			},
			{
				name: "protocol",
				err:  &url.Error{Op: "Get", URL: "http://example.com/x", Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}},
				kind: failure.Protocol,
				op:   "Get",
			},
			{
				name: "resolution",
				err:  &net.DNSError{Err: "no such host", Name: "example.com", IsNotFound: true},
				kind: failure.Resolution,
				op:   "GET",
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				p := newPlan(t, "GET", "http://example.com/x")
				tr := newMockTransport(t)
				tr.failWith(testCase.err)
				rec := &recorder{}
				task := rec.install(NewTask(tr, p))

				result, err := task.Run()

				require.NoError(t, err)
				assert.Same(t, task, result)
				assert.Equal(t, 0, rec.successes)
				assert.Equal(t, 1, rec.failures)
				assert.Equal(t, 0, rec.cancels)
				require.NotNil(t, rec.failureErr)
				assert.Same(t, task.Err, rec.failureErr)
				assert.Equal(t, testCase.kind, rec.failureErr.Kind)
				assert.Equal(t, testCase.op, rec.failureErr.Op)
				assert.Equal(t, "http://example.com/x", rec.failureErr.URL)
				assert.Same(t, testCase.err, rec.failureErr.Err)
				assert.ErrorIs(t, rec.failureErr, testCase.err)
				assert.Equal(t, Failed, task.State())
				assert.Nil(t, task.Response)
				outcome, ok := task.Outcome()
				assert.True(t, ok)
				assert.Equal(t, Failure, outcome)
				tr.AssertExpectations(t)
			})
		}
	})
	t.Run("unmapped error propagates", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		tr := newMockTransport(t)
		unmapped := errors.New("something nobody expected")
		tr.failWith(unmapped)
		rec := &recorder{}
		task := rec.install(NewTask(tr, p))

		result, err := task.Run()

		assert.Same(t, task, result)
		assert.Same(t, unmapped, err)
		assert.Equal(t, 0, rec.successes)
		assert.Equal(t, 0, rec.failures)
		assert.Equal(t, 0, rec.cancels)
		assert.Nil(t, task.Err)
		assert.Equal(t, Failed, task.State())
		_, ok := task.Outcome()
		assert.False(t, ok)
	})
	t.Run("no response and no error", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		tr := newMockTransport(t)
		tr.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		rec := &recorder{}
		task := rec.install(NewTask(tr, p))

		result, err := task.Run()

		require.NoError(t, err)
		assert.Same(t, task, result)
		assert.Equal(t, 0, rec.successes)
		assert.Equal(t, 0, rec.failures)
		assert.Equal(t, 0, rec.cancels)
		assert.Equal(t, Completed, task.State())
		assert.Nil(t, task.Response)
		_, ok := task.Outcome()
		assert.False(t, ok)
	})
	t.Run("success handler error is captured", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		tr := newMockTransport(t)
		tr.respondWith(&http.Response{StatusCode: 500}, nil)
		handlerErr := errors.New("handler went wrong")
		var failures int
		task := NewTask(tr, p).
			OnSuccess(func(_ *Task) (interface{}, error) { return "partial", handlerErr }).
			OnFailure(func(_ *Task, _ *failure.Error) { failures++ })

		_, err := task.Run()

		assert.NoError(t, err)
		assert.Same(t, handlerErr, task.HandlerErr)
		assert.Equal(t, "partial", task.Result)
		assert.Equal(t, 0, failures)
		assert.Equal(t, Completed, task.State())
	})
	t.Run("success handler panic is captured", func(t *testing.T) {
		t.Run("error value", func(t *testing.T) {
			p := newPlan(t, "GET", "http://example.com/x")
			tr := newMockTransport(t)
			tr.respondWith(&http.Response{StatusCode: 200}, nil)
			panicErr := errors.New("raised from handler")
			task := NewTask(tr, p).OnSuccess(func(_ *Task) (interface{}, error) { panic(panicErr) })

			var err error
			require.NotPanics(t, func() { _, err = task.Run() })

			assert.NoError(t, err)
			assert.Same(t, panicErr, task.HandlerErr)
			assert.Nil(t, task.Result)
		})
		t.Run("other value", func(t *testing.T) {
			p := newPlan(t, "GET", "http://example.com/x")
			tr := newMockTransport(t)
			tr.respondWith(&http.Response{StatusCode: 200}, nil)
			task := NewTask(tr, p).OnSuccess(func(_ *Task) (interface{}, error) { panic(42) })

			_, err := task.Run()

			assert.NoError(t, err)
			var hp *HandlerPanic
			require.ErrorAs(t, task.HandlerErr, &hp)
			assert.Equal(t, 42, hp.Value)
			assert.EqualError(t, task.HandlerErr, "asynchttp: success handler panicked: 42")
		})
	})
	t.Run("failure handler panic propagates", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		tr := newMockTransport(t)
		tr.failWith(context.DeadlineExceeded)
		task := NewTask(tr, p).OnFailure(func(_ *Task, _ *failure.Error) { panic("from failure handler") })

		assert.PanicsWithValue(t, "from failure handler", func() { _, _ = task.Run() })
		assert.Equal(t, Failed, task.State())
	})
	t.Run("default handlers", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		tr := newMockTransport(t)
		tr.respondWith(&http.Response{StatusCode: 200}, []byte("default body"))
		task := NewTask(tr, p)

		_, err := task.Run()

		assert.NoError(t, err)
		assert.Equal(t, []byte("default body"), task.Result)
		assert.NoError(t, task.HandlerErr)

		tr = newMockTransport(t)
		tr.failWith(context.DeadlineExceeded)
		task = NewTask(tr, p)
		var result *Task
		assert.NotPanics(t, func() { result, err = task.Run() })
		assert.NoError(t, err)
		assert.Same(t, task, result)
		assert.Equal(t, failure.Timeout, task.Err.Kind)
	})
	t.Run("run twice", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		tr := newMockTransport(t)
		tr.respondWith(&http.Response{StatusCode: 200}, nil)
		rec := &recorder{}
		task := rec.install(NewTask(tr, p))

		_, err := task.Run()
		require.NoError(t, err)
		result, err := task.Run()

		assert.Same(t, task, result)
		assert.Same(t, ErrNotPending, err)
		assert.Equal(t, 1, rec.successes)
		tr.AssertNumberOfCalls(t, "Execute", 1)
	})
	t.Run("context reaches transport and handlers", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "correlation-7")
		p := newPlan(t, "GET", "http://example.com/x")
		tr := newMockTransport(t)
		tr.On("Execute", ctx, p, mock.Anything).
			Run(func(args mock.Arguments) {
				args.Get(2).(transport.Sink).OnResponse(&http.Response{StatusCode: 200}, nil)
			}).
			Return(nil).
			Once()
		var seen interface{}
		task := NewTaskWithContext(ctx, tr, p).OnSuccess(func(task *Task) (interface{}, error) {
			seen = task.Value(key{})
			return nil, nil
		})

		_, err := task.Run()

		require.NoError(t, err)
		assert.Equal(t, "correlation-7", seen)
		assert.Same(t, ctx, task.Context())
		tr.AssertExpectations(t)
	})
	t.Run("logs", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		p := newPlan(t, "GET", "http://example.com/x")
		tr := newMockTransport(t)
		tr.failWith(context.DeadlineExceeded)
		task := NewTask(tr, p, WithLogger(zap.New(core)), WithID("t-1"))

		_, err := task.Run()

		require.NoError(t, err)
		entries := logs.FilterField(zap.String("task_id", "t-1")).All()
		require.Len(t, entries, 2)
		assert.Equal(t, "task started", entries[0].Message)
		assert.Equal(t, "task failed", entries[1].Message)
		assert.Equal(t, "timeout", entries[1].ContextMap()["kind"])
	})
}

func TestTask_Configure(t *testing.T) {
	t.Run("handlers are snapshotted at run", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		var calls []string
		var task *Task
		tr := transport.Func(func(_ context.Context, _ *request.Plan, s transport.Sink) error {
			// Reconfiguring mid-run has no effect.
			task.OnSuccess(func(_ *Task) (interface{}, error) {
				calls = append(calls, "late")
				return nil, nil
			})
			s.OnResponse(&http.Response{StatusCode: 200}, nil)
			return nil
		})
		task = NewTask(tr, p).OnSuccess(func(_ *Task) (interface{}, error) {
			calls = append(calls, "early")
			return nil, nil
		})

		_, err := task.Run()

		require.NoError(t, err)
		assert.Equal(t, []string{"early"}, calls)
	})
	t.Run("last configuration wins before run", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		tr := newMockTransport(t)
		tr.respondWith(&http.Response{StatusCode: 200}, nil)
		task := NewTask(tr, p, WithHandlers(Handlers{
			Success: func(_ *Task) (interface{}, error) { return "from options", nil },
		})).OnSuccess(func(_ *Task) (interface{}, error) { return "from fluent", nil })

		_, err := task.Run()

		require.NoError(t, err)
		assert.Equal(t, "from fluent", task.Result)
	})
}

func TestTask_OnResponse(t *testing.T) {
	t.Run("ignored when not running", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		rec := &recorder{}
		task := rec.install(NewTask(newMockTransport(t), p))

		task.OnResponse(&http.Response{StatusCode: 200}, nil)

		assert.Equal(t, 0, rec.successes)
		assert.Nil(t, task.Response)
		assert.Equal(t, Pending, task.State())
	})
	t.Run("second call ignored", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		rec := &recorder{}
		tr := transport.Func(func(_ context.Context, _ *request.Plan, s transport.Sink) error {
			s.OnResponse(&http.Response{StatusCode: 201}, nil)
			s.OnResponse(&http.Response{StatusCode: 202}, nil)
			return nil
		})
		task := rec.install(NewTask(tr, p))

		_, err := task.Run()

		require.NoError(t, err)
		assert.Equal(t, 1, rec.successes)
		assert.Equal(t, 201, task.StatusCode())
	})
}

func TestTask_Cancel(t *testing.T) {
	t.Run("pending", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		tr := newMockTransport(t)
		rec := &recorder{}
		task := rec.install(NewTask(tr, p))

		assert.True(t, task.Cancel())
		assert.False(t, task.Cancel())

		assert.Equal(t, 1, rec.cancels)
		assert.Same(t, task, rec.cancelTask)
		assert.Equal(t, Cancelled, task.State())
		outcome, ok := task.Outcome()
		assert.True(t, ok)
		assert.Equal(t, Cancelled, outcome)

		_, err := task.Run()
		assert.Same(t, ErrNotPending, err)
		assert.Equal(t, 0, rec.successes)
		assert.Equal(t, 0, rec.failures)
		tr.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)

		// Configuration after cancellation is a no-op.
		task.OnCancelled(func(_ *Task) { t.Error("must not be installed") })
		assert.False(t, task.Cancel())
	})
	t.Run("completed", func(t *testing.T) {
		p := newPlan(t, "GET", "http://example.com/x")
		tr := newMockTransport(t)
		tr.respondWith(&http.Response{StatusCode: 200}, nil)
		rec := &recorder{}
		task := rec.install(NewTask(tr, p))
		_, err := task.Run()
		require.NoError(t, err)

		assert.False(t, task.Cancel())
		assert.Equal(t, 0, rec.cancels)
		assert.Equal(t, Completed, task.State())
	})
}

func TestTask_Work(t *testing.T) {
	p := newPlan(t, "GET", "http://example.com/x")
	tr := newMockTransport(t)
	unmapped := errors.New("unmapped")
	tr.failWith(unmapped)
	task := NewTask(tr, p)

	assert.Same(t, unmapped, task.Work())
	assert.Same(t, ErrNotPending, task.Work())
}

func TestTask_RealTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("X-Request-ID", "abc")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("accepted"))
	}))
	defer srv.Close()

	p := newPlan(t, "POST", srv.URL)
	tr := &transport.HTTP{Doer: srv.Client()}
	task := NewTask(tr, p)

	_, err := task.Run()

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, task.StatusCode())
	assert.Equal(t, "text/plain", task.Header()["content-type"])
	assert.Equal(t, "abc", task.Header()["x-request-id"])
	for k := range task.Header() {
		assert.Equal(t, strings.ToLower(k), k)
	}
	assert.Equal(t, []byte("accepted"), task.Result)
	assert.True(t, task.Duration() > 0 || task.End.Equal(task.Start))
	assert.True(t, task.Duration() < time.Minute)
}
