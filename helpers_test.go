// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/gogama/asynchttp/failure"
	"github.com/gogama/asynchttp/request"
	"github.com/gogama/asynchttp/transport"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPlan(t *testing.T, method, url string) *request.Plan {
	p, err := request.NewPlan(method, url, nil)
	require.NoError(t, err)
	return p
}

type mockTransport struct {
	mock.Mock
}

func newMockTransport(t *testing.T) *mockTransport {
	m := &mockTransport{}
	m.Test(t)
	return m
}

func (m *mockTransport) Execute(ctx context.Context, p *request.Plan, s transport.Sink) error {
	args := m.Called(ctx, p, s)
	return args.Error(0)
}

func (m *mockTransport) respondWith(raw *http.Response, body []byte) {
	m.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(2).(transport.Sink).OnResponse(raw, body)
		}).
		Return(nil)
}

func (m *mockTransport) failWith(err error) {
	m.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(err)
}

// recorder counts handler invocations. It is safe for concurrent use.
type recorder struct {
	mu          sync.Mutex
	successes   int
	failures    int
	cancels     int
	successTask *Task
	cancelTask  *Task
	failureErr  *failure.Error
}

func (r *recorder) install(t *Task) *Task {
	return t.
		OnSuccess(func(t *Task) (interface{}, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.successes++
			r.successTask = t
			return "handled", nil
		}).
		OnFailure(func(_ *Task, err *failure.Error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.failures++
			r.failureErr = err
		}).
		OnCancelled(func(t *Task) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.cancels++
			r.cancelTask = t
		})
}

func (r *recorder) counts() (successes, failures, cancels int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.successes, r.failures, r.cancels
}
