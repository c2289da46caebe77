// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/gogama/asynchttp/pool"
	"github.com/gogama/asynchttp/request"
	"github.com/gogama/asynchttp/transport"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// A Client queues asynchronous HTTP tasks and runs them in batches. Its
// zero value is a valid configuration.
//
// The zero value client uses transport.Default as the transport, runs
// each batch on a private pool of pool.DefaultWorkers workers, installs
// the default handlers on new tasks, and discards all logs.
//
// Client's HTTP methods mirror those of the Go standard HTTP client
// (http.Client), except that instead of sending the request and
// returning a response they return a pending Task. Configure the task's
// handlers, then call Execute to run everything queued:
//
//	client := &asynchttp.Client{}
//	t, err := client.Get("https://www.example.com")
//	...
//	t.OnSuccess(func(t *asynchttp.Task) (interface{}, error) {
//		log.Printf("%s: %d", t.Plan.URL, t.StatusCode())
//		return nil, nil
//	})
//	err = client.Execute(ctx)
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	// Transport executes each task's request plan.
	//
	// If Transport is nil, transport.Default is used.
	Transport transport.Transport
	// Pool runs the tasks during Execute.
	//
	// If Pool is nil, each call to Execute creates a pool of Workers
	// workers and shuts it down before returning. A caller-supplied
	// pool is never shut down by Client.
	Pool *pool.Pool
	// Workers sets the size of the private pool used when Pool is nil.
	//
	// If Workers is zero or negative, pool.DefaultWorkers is used.
	Workers int
	// Handlers are installed on every task the client creates. Tasks
	// can still replace them individually before Execute is called.
	Handlers Handlers
	// Logger receives task and batch logs.
	//
	// If Logger is nil, logs are discarded.
	Logger *zap.Logger

	mu      sync.Mutex
	pending []*Task
}

// Do queues a task to execute the request plan p and returns it.
func (c *Client) Do(p *request.Plan) *Task {
	return c.DoWithContext(context.Background(), p)
}

// DoWithContext queues a task to execute the request plan p, passing
// ctx to the transport, and returns it.
func (c *Client) DoWithContext(ctx context.Context, p *request.Plan) *Task {
	t := NewTaskWithContext(ctx, c.transport(), p,
		WithHandlers(c.Handlers),
		WithLogger(c.Logger))
	c.mu.Lock()
	c.pending = append(c.pending, t)
	c.mu.Unlock()
	return t
}

// Get queues a task to GET the specified URL.
func (c *Client) Get(url string) (*Task, error) {
	return Get(c, url)
}

// Head queues a task to HEAD the specified URL.
func (c *Client) Head(url string) (*Task, error) {
	return Head(c, url)
}

// Post queues a task to POST to the specified URL.
//
// The body parameter may be nil for an empty body, or may be any of the
// types supported by request.NewPlan and request.BodyBytes, namely:
// string; []byte; io.Reader; and io.ReadCloser.
func (c *Client) Post(url, contentType string, body interface{}) (*Task, error) {
	return Post(c, url, contentType, body)
}

// PostForm queues a task to POST to the specified URL, with data's keys
// and values URL-encoded as the request body.
func (c *Client) PostForm(url string, data url.Values) (*Task, error) {
	return PostForm(c, url, data)
}

// Pending returns the number of queued tasks.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Clear empties the queue, cancelling every queued task so its
// cancelled handler fires. It returns the number of tasks cancelled.
func (c *Client) Clear() int {
	n := 0
	for _, t := range c.take() {
		if t.Cancel() {
			n++
		}
	}
	return n
}

// Execute runs every queued task and waits for them all to finish. The
// queue is emptied.
//
// Task outcomes are reported through each task's handlers, not through
// the returned error. Execute returns an error only for unclassified
// transport errors (see Task.Run), for failures to submit a task to the
// pool, and if ctx is done before all tasks have finished. Several such
// errors are combined into one *multierror.Error.
//
// Tasks that were run or cancelled by hand after being queued are
// skipped silently. If ctx is done while tasks are still queued in a
// private pool, the queued tasks are cancelled.
func (c *Client) Execute(ctx context.Context) error {
	tasks := c.take()
	if len(tasks) == 0 {
		return nil
	}

	p := c.Pool
	if p == nil {
		p = pool.New(pool.WithWorkers(c.Workers), pool.WithLogger(c.logger()))
		defer func() {
			_ = p.Shutdown(context.Background())
		}()
	}

	c.logger().Debug("executing batch", zap.Int("tasks", len(tasks)))

	var result *multierror.Error
	futures := make([]*pool.Future, 0, len(tasks))
	for i, t := range tasks {
		f, err := p.Submit(ctx, t)
		if err != nil {
			result = multierror.Append(result, err)
			for _, rest := range tasks[i:] {
				rest.Cancel()
			}
			break
		}
		futures = append(futures, f)
	}

	for _, f := range futures {
		err := f.Wait(ctx)
		if err == nil || errors.Is(err, pool.ErrCancelled) || errors.Is(err, ErrNotPending) {
			continue
		}
		result = multierror.Append(result, err)
		if ctx.Err() != nil {
			break
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		c.logger().Debug("batch finished with errors", zap.Int("tasks", len(tasks)), zap.Error(err))
		return err
	}
	c.logger().Debug("batch finished", zap.Int("tasks", len(tasks)))
	return nil
}

func (c *Client) take() []*Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	tasks := c.pending
	c.pending = nil
	return tasks
}

func (c *Client) transport() transport.Transport {
	if c.Transport == nil {
		return transport.Default
	}
	return c.Transport
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return nopLogger
	}
	return c.Logger
}

var nopLogger = zap.NewNop()
