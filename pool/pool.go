// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pool

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of workers used when WithWorkers is not
// given.
const DefaultWorkers = 8

// ErrClosed is returned by Submit after Shutdown has been called.
var ErrClosed = errors.New("asynchttp/pool: closed")

type options struct {
	workers    int
	queueSize  int
	logger     *zap.Logger
	registerer prometheus.Registerer
}

// An Option configures a Pool.
type Option func(*options)

// WithWorkers sets the number of jobs the pool runs concurrently.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithQueueSize sets how many jobs may wait for a worker before Submit
// blocks. The default equals the number of workers. Negative values
// are ignored.
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.queueSize = n
		}
	}
}

// WithLogger sets the logger. The default discards all logs.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegisterer registers the pool's Prometheus collectors with reg.
// Only one pool may be registered with a given registerer; wrap reg
// with prometheus.WrapRegistererWith to tell pools apart. By default
// metrics are collected but not registered.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// A Pool runs jobs on a fixed set of worker goroutines. It is safe for
// concurrent use by multiple goroutines.
type Pool struct {
	queue   chan *entry
	quit    chan struct{}
	workers int
	logger  *zap.Logger
	metrics *metrics
	group   errgroup.Group

	mu       sync.RWMutex
	closed   bool
	quitOnce sync.Once
}

type entry struct {
	job    Job
	future *Future
}

// New creates a pool and starts its workers.
func New(opts ...Option) *Pool {
	o := options{
		workers:   DefaultWorkers,
		queueSize: -1,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.queueSize < 0 {
		o.queueSize = o.workers
	}

	p := &Pool{
		queue:   make(chan *entry, o.queueSize),
		quit:    make(chan struct{}),
		workers: o.workers,
		logger:  o.logger,
		metrics: newMetrics(o.registerer),
	}
	for i := 0; i < p.workers; i++ {
		p.group.Go(func() error {
			p.work()
			return nil
		})
	}
	p.logger.Debug("pool started",
		zap.Int("workers", p.workers),
		zap.Int("queue_size", o.queueSize))
	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Len returns the number of jobs waiting for a worker.
func (p *Pool) Len() int {
	return len(p.queue)
}

// Submit queues job to be run by a worker. It blocks while the queue is
// full, until space frees up, ctx is done, or the pool is shut down.
func (p *Pool) Submit(ctx context.Context, job Job) (*Future, error) {
	if job == nil {
		panic("asynchttp/pool: nil job")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	e := &entry{job: job, future: newFuture()}
	select {
	case p.queue <- e:
		p.metrics.submitted.Inc()
		p.metrics.queued.Inc()
		return e.future, nil
	case <-p.quit:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown stops the pool. Queued jobs are cancelled, running jobs are
// waited for until ctx is done. Shutdown may be called more than once.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.quitOnce.Do(func() {
		close(p.quit)
	})

	// Once closed is set no Submit can add to the queue, so draining
	// it here catches everything the workers did not.
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	n := p.drain()
	if n > 0 {
		p.logger.Debug("pool cancelled queued jobs", zap.Int("count", n))
	}

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn("pool shutdown interrupted before running jobs finished", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (p *Pool) drain() int {
	n := 0
	for {
		select {
		case e := <-p.queue:
			p.cancel(e)
			n++
		default:
			return n
		}
	}
}

func (p *Pool) work() {
	for {
		select {
		case <-p.quit:
			return
		case e := <-p.queue:
			if p.quitting() {
				p.cancel(e)
				continue
			}
			p.run(e)
		}
	}
}

func (p *Pool) quitting() bool {
	select {
	case <-p.quit:
		return true
	default:
		return false
	}
}

func (p *Pool) run(e *entry) {
	p.metrics.queued.Dec()
	p.metrics.running.Inc()
	start := time.Now()

	err := safeWork(e.job)

	elapsed := time.Since(start)
	p.metrics.running.Dec()
	p.metrics.duration.Observe(elapsed.Seconds())
	if err != nil {
		p.metrics.finished.WithLabelValues(resultError).Inc()
		var panicErr *PanicError
		if errors.As(err, &panicErr) {
			p.logger.Error("job panicked", zap.Any("panic", panicErr.Value), zap.ByteString("stack", panicErr.Stack))
		} else {
			p.logger.Debug("job failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		}
	} else {
		p.metrics.finished.WithLabelValues(resultOK).Inc()
	}
	e.future.resolve(err, false)
}

func (p *Pool) cancel(e *entry) {
	p.metrics.queued.Dec()
	if c, ok := e.job.(Canceller); ok {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("job cancel panicked", zap.Any("panic", r))
				}
			}()
			c.Cancel()
		}()
	}
	p.metrics.finished.WithLabelValues(resultCancelled).Inc()
	e.future.resolve(nil, true)
}

func safeWork(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return job.Work()
}
