// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package pool provides a bounded worker pool for running asynchronous
tasks.

A Pool runs a fixed number of workers pulling jobs off a bounded queue.
Anything with a Work method is a Job, including *asynchttp.Task:

	p := pool.New(pool.WithWorkers(16), pool.WithQueueSize(256))
	defer p.Shutdown(context.Background())
	f, err := p.Submit(ctx, task)
	...
	err = f.Wait(ctx)

Shutdown stops the pool. Jobs still waiting in the queue are abandoned,
and if a job also implements Canceller its Cancel method is called so
it can report its own cancellation. Jobs already running are allowed
to finish.

A panic inside a job does not bring down the pool: it is recovered and
reported through the job's Future as a *PanicError.
*/
package pool
