// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command asyncget fetches URLs concurrently and prints one line per
// URL with the outcome.
//
//	asyncget --workers 16 --timeout-ms 5000 https://a.example https://b.example
//
// Every flag can also be set through an ASYNCHTTP_ environment
// variable (for example ASYNCHTTP_WORKERS=16) or a .env file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gogama/asynchttp"
	"github.com/gogama/asynchttp/failure"
	"github.com/gogama/asynchttp/internal/config"
	"github.com/gogama/asynchttp/internal/logger"
	"github.com/gogama/asynchttp/pool"
	"github.com/gogama/asynchttp/request"
	"github.com/gogama/asynchttp/timeout"
	"github.com/gogama/asynchttp/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

type options struct {
	envFile string
	method  string
	data    string
	headers []string
	stats   bool
}

// boundFlags are the flags stored in the viper configuration, under
// the flag name with dashes replaced by underscores.
var boundFlags = []string{
	"workers",
	"queue-size",
	"timeout-ms",
	"transport",
	"http2",
	"log-level",
	"user-agent",
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	v := config.New()
	var o options

	cmd := &cobra.Command{
		Use:          "asyncget [flags] URL...",
		Short:        "Fetch URLs concurrently and report each outcome",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, o.envFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, &o, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.Int("workers", 8, "number of requests in flight at once")
	flags.Int("queue-size", 64, "number of requests waiting for a worker")
	flags.Int64("timeout-ms", 30000, "per-request timeout in milliseconds")
	flags.String("transport", config.TransportHTTP, `HTTP engine, "http" or "resty"`)
	flags.Bool("http2", false, "enable HTTP/2 over TLS")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("user-agent", "asynchttp", "User-Agent header to send")
	flags.StringVar(&o.envFile, "env-file", ".env", "file of ASYNCHTTP_ variables to load, if present")
	flags.StringVarP(&o.method, "method", "X", "GET", "request method")
	flags.StringVarP(&o.data, "data", "d", "", "request body")
	flags.StringArrayVarP(&o.headers, "header", "H", nil, `extra request header, as "Name: value"`)
	flags.BoolVar(&o.stats, "stats", false, "print pool metrics to stderr when done")
	for _, name := range boundFlags {
		if err := v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	return cmd
}

func run(ctx context.Context, cfg *config.Config, o *options, urls []string, stdout, stderr io.Writer) error {
	log, err := logger.New(cfg.LogLevel, zapcore.AddSync(stderr))
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	plans, err := buildPlans(cfg, o, urls)
	if err != nil {
		return err
	}

	tr, err := newTransport(cfg, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	p := pool.New(
		pool.WithWorkers(cfg.Workers),
		pool.WithQueueSize(cfg.QueueSize),
		pool.WithLogger(log),
		pool.WithRegisterer(reg))
	defer func() {
		_ = p.Shutdown(context.Background())
	}()

	out := &printer{w: stdout}
	var failed int32
	cl := &asynchttp.Client{
		Transport: tr,
		Pool:      p,
		Logger:    log,
		Handlers: asynchttp.Handlers{
			Success: func(t *asynchttp.Task) (interface{}, error) {
				out.printf("%d\t%s\t%d\t%s\n", t.StatusCode(), t.Plan.URL, len(t.Response.Body()),
					time.Since(t.Start).Round(time.Millisecond))
				return nil, nil
			},
			Failure: func(t *asynchttp.Task, err *failure.Error) {
				atomic.AddInt32(&failed, 1)
				out.printf("ERR\t%s\t%s\t%v\n", t.Plan.URL, err.Kind, err.Err)
			},
			Cancelled: func(t *asynchttp.Task) {
				atomic.AddInt32(&failed, 1)
				out.printf("CANCELLED\t%s\n", t.Plan.URL)
			},
		},
	}

	log.Info("fetching",
		zap.Int("urls", len(plans)),
		zap.Int("workers", cfg.Workers),
		zap.String("transport", cfg.Transport))
	for _, plan := range plans {
		cl.DoWithContext(ctx, plan)
	}
	execErr := cl.Execute(ctx)

	if o.stats {
		if err := printStats(stderr, reg); err != nil {
			log.Warn("gathering metrics failed", zap.Error(err))
		}
	}
	if execErr != nil {
		return execErr
	}
	if n := atomic.LoadInt32(&failed); n > 0 {
		return fmt.Errorf("%d of %d requests failed", n, len(plans))
	}
	return nil
}

func buildPlans(cfg *config.Config, o *options, urls []string) ([]*request.Plan, error) {
	var body interface{}
	if o.data != "" {
		body = o.data
	}

	plans := make([]*request.Plan, 0, len(urls))
	for _, u := range urls {
		p, err := request.NewPlan(strings.ToUpper(o.method), u, body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", u, err)
		}
		if cfg.UserAgent != "" {
			p.Header.Set("User-Agent", cfg.UserAgent)
		}
		for _, h := range o.headers {
			name, value, ok := strings.Cut(h, ":")
			if !ok {
				return nil, fmt.Errorf("invalid header %q (want \"Name: value\")", h)
			}
			p.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", u, err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func newTransport(cfg *config.Config, log *zap.Logger) (transport.Transport, error) {
	hc, err := transport.NewHTTPClient(transport.Options{HTTP2: cfg.HTTP2})
	if err != nil {
		return nil, err
	}
	policy := timeout.Fixed(cfg.Timeout)

	switch cfg.Transport {
	case config.TransportResty:
		t := transport.NewResty(resty.NewWithClient(hc))
		t.TimeoutPolicy = policy
		t.Logger = log
		return t, nil
	default:
		return &transport.HTTP{Doer: hc, TimeoutPolicy: policy, Logger: log}, nil
	}
}

type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printer) printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// printStats writes one "name{labels} value" line per pool metric
// series. Histograms report their sample count.
func printStats(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			sort.Strings(labels)
			series := mf.GetName()
			if len(labels) > 0 {
				series += "{" + strings.Join(labels, ",") + "}"
			}

			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			}
			if _, err := fmt.Fprintf(w, "%s %g\n", series, value); err != nil {
				return err
			}
		}
	}
	return nil
}
