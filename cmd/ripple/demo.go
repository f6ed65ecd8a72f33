package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/vango-dev/ripple"
	"github.com/vango-dev/ripple/internal/config"
	rerrors "github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/element"
	"github.com/vango-dev/ripple/pkg/inspect"
	"github.com/vango-dev/ripple/pkg/metrics"
	"github.com/vango-dev/ripple/pkg/reactive"
)

// demoPage is the markup a server would have rendered for the demo.
const demoPage = `<!DOCTYPE html>
<html>
<head><title>ripple demo</title></head>
<body>
<div id="app">
  <main>
    <h1>ripple</h1>
    <p>ticks: 0</p>
    <ul></ul>
  </main>
</div>
</body>
</html>`

const demoHistory = 5

type demoOptions struct {
	config   string
	addr     string
	interval time.Duration
	duration time.Duration
}

func demoCmd() *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a demo app",
		Long: `Run a small ticking app against server-rendered markup.

The app hydrates the markup, then updates a counter and a list of
recent ticks. With the inspector enabled, the live document is served
over HTTP and streamed over a websocket.

Configuration is read from ripple.json or ripple.yaml in the current
directory or a parent, unless --config is given.

Examples:
  ripple demo
  ripple demo --addr 127.0.0.1:7070
  ripple demo --config ./ripple.yaml --duration 10s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "Path to a config file")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Serve the inspector on this address")
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Second, "Time between ticks")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "Stop after this long (0 runs until interrupted)")

	return cmd
}

func loadDemoConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.LoadFromWorkingDir()
	if rerrors.Code(err) == "E022" {
		return config.New(), nil
	}
	return cfg, err
}

func runDemo(cmd *cobra.Command, opts demoOptions) (err error) {
	w := cmd.OutOrStdout()

	cfg, err := loadDemoConfig(opts.config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Inspector.Enabled = true
		cfg.Inspector.Addr = opts.addr
	}
	if opts.interval <= 0 {
		opts.interval = time.Second
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	doc, err := dom.ParseString(demoPage)
	if err != nil {
		return err
	}

	appOpts := []ripple.Option{
		ripple.WithDocument(doc),
		ripple.WithLogger(logger),
		ripple.WithFrameRate(cfg.FrameRate),
		ripple.WithMaxFlushRounds(cfg.MaxFlushRounds),
		ripple.WithReservedPrefix(cfg.Hydration.ReservedPrefix),
	}
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		appOpts = append(appOpts, ripple.WithMetrics(metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(registry),
		)))
	}
	app := ripple.New(appOpts...)
	defer func() {
		err = multierr.Append(err, app.Close())
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	printBanner(w)
	fmt.Fprintln(w, "  demo")
	fmt.Fprintln(w)

	services := []func(context.Context) error{
		func(ctx context.Context) error {
			var root *element.Element
			if err := app.Do(ctx, func() {
				root = demoRoot(app, opts.interval)
			}); err != nil {
				return ignoreCancel(ctx, err)
			}
			stats, err := app.Hydrate(ctx, "app", root)
			if err != nil {
				return ignoreCancel(ctx, err)
			}
			success(w, "Hydrated demo markup")
			fmt.Fprintln(w, stats.String())
			return nil
		},
	}

	if cfg.Inspector.Enabled {
		var inspectOpts []inspect.Option
		inspectOpts = append(inspectOpts, inspect.WithLogger(logger))
		if registry != nil {
			inspectOpts = append(inspectOpts, inspect.WithMetrics(cfg.Metrics.Path, registry))
		}
		srv := inspect.New(app, inspectOpts...)
		app.AddCloser(srv)
		info(w, "Inspector: http://%s/document", cfg.Inspector.Addr)
		services = append(services, func(ctx context.Context) error {
			return srv.Serve(ctx, cfg.Inspector.Addr)
		})
	}

	if err := app.Run(ctx, services...); err != nil {
		return err
	}
	fmt.Fprintln(w, "\n  Shutting down...")
	return nil
}

func ignoreCancel(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// demoRoot builds the demo tree. It runs on the UI goroutine.
func demoRoot(app *ripple.App, interval time.Duration) *element.Element {
	env := app.Env()
	sched := app.Scheduler()

	ticks := reactive.New(sched, 0)
	history := reactive.New(sched, reactive.NewChangeTrackingVec[string]())

	tick := func() {
		ticks.Write().Map(func(n int) int { return n + 1 })
		history.Write().Edit(func(v *reactive.ChangeTrackingVec[string]) {
			v.Push(time.Now().Format(time.TimeOnly))
			if v.Len() > demoHistory {
				v.Remove(0)
			}
		})
	}

	return env.Tag("main").
		Child(env.Tag("h1").Text("ripple").Build()).
		Child(env.Tag("p").
			Child(reactive.Text(env, ticks.Read(), func(n int) string {
				return "ticks: " + strconv.Itoa(n)
			})).
			Build()).
		Child(env.Tag("ul").
			Dynamic(reactive.List(history.Read(), func(at string) *element.Element {
				return env.Tag("li").Text(at).Build()
			})).
			Build()).
		Spawn(func(ctx context.Context) func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					sched.Post(tick)
				}
			}
		}).
		Build()
}
