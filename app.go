package ripple

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/element"
	"github.com/vango-dev/ripple/pkg/hydration"
	"github.com/vango-dev/ripple/pkg/metrics"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

// ErrAnchorNotFound is returned by Mount and Hydrate when the document has
// no element with the requested id. Match it with errors.Is.
var ErrAnchorNotFound = errors.New("E010")

// App owns a document, the scheduler that patches it, and the elements
// mounted into it.
type App struct {
	doc     *dom.Document
	frames  scheduler.FrameSource
	sched   *scheduler.Scheduler
	env     *element.Env
	logger  *slog.Logger
	metrics *metrics.Collector

	reservedPrefix string

	mounts   map[string]*element.Element
	hydrated map[string]hydration.Stats
	closers  []io.Closer

	// cancelTasks cancels every task spawned in env, mounted or not.
	cancelTasks context.CancelFunc
}

// New creates an App. Without WithFrameSource it is driven by a
// scheduler.Loop at 60 frames per second, started by Run.
func New(opts ...Option) *App {
	o := options{
		logger:         slog.Default(),
		frameRate:      60,
		reservedPrefix: hydration.DefaultReservedPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.doc == nil {
		o.doc = dom.NewDocument()
	}
	if o.frames == nil {
		o.frames = scheduler.NewLoop(o.frameRate, scheduler.WithLoopLogger(o.logger))
	}

	schedOpts := []scheduler.Option{
		scheduler.WithLogger(o.logger),
		scheduler.WithMaxRounds(o.maxRounds),
	}
	taskCtx, cancelTasks := context.WithCancel(context.Background())
	envOpts := []element.EnvOption{element.WithTaskContext(taskCtx)}
	if o.metrics != nil {
		schedOpts = append(schedOpts, scheduler.WithObserver(o.metrics))
		envOpts = append(envOpts, element.WithResourceObserver(o.metrics))
	}
	sched := scheduler.New(o.frames, schedOpts...)

	return &App{
		doc:            o.doc,
		frames:         o.frames,
		sched:          sched,
		env:            element.NewEnv(o.doc, sched, envOpts...),
		logger:         o.logger,
		metrics:        o.metrics,
		reservedPrefix: o.reservedPrefix,
		mounts:         make(map[string]*element.Element),
		hydrated:       make(map[string]hydration.Stats),
		cancelTasks:    cancelTasks,
	}
}

// Document returns the live document.
func (a *App) Document() *dom.Document { return a.doc }

// Env returns the environment elements are built in.
func (a *App) Env() *element.Env { return a.env }

// Scheduler returns the scheduler.
func (a *App) Scheduler() *scheduler.Scheduler { return a.sched }

// Logger returns the app's logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// =============================================================================
// Mounting
// =============================================================================

// Mount appends root to the element with the given id. A root already
// mounted under id is unmounted first.
func (a *App) Mount(id string, root *element.Element) error {
	a.Unmount(id)
	anchor, err := a.anchor(id)
	if err != nil {
		return err
	}
	if err := anchor.AppendChild(root.DomNode()); err != nil {
		return errors.New("E004").WithDetail("mount %q", id).Wrap(err)
	}
	a.env.ReleaseEffects(root.DomNode())
	a.mounts[id] = root
	a.logger.Info("mounted", "id", id)
	return nil
}

// Unmount detaches the root mounted under id and tears it down, releasing
// its listeners, tasks and subscriptions. It reports whether anything was
// mounted.
func (a *App) Unmount(id string) bool {
	root, ok := a.mounts[id]
	if !ok {
		return false
	}
	delete(a.mounts, id)
	delete(a.hydrated, id)
	root.DomNode().Remove()
	root.Teardown()
	a.logger.Info("unmounted", "id", id)
	return true
}

// Mounted returns the root mounted under id, or nil.
func (a *App) Mounted(id string) *element.Element {
	return a.mounts[id]
}

// Mounts returns the ids of all mounted roots in sorted order.
func (a *App) Mounts() []string {
	ids := make([]string, 0, len(a.mounts))
	for id := range a.mounts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Hydrate hydrates root against the existing content of the element with
// the given id and mounts it there. Hydration runs as an update of the
// next flush, so effects queued while building root see the live nodes.
// It must not be called on the UI goroutine.
//
// If ctx is done before that flush, root is left unmounted and ctx.Err()
// is returned.
func (a *App) Hydrate(ctx context.Context, id string, root *element.Element) (hydration.Stats, error) {
	type result struct {
		stats hydration.Stats
		err   error
	}
	done := make(chan result, 1)
	a.frames.Post(func() {
		a.sched.QueueUpdate(scheduler.NewUpdate(nil, func() {
			if ctx.Err() != nil {
				done <- result{err: ctx.Err()}
				return
			}
			stats, err := a.HydrateNow(ctx, id, root)
			done <- result{stats: stats, err: err}
		}))
	})

	select {
	case r := <-done:
		return r.stats, r.err
	case <-ctx.Done():
		return hydration.Stats{}, ctx.Err()
	}
}

// HydrateNow hydrates immediately. It must be called on the UI goroutine.
func (a *App) HydrateNow(ctx context.Context, id string, root *element.Element) (hydration.Stats, error) {
	a.Unmount(id)
	anchor, err := a.anchor(id)
	if err != nil {
		return hydration.Stats{}, err
	}

	stats := hydration.Hydrate(ctx, anchor, root, hydration.WithReservedPrefix(a.reservedPrefix))
	a.env.ReleaseEffects(anchor)
	a.mounts[id] = root
	a.hydrated[id] = stats
	if a.metrics != nil {
		a.metrics.ObserveHydration(stats)
	}
	a.logger.Info("hydrated", "id", id, "stats", stats)
	return stats, nil
}

// HydrationStats returns the stats of the hydration that mounted id.
func (a *App) HydrationStats(id string) (hydration.Stats, bool) {
	s, ok := a.hydrated[id]
	return s, ok
}

func (a *App) anchor(id string) (*dom.Node, error) {
	anchor := a.doc.GetElementByID(id)
	if anchor == nil {
		return nil, errors.New("E010").WithDetail("id %q", id)
	}
	return anchor, nil
}

// =============================================================================
// Lifecycle
// =============================================================================

// Do runs fn on the UI goroutine and waits for it to return.
func (a *App) Do(ctx context.Context, fn func()) error {
	if loop, ok := a.frames.(*scheduler.Loop); ok {
		return loop.Do(ctx, fn)
	}
	finished := make(chan struct{})
	a.frames.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddCloser registers c to be closed by Close.
func (a *App) AddCloser(c io.Closer) {
	a.closers = append(a.closers, c)
}

// Run drives the frame loop and the given services until ctx is done or a
// service fails. It requires the default Loop frame source.
func (a *App) Run(ctx context.Context, services ...func(context.Context) error) error {
	loop, ok := a.frames.(*scheduler.Loop)
	if !ok {
		return errors.New("E011").WithDetail("frame source %T is driven externally", a.frames)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(ctx) })
	for _, svc := range services {
		g.Go(func() error { return svc(ctx) })
	}
	return g.Wait()
}

// Close unmounts every root, cancels remaining tasks and closes registered
// closers. Call it from the UI goroutine or after Run has returned.
func (a *App) Close() error {
	for _, id := range a.Mounts() {
		a.Unmount(id)
	}
	a.cancelTasks()
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i].Close())
	}
	a.closers = nil
	return err
}
