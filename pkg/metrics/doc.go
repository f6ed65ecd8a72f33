// Package metrics exports runtime activity as Prometheus metrics.
//
// A Collector observes scheduler flushes, element resources (listeners
// and tasks) and hydration passes:
//
//	m := metrics.New(metrics.WithRegistry(reg))
//	sched := scheduler.New(frames, scheduler.WithObserver(m))
//	env := element.NewEnv(doc, sched, element.WithResourceObserver(m))
package metrics
