package ripple

import (
	"log/slog"

	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/metrics"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

type options struct {
	logger         *slog.Logger
	frames         scheduler.FrameSource
	frameRate      int
	maxRounds      int
	metrics        *metrics.Collector
	doc            *dom.Document
	reservedPrefix string
}

// Option configures an App.
type Option func(*options)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFrameSource drives the app from fs instead of the default Loop. Run
// is unavailable with a custom frame source.
func WithFrameSource(fs scheduler.FrameSource) Option {
	return func(o *options) {
		o.frames = fs
	}
}

// WithFrameRate sets the paint opportunities per second of the default
// Loop.
func WithFrameRate(fps int) Option {
	return func(o *options) {
		o.frameRate = fps
	}
}

// WithMaxFlushRounds bounds the update rounds per flush.
func WithMaxFlushRounds(n int) Option {
	return func(o *options) {
		o.maxRounds = n
	}
}

// WithMetrics reports scheduler, resource and hydration activity to m.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithDocument uses doc instead of an empty document.
func WithDocument(doc *dom.Document) Option {
	return func(o *options) {
		o.doc = doc
	}
}

// WithReservedPrefix sets the attribute prefix hydration leaves untouched.
func WithReservedPrefix(prefix string) Option {
	return func(o *options) {
		o.reservedPrefix = prefix
	}
}
