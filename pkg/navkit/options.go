package navkit

import (
	"log/slog"
	"time"
)

// NavigateOptions configures a single Push or Replace call.
type NavigateOptions struct {
	// Replace overwrites the current history entry instead of pushing.
	Replace bool

	// Scroll controls whether the viewport scrolls to the origin after
	// navigation. Defaults to true.
	Scroll bool

	// Shallow skips the visual transition for this navigation.
	Shallow bool
}

// NavigateOption is a functional option for Push and Replace.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithoutScroll disables scrolling to the origin after navigation.
func WithoutScroll() NavigateOption {
	return func(o *NavigateOptions) {
		o.Scroll = false
	}
}

// WithShallow skips the visual transition for this navigation.
func WithShallow() NavigateOption {
	return func(o *NavigateOptions) {
		o.Shallow = true
	}
}

// DefaultDebounceWindow is the window within which a second Push or
// Replace call is silently dropped. It absorbs duplicate rapid-fire
// triggers such as a pointer press and its synthesized click.
const DefaultDebounceWindow = 10 * time.Millisecond

// Option configures a Navigator at construction.
type Option func(*Navigator)

// WithInitialState seeds the initial snapshot instead of parsing the
// host's current URL. Used when the initial state was precomputed
// elsewhere, e.g. from server-rendered markup. Consumed exactly once
// at construction.
func WithInitialState(state RouterState) Option {
	return func(n *Navigator) {
		n.seed = &state
	}
}

// WithLogger sets the logger. The Navigator is silent without one.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// WithDebounceWindow overrides DefaultDebounceWindow.
func WithDebounceWindow(d time.Duration) Option {
	return func(n *Navigator) {
		n.debounce = d
	}
}

// WithMetrics attaches Prometheus metrics to the Navigator.
func WithMetrics(m *Metrics) Option {
	return func(n *Navigator) {
		n.metrics = m
	}
}

// WithTracerName sets the OpenTelemetry tracer name (default "navkit").
func WithTracerName(name string) Option {
	return func(n *Navigator) {
		if name != "" {
			n.tracerName = name
		}
	}
}
