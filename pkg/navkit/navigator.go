package navkit

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// defaultTracerName is the OpenTelemetry tracer name for navkit.
const defaultTracerName = "navkit"

// Navigator is the navigation controller. It owns the current
// RouterState, mutates the host's history on outbound navigations, and
// folds host-originated notifications back into the state.
//
// Construct exactly one per application with New and tear it down with
// Destroy. All methods are safe for use from the host's cooperative
// scheduler and from application code.
type Navigator struct {
	host       Host
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
	tracerName string

	// transition is the strategy selected once at construction:
	// wrapped when the host exposes a visual-transition capability,
	// direct otherwise.
	transition transitionStrategy

	// seed is the hydration snapshot, consumed during New.
	seed *RouterState

	debounce time.Duration
	now      func() time.Time

	mu         sync.Mutex
	state      RouterState
	navigating bool      // programmatic-navigation guard
	lastNav    time.Time // timestamp of the last accepted push/replace
	destroyed  bool

	subs *subscriberSet
}

// New constructs a Navigator bound to host. A nil host yields a
// headless Navigator: State works, every host-dependent operation is a
// no-op. Event-bridge callbacks are registered with the host before New
// returns.
func New(host Host, opts ...Option) *Navigator {
	n := &Navigator{
		host:       host,
		debounce:   DefaultDebounceWindow,
		now:        time.Now,
		tracerName: defaultTracerName,
		subs:       newSubscriberSet(),
	}
	for _, opt := range opts {
		opt(n)
	}

	n.tracer = otel.Tracer(n.tracerName)
	n.transition = selectTransition(host)

	// Hydration seed wins over the live host URL; it is consumed here
	// and plays no further role.
	switch {
	case n.seed != nil:
		n.state = *n.seed
		n.seed = nil
	case host != nil:
		n.state = StateFromURL(host.CurrentURL())
	default:
		n.state = emptyState()
	}
	if n.state.Query == nil {
		n.state.Query = url.Values{}
	}

	if host != nil {
		host.Bind(HostEvents{
			OnTraversal:  n.handleTraversal,
			OnHashChange: n.handleHashChange,
		})
	}

	return n
}

// State returns the last-computed snapshot. O(1), side-effect-free;
// the snapshot is not recomputed on call.
func (n *Navigator) State() RouterState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// SupportsTransitions reports whether the host exposes a
// visual-transition capability.
func (n *Navigator) SupportsTransitions() bool {
	return n.transition.wrapped()
}

// Push navigates to destination, appending a new history entry (or
// overwriting the current one with WithReplace). destination is
// resolved against the host's current origin; a malformed destination
// is the only error surfaced. Calls arriving within the debounce
// window of the previously accepted call are silently dropped.
func (n *Navigator) Push(destination string, opts ...NavigateOption) error {
	options := NavigateOptions{
		Scroll: true, // Default to scrolling
	}
	for _, opt := range opts {
		opt(&options)
	}

	if n.host == nil {
		return nil
	}

	kind := "push"
	if options.Replace {
		kind = "replace"
	}

	_, span := n.tracer.Start(context.Background(), "navkit.navigate",
		trace.WithAttributes(attribute.String("nav.kind", kind)))
	defer span.End()

	rel, err := url.Parse(destination)
	if err != nil {
		err = fmt.Errorf("invalid destination: %s", destination)
		recordError(span, err)
		return err
	}
	dest := rel
	if base := n.host.CurrentURL(); base != nil {
		dest = base.ResolveReference(rel)
	}
	span.SetAttributes(attribute.String("nav.path", dest.Path))

	// Debounce and guard arming are one atomic step: only accepted
	// calls advance the reference timestamp.
	n.mu.Lock()
	now := n.now()
	if !n.lastNav.IsZero() && now.Sub(n.lastNav) < n.debounce {
		n.mu.Unlock()
		span.SetAttributes(attribute.Bool("nav.debounced", true))
		n.metrics.debounceDropped()
		if n.logger != nil {
			n.logger.Debug("navigation dropped by debounce", "destination", destination)
		}
		return nil
	}
	n.lastNav = now
	n.navigating = true
	n.mu.Unlock()

	start := now
	run := func() {
		n.applyNavigation(dest, options)
	}
	if options.Shallow {
		run()
	} else {
		n.transition.run(run)
	}

	n.metrics.navigation(kind, n.now().Sub(start))
	if n.logger != nil {
		n.logger.Debug("navigated", "kind", kind, "url", dest.String())
	}
	return nil
}

// applyNavigation is the mutate-refresh-notify sequence of a single
// accepted navigation. It runs directly or inside the host's
// visual-transition callback, exactly once either way.
func (n *Navigator) applyNavigation(dest *url.URL, options NavigateOptions) {
	if options.Replace {
		n.host.ReplaceURL(dest)
	} else {
		n.host.PushURL(dest)
	}

	n.refreshState()

	if options.Scroll {
		n.host.ScrollToTop()
	}

	n.notify()

	// The guard stays armed until the next scheduling turn so that a
	// traversal notification raised by this very navigation is still
	// suppressed by the event bridge.
	n.host.Schedule(n.disarm)
}

// Replace is Push with WithReplace; it carries no logic of its own.
func (n *Navigator) Replace(destination string, opts ...NavigateOption) error {
	opts = append(opts[:len(opts):len(opts)], WithReplace())
	return n.Push(destination, opts...)
}

// Refresh re-derives the snapshot from the host's current URL and
// notifies subscribers. Useful when the host URL changed without a
// navigation, e.g. a query parameter mutated by another agent.
func (n *Navigator) Refresh() {
	if n.host == nil {
		return
	}

	_, span := n.tracer.Start(context.Background(), "navkit.navigate",
		trace.WithAttributes(attribute.String("nav.kind", "refresh")))
	defer span.End()

	n.refreshState()
	span.SetAttributes(attribute.String("nav.path", n.State().Path))
	n.host.ScrollToTop()
	n.notify()
	n.metrics.navigation("refresh", 0)
}

// Back delegates to the host's history traversal. The resulting
// traversal notification, if not suppressed, drives the state refresh.
func (n *Navigator) Back() {
	if n.host == nil {
		return
	}
	n.host.Back()
	n.metrics.navigation("back", 0)
}

// Forward delegates to the host's history traversal.
func (n *Navigator) Forward() {
	if n.host == nil {
		return
	}
	n.host.Forward()
	n.metrics.navigation("forward", 0)
}

// Destroy unbinds the event-bridge registrations and clears all
// subscribers. Safe to call multiple times. State remains queryable.
func (n *Navigator) Destroy() {
	n.mu.Lock()
	destroyed := n.destroyed
	n.destroyed = true
	n.mu.Unlock()
	if destroyed {
		return
	}

	if n.host != nil {
		n.host.Unbind()
	}
	n.subs.clear()
}

// refreshState replaces the snapshot with what the host URL parses to.
func (n *Navigator) refreshState() {
	state := StateFromURL(n.host.CurrentURL())
	n.mu.Lock()
	n.state = state
	n.mu.Unlock()
}

// notify invokes every subscriber. Subscribers re-read State
// themselves; they receive no arguments.
func (n *Navigator) notify() {
	n.subs.broadcast()
	n.metrics.notified()
}

func (n *Navigator) disarm() {
	n.mu.Lock()
	n.navigating = false
	n.mu.Unlock()
}

// recordError marks a span as failed.
func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
