package navkit

import (
	"context"
	"net/url"
)

// HostEvents carries the callbacks a Navigator registers with its host.
// Hosts must invoke them passively — registration must never delay or
// block the host's own event dispatch.
type HostEvents struct {
	// OnTraversal fires when the user moved within history
	// (back/forward). The new URL is read back via CurrentURL.
	OnTraversal func()

	// OnHashChange fires when only the URL fragment changed.
	OnHashChange func()
}

// Host is the navigation surface of the surrounding environment.
// Implementations bridge to a real browser (see package bridge) or to
// a fake for tests. All methods are invoked from the Navigator only.
type Host interface {
	// CurrentURL returns the host's current absolute URL.
	CurrentURL() *url.URL

	// PushURL appends a new history entry for u.
	PushURL(u *url.URL)

	// ReplaceURL overwrites the current history entry with u.
	ReplaceURL(u *url.URL)

	// Back moves one entry back in history.
	Back()

	// Forward moves one entry forward in history.
	Forward()

	// Bind registers the traversal and fragment-change callbacks.
	// Called at most once per Navigator.
	Bind(events HostEvents)

	// Unbind removes the callbacks registered by Bind. Idempotent.
	Unbind()

	// ScrollToTop resets the viewport scroll position to the origin.
	ScrollToTop()

	// Probe issues a best-effort, fire-and-forget request to warm
	// caches for rawURL. Failures are swallowed, never reported.
	Probe(ctx context.Context, rawURL string)

	// Schedule runs fn on the next turn of the host's cooperative
	// scheduler, after all synchronous work in flight has completed.
	Schedule(fn func())
}

// TransitionHost is the optional visual-transition capability.
// A host that implements it guarantees fn is invoked to completion,
// exactly once, synchronously relative to the transition itself.
type TransitionHost interface {
	StartTransition(fn func())
}
