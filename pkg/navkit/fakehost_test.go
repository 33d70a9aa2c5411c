package navkit

import (
	"context"
	"net/url"
	"sync"
)

// fakeHost is an in-memory Host for tests. Back/Forward move within the
// recorded history and fire the traversal callback synchronously, the
// way a browser raises popstate after a traversal. Scheduled functions
// run only when the test calls flush, standing in for the next turn of
// the cooperative scheduler.
type fakeHost struct {
	mu        sync.Mutex
	history   []*url.URL
	index     int
	events    HostEvents
	bound     int
	unbound   int
	scrolls   int
	probes    []string
	scheduled []func()
}

func newFakeHost(rawURL string) *fakeHost {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return &fakeHost{history: []*url.URL{u}}
}

func (h *fakeHost) CurrentURL() *url.URL {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.history[h.index]
}

func (h *fakeHost) PushURL(u *url.URL) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = append(h.history[:h.index+1], u)
	h.index = len(h.history) - 1
}

func (h *fakeHost) ReplaceURL(u *url.URL) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history[h.index] = u
}

func (h *fakeHost) Back() {
	h.mu.Lock()
	if h.index > 0 {
		h.index--
	}
	onTraversal := h.events.OnTraversal
	h.mu.Unlock()
	if onTraversal != nil {
		onTraversal()
	}
}

func (h *fakeHost) Forward() {
	h.mu.Lock()
	if h.index < len(h.history)-1 {
		h.index++
	}
	onTraversal := h.events.OnTraversal
	h.mu.Unlock()
	if onTraversal != nil {
		onTraversal()
	}
}

func (h *fakeHost) Bind(events HostEvents) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = events
	h.bound++
}

func (h *fakeHost) Unbind() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = HostEvents{}
	h.unbound++
}

func (h *fakeHost) ScrollToTop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scrolls++
}

func (h *fakeHost) Probe(_ context.Context, rawURL string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes = append(h.probes, rawURL)
}

func (h *fakeHost) Schedule(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scheduled = append(h.scheduled, fn)
}

// flush runs everything scheduled so far, in order.
func (h *fakeHost) flush() {
	h.mu.Lock()
	pending := h.scheduled
	h.scheduled = nil
	h.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// fireTraversal simulates an external back/forward notification without
// moving the fake's history pointer.
func (h *fakeHost) fireTraversal() {
	h.mu.Lock()
	onTraversal := h.events.OnTraversal
	h.mu.Unlock()
	if onTraversal != nil {
		onTraversal()
	}
}

// fireHashChange simulates a manual fragment edit: the current entry's
// fragment changes, then the notification fires.
func (h *fakeHost) fireHashChange(fragment string) {
	h.mu.Lock()
	u := *h.history[h.index]
	u.Fragment = fragment
	h.history[h.index] = &u
	onHashChange := h.events.OnHashChange
	h.mu.Unlock()
	if onHashChange != nil {
		onHashChange()
	}
}

func (h *fakeHost) historyLen() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.history)
}

func (h *fakeHost) scrollCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scrolls
}

// fakeTransitionHost adds the visual-transition capability.
type fakeTransitionHost struct {
	*fakeHost
	transitions int
}

func (h *fakeTransitionHost) StartTransition(fn func()) {
	h.transitions++
	fn()
}
