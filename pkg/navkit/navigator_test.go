package navkit

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
)

// testClock is a manual clock for exercising the debounce window.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestNavigator(t *testing.T, rawURL string, opts ...Option) (*Navigator, *fakeHost, *testClock) {
	t.Helper()
	host := newFakeHost(rawURL)
	nav := New(host, opts...)
	clock := &testClock{now: time.Unix(1000, 0)}
	nav.now = clock.Now
	return nav, host, clock
}

func TestNewParsesHostURL(t *testing.T) {
	nav, _, _ := newTestNavigator(t, "https://example.com/docs?page=2#intro")

	state := nav.State()
	if state.Path != "/docs" {
		t.Errorf("Path = %q, want %q", state.Path, "/docs")
	}
	if got := state.Query.Get("page"); got != "2" {
		t.Errorf("Query[page] = %q, want %q", got, "2")
	}
	if state.Hash != "#intro" {
		t.Errorf("Hash = %q, want %q", state.Hash, "#intro")
	}
}

func TestNewHydrationSeed(t *testing.T) {
	host := newFakeHost("https://example.com/live")
	nav := New(host, WithInitialState(RouterState{
		Path:  "/a",
		Query: url.Values{},
	}))

	if got := nav.State().Path; got != "/a" {
		t.Errorf("Path = %q, want seeded %q", got, "/a")
	}
}

func TestNewSeedNilQuery(t *testing.T) {
	nav := New(nil, WithInitialState(RouterState{Path: "/x"}))
	if nav.State().Query == nil {
		t.Error("seeded state should get a non-nil Query")
	}
}

func TestHeadlessNavigator(t *testing.T) {
	nav := New(nil)

	state := nav.State()
	if state.Path != "" || len(state.Query) != 0 || state.Hash != "" {
		t.Errorf("headless state = %+v, want empty snapshot", state)
	}

	calls := 0
	unsub := nav.Subscribe(func() { calls++ })

	// Every host-dependent operation degrades to a no-op.
	if err := nav.Push("/somewhere"); err != nil {
		t.Errorf("headless Push returned error: %v", err)
	}
	nav.Back()
	nav.Forward()
	nav.Refresh()
	nav.Prefetch(nil, "https://example.com/p")

	if calls != 0 {
		t.Errorf("headless operations notified %d times, want 0", calls)
	}
	if nav.SupportsTransitions() {
		t.Error("headless navigator should not report transitions")
	}

	unsub()
	nav.Destroy()
	nav.Destroy() // idempotent
}

func TestPushUpdatesStateAndHistory(t *testing.T) {
	nav, host, _ := newTestNavigator(t, "https://example.com/")

	notifies := 0
	nav.Subscribe(func() { notifies++ })

	if err := nav.Push("/b?x=1#y"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}

	state := nav.State()
	if state.Path != "/b" {
		t.Errorf("Path = %q, want %q", state.Path, "/b")
	}
	if got := state.Query.Get("x"); got != "1" {
		t.Errorf("Query[x] = %q, want %q", got, "1")
	}
	if state.Hash != "#y" {
		t.Errorf("Hash = %q, want %q", state.Hash, "#y")
	}
	if notifies != 1 {
		t.Errorf("notifications = %d, want 1", notifies)
	}
	if host.historyLen() != 2 {
		t.Errorf("history entries = %d, want 2", host.historyLen())
	}
	if host.scrollCount() != 1 {
		t.Errorf("scrolls = %d, want 1", host.scrollCount())
	}
}

func TestPushResolvesRelativeDestination(t *testing.T) {
	nav, _, _ := newTestNavigator(t, "https://example.com/base/page?q=1")

	if err := nav.Push("sibling"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if got := nav.State().Path; got != "/base/sibling" {
		t.Errorf("Path = %q, want %q", got, "/base/sibling")
	}
	if got := nav.State().Query.Get("q"); got != "" {
		t.Errorf("relative navigation kept stale query %q", got)
	}
}

func TestPushInvalidDestination(t *testing.T) {
	nav, host, _ := newTestNavigator(t, "https://example.com/")

	notifies := 0
	nav.Subscribe(func() { notifies++ })

	if err := nav.Push("/bad%"); err == nil {
		t.Fatal("Push() with malformed destination should return an error")
	}
	if host.historyLen() != 1 {
		t.Errorf("history entries = %d, want 1 (no mutation)", host.historyLen())
	}
	if notifies != 0 {
		t.Errorf("notifications = %d, want 0", notifies)
	}
}

func TestPushReplaceOverwritesEntry(t *testing.T) {
	nav, host, _ := newTestNavigator(t, "https://example.com/a")

	if err := nav.Push("/b", WithReplace()); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if host.historyLen() != 1 {
		t.Errorf("history entries = %d, want 1 after replace", host.historyLen())
	}
	if got := nav.State().Path; got != "/b" {
		t.Errorf("Path = %q, want %q", got, "/b")
	}
}

func TestReplaceDelegatesToPush(t *testing.T) {
	nav, host, clock := newTestNavigator(t, "https://example.com/a")

	notifies := 0
	nav.Subscribe(func() { notifies++ })

	if err := nav.Replace("/c?k=v"); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	if host.historyLen() != 1 {
		t.Errorf("history entries = %d, want 1", host.historyLen())
	}
	if got := nav.State().Path; got != "/c" {
		t.Errorf("Path = %q, want %q", got, "/c")
	}
	if notifies != 1 {
		t.Errorf("notifications = %d, want 1", notifies)
	}

	// Explicit options survive the delegation.
	host.flush()
	clock.advance(20 * time.Millisecond)
	before := host.scrollCount()
	if err := nav.Replace("/d", WithoutScroll()); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	if host.scrollCount() != before {
		t.Error("Replace(WithoutScroll) still scrolled")
	}
}

func TestDebounceDropsRapidCalls(t *testing.T) {
	nav, host, clock := newTestNavigator(t, "https://example.com/")

	notifies := 0
	nav.Subscribe(func() { notifies++ })

	if err := nav.Push("/first"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	host.flush()

	clock.advance(5 * time.Millisecond)
	if err := nav.Push("/second"); err != nil {
		t.Fatalf("debounced Push() should not error, got: %v", err)
	}

	if host.historyLen() != 2 {
		t.Errorf("history entries = %d, want 2 (second push dropped)", host.historyLen())
	}
	if got := nav.State().Path; got != "/first" {
		t.Errorf("Path = %q, want %q", got, "/first")
	}
	if notifies != 1 {
		t.Errorf("notifications = %d, want 1", notifies)
	}
}

func TestDebounceRejectedCallDoesNotResetWindow(t *testing.T) {
	nav, host, clock := newTestNavigator(t, "https://example.com/")

	if err := nav.Push("/a"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	host.flush()

	clock.advance(5 * time.Millisecond)
	_ = nav.Push("/rejected")

	// 12ms after the accepted call, 7ms after the rejected one. Only
	// the accepted call's timestamp counts, so this must go through.
	clock.advance(7 * time.Millisecond)
	if err := nav.Push("/b"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if got := nav.State().Path; got != "/b" {
		t.Errorf("Path = %q, want %q", got, "/b")
	}
	if host.historyLen() != 3 {
		t.Errorf("history entries = %d, want 3", host.historyLen())
	}
}

func TestDebounceWindowOption(t *testing.T) {
	nav, host, clock := newTestNavigator(t, "https://example.com/", WithDebounceWindow(50*time.Millisecond))

	_ = nav.Push("/a")
	host.flush()
	clock.advance(20 * time.Millisecond)
	_ = nav.Push("/b")

	if got := nav.State().Path; got != "/a" {
		t.Errorf("Path = %q, want %q (50ms window)", got, "/a")
	}
}

func TestGuardSuppressesTraversalUntilNextTick(t *testing.T) {
	nav, host, _ := newTestNavigator(t, "https://example.com/")

	notifies := 0
	nav.Subscribe(func() { notifies++ })

	if err := nav.Push("/a"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if notifies != 1 {
		t.Fatalf("notifications = %d, want 1", notifies)
	}

	// The host raises a traversal notification for our own push before
	// the scheduler turns over. It must be swallowed.
	host.fireTraversal()
	if notifies != 1 {
		t.Errorf("notifications = %d, want 1 (traversal suppressed)", notifies)
	}

	// After the next scheduling turn the guard is disarmed and genuine
	// external traversals are processed again.
	host.flush()
	host.fireTraversal()
	if notifies != 2 {
		t.Errorf("notifications = %d, want 2", notifies)
	}
}

func TestHashChangeNeverSuppressed(t *testing.T) {
	nav, host, _ := newTestNavigator(t, "https://example.com/page")

	notifies := 0
	nav.Subscribe(func() { notifies++ })

	if err := nav.Push("/page"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	// Guard is still armed; fragment changes are processed regardless.
	host.fireHashChange("section-2")

	if notifies != 2 {
		t.Errorf("notifications = %d, want 2 (hash change not suppressed)", notifies)
	}
	if got := nav.State().Hash; got != "#section-2" {
		t.Errorf("Hash = %q, want %q", got, "#section-2")
	}
}

func TestBackForwardDriveStateViaBridge(t *testing.T) {
	nav, host, clock := newTestNavigator(t, "https://example.com/a")

	if err := nav.Push("/b"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	host.flush()
	clock.advance(20 * time.Millisecond)

	notifies := 0
	nav.Subscribe(func() { notifies++ })

	nav.Back()
	if got := nav.State().Path; got != "/a" {
		t.Errorf("Path after Back = %q, want %q", got, "/a")
	}
	nav.Forward()
	if got := nav.State().Path; got != "/b" {
		t.Errorf("Path after Forward = %q, want %q", got, "/b")
	}
	if notifies != 2 {
		t.Errorf("notifications = %d, want 2", notifies)
	}
}

func TestRefreshRederivesFromHost(t *testing.T) {
	nav, host, _ := newTestNavigator(t, "https://example.com/p?v=1")

	// Another agent mutates the host URL without a navigation.
	u, _ := url.Parse("https://example.com/p?v=2")
	host.ReplaceURL(u)

	notifies := 0
	nav.Subscribe(func() { notifies++ })

	nav.Refresh()

	if got := nav.State().Query.Get("v"); got != "2" {
		t.Errorf("Query[v] = %q, want %q", got, "2")
	}
	if notifies != 1 {
		t.Errorf("notifications = %d, want 1", notifies)
	}
	if host.scrollCount() != 1 {
		t.Errorf("scrolls = %d, want 1", host.scrollCount())
	}
}

func TestScrollOptions(t *testing.T) {
	nav, host, clock := newTestNavigator(t, "https://example.com/")

	if err := nav.Push("/a"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if host.scrollCount() != 1 {
		t.Errorf("scrolls = %d, want 1 (default)", host.scrollCount())
	}

	host.flush()
	clock.advance(20 * time.Millisecond)
	if err := nav.Push("/b", WithoutScroll()); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if host.scrollCount() != 1 {
		t.Errorf("scrolls = %d, want 1 (WithoutScroll)", host.scrollCount())
	}
}

func TestTransitionWrapping(t *testing.T) {
	host := &fakeTransitionHost{fakeHost: newFakeHost("https://example.com/")}
	nav := New(host)
	clock := &testClock{now: time.Unix(1000, 0)}
	nav.now = clock.Now

	if !nav.SupportsTransitions() {
		t.Fatal("SupportsTransitions() = false with transition-capable host")
	}

	if err := nav.Push("/a"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if host.transitions != 1 {
		t.Errorf("transitions = %d, want 1", host.transitions)
	}
	if got := nav.State().Path; got != "/a" {
		t.Errorf("Path = %q, want %q (sequence ran inside transition)", got, "/a")
	}

	// Shallow navigations skip the transition entirely.
	host.flush()
	clock.advance(20 * time.Millisecond)
	if err := nav.Push("/b", WithShallow()); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if host.transitions != 1 {
		t.Errorf("transitions = %d, want 1 (shallow)", host.transitions)
	}

	// Refresh and Back never wrap.
	nav.Refresh()
	nav.Back()
	if host.transitions != 1 {
		t.Errorf("transitions = %d, want 1", host.transitions)
	}
}

func TestPrefetchDelegatesToProbe(t *testing.T) {
	nav, host, _ := newTestNavigator(t, "https://example.com/")

	nav.Prefetch(nil, "https://example.com/next")

	host.mu.Lock()
	probes := len(host.probes)
	host.mu.Unlock()
	if probes != 1 {
		t.Errorf("probes = %d, want 1", probes)
	}
}

func TestDestroy(t *testing.T) {
	nav, host, _ := newTestNavigator(t, "https://example.com/a")

	notifies := 0
	nav.Subscribe(func() { notifies++ })

	nav.Destroy()

	if host.unbound != 1 {
		t.Errorf("unbound = %d, want 1", host.unbound)
	}

	// No further host notification reaches subscribers.
	host.fireTraversal()
	host.fireHashChange("later")
	if notifies != 0 {
		t.Errorf("notifications after Destroy = %d, want 0", notifies)
	}

	// State stays queryable.
	if got := nav.State().Path; got != "/a" {
		t.Errorf("Path = %q, want %q", got, "/a")
	}

	nav.Destroy()
	if host.unbound != 1 {
		t.Errorf("unbound = %d after second Destroy, want 1", host.unbound)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	nav, host, clock := newTestNavigator(t, "https://example.com/")

	first, second := 0, 0
	unsubFirst := nav.Subscribe(func() { first++ })
	nav.Subscribe(func() { second++ })

	if err := nav.Push("/a"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}

	unsubFirst()
	unsubFirst() // second call is a no-op

	host.flush()
	clock.advance(20 * time.Millisecond)
	if err := nav.Push("/b"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}

	if first != 1 {
		t.Errorf("first subscriber calls = %d, want 1", first)
	}
	if second != 2 {
		t.Errorf("second subscriber calls = %d, want 2", second)
	}
}

// recordingTracer captures the nav.kind attribute of every span it
// starts. Spans themselves stay no-ops.
type recordingTracer struct {
	embedded.Tracer

	mu    sync.Mutex
	kinds []string
}

func (rt *recordingTracer) Start(ctx context.Context, _ string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	kind := ""
	cfg := trace.NewSpanStartConfig(opts...)
	for _, attr := range cfg.Attributes() {
		if attr.Key == "nav.kind" {
			kind = attr.Value.AsString()
		}
	}
	rt.mu.Lock()
	rt.kinds = append(rt.kinds, kind)
	rt.mu.Unlock()
	return ctx, trace.SpanFromContext(ctx)
}

func TestPushAndRefreshOpenSpans(t *testing.T) {
	nav, host, clock := newTestNavigator(t, "https://example.com/start")
	tracer := &recordingTracer{}
	nav.tracer = tracer

	if err := nav.Push("/next"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	host.flush()
	clock.advance(20 * time.Millisecond)
	nav.Refresh()

	want := []string{"push", "refresh"}
	tracer.mu.Lock()
	defer tracer.mu.Unlock()
	if len(tracer.kinds) != len(want) {
		t.Fatalf("spans = %v, want %v", tracer.kinds, want)
	}
	for i, kind := range want {
		if tracer.kinds[i] != kind {
			t.Errorf("span %d kind = %q, want %q", i, tracer.kinds[i], kind)
		}
	}
}
