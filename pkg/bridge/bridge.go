package bridge

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/navkit-dev/navkit/pkg/navkit"
	"github.com/navkit-dev/navkit/pkg/protocol"
)

// wsConn is the subset of *websocket.Conn the bridge uses. Narrowed so
// tests can substitute a fake connection.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Bridge implements navkit.Host against a browser thin client on the
// other end of a WebSocket connection. It mirrors the client's current
// URL locally so CurrentURL answers synchronously.
type Bridge struct {
	conn         wsConn
	logger       *slog.Logger
	probeClient  *http.Client
	readTimeout  time.Duration
	writeTimeout time.Duration
	transitions  bool

	writeMu sync.Mutex

	// inTransition marks nav frames sent from inside StartTransition
	// so the client batches them into a view transition. Guarded by
	// writeMu alongside the writes it flags.
	inTransition bool

	mu      sync.Mutex
	current *url.URL
	events  navkit.HostEvents

	loop      chan func()
	done      chan struct{}
	closeOnce sync.Once
	readyOnce sync.Once
	ready     chan struct{}
}

func newBridge(conn wsConn, config Config) *Bridge {
	probeClient := config.ProbeClient
	if probeClient == nil {
		probeClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Bridge{
		conn:         conn,
		logger:       config.Logger,
		probeClient:  probeClient,
		readTimeout:  config.ReadTimeout,
		writeTimeout: config.WriteTimeout,
		transitions:  !config.DisableTransitions,
		loop:         make(chan func(), 64),
		done:         make(chan struct{}),
		ready:        make(chan struct{}),
	}
}

// Host returns the navkit.Host view of this bridge. When transitions
// are enabled the returned host additionally implements
// navkit.TransitionHost, which the Navigator probes at construction.
func (b *Bridge) Host() navkit.Host {
	if b.transitions {
		return transitionBridge{b}
	}
	return b
}

// Done is closed when the connection is gone and both loops stopped.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Close tears the connection down. Idempotent.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
		b.conn.Close()
	})
}

// waitReady blocks until the client's initial location report arrives,
// the context expires, or the connection dies.
func (b *Bridge) waitReady(ctx context.Context) error {
	select {
	case <-b.ready:
		return nil
	case <-b.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// navkit.Host implementation
// =============================================================================

// CurrentURL returns the mirrored client URL. Nil until the client's
// initial location report arrives.
func (b *Bridge) CurrentURL() *url.URL {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// PushURL updates the mirror and tells the client to push a history
// entry. The mirror updates first so the Navigator's snapshot refresh,
// which follows the mutation synchronously, observes the new URL.
func (b *Bridge) PushURL(u *url.URL) {
	b.setCurrent(u)
	b.sendNav(protocol.NavPush, u.String())
}

// ReplaceURL updates the mirror and overwrites the client's current
// history entry.
func (b *Bridge) ReplaceURL(u *url.URL) {
	b.setCurrent(u)
	b.sendNav(protocol.NavReplace, u.String())
}

// Back delegates to history.back() on the client. The mirror updates
// when the client reports the resulting traversal.
func (b *Bridge) Back() {
	b.sendNav(protocol.NavBack, "")
}

// Forward delegates to history.forward() on the client.
func (b *Bridge) Forward() {
	b.sendNav(protocol.NavForward, "")
}

// Bind registers the Navigator's event callbacks.
func (b *Bridge) Bind(events navkit.HostEvents) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = events
}

// Unbind removes the callbacks. Idempotent.
func (b *Bridge) Unbind() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = navkit.HostEvents{}
}

// ScrollToTop tells the client to reset the viewport scroll position.
func (b *Bridge) ScrollToTop() {
	b.sendNav(protocol.NavScrollTop, "")
}

// Probe issues a fire-and-forget HEAD request for rawURL to warm
// intermediary caches. Every failure is swallowed.
func (b *Bridge) Probe(ctx context.Context, rawURL string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return
	}
	go func() {
		resp, err := b.probeClient.Do(req)
		if err != nil {
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
}

// Schedule runs fn on the next turn of the connection loop, after all
// functions already queued. Dropped once the bridge is closed.
func (b *Bridge) Schedule(fn func()) {
	select {
	case b.loop <- fn:
	case <-b.done:
	}
}

// transitionBridge is the capability-enabled view of a Bridge.
type transitionBridge struct {
	*Bridge
}

// StartTransition runs fn to completion; navigation frames sent during
// fn carry the transition flag so the client batches the resulting DOM
// change into a view transition.
func (t transitionBridge) StartTransition(fn func()) {
	t.writeMu.Lock()
	t.inTransition = true
	t.writeMu.Unlock()

	fn()

	t.writeMu.Lock()
	t.inTransition = false
	t.writeMu.Unlock()
}

// =============================================================================
// Wire I/O
// =============================================================================

func (b *Bridge) setCurrent(u *url.URL) {
	b.mu.Lock()
	b.current = u
	b.mu.Unlock()
}

func (b *Bridge) sendNav(op protocol.NavOp, rawURL string) {
	frame := protocol.NewFrame(protocol.FrameNav, protocol.EncodeNav(&protocol.NavMessage{
		Op:  op,
		URL: rawURL,
	}))

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if b.inTransition {
		frame.Flags |= protocol.FlagTransition
	}

	data, err := frame.Encode()
	if err != nil {
		if b.logger != nil {
			b.logger.Error("nav frame encode error", "op", op.String(), "error", err)
		}
		return
	}

	if b.writeTimeout > 0 {
		b.conn.SetWriteDeadline(time.Now().Add(b.writeTimeout))
	}
	if err := b.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		if b.logger != nil {
			b.logger.Error("nav write error", "op", op.String(), "error", err)
		}
	}
}

// readLoop reads frames from the connection until it closes. Location
// messages are posted onto the connection loop; the read loop itself
// never runs Navigator code, so host event dispatch is never blocked.
func (b *Bridge) readLoop() {
	defer b.Close()

	for {
		if b.readTimeout > 0 {
			b.conn.SetReadDeadline(time.Now().Add(b.readTimeout))
		}

		_, msg, err := b.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				if b.logger != nil {
					b.logger.Error("read error", "error", err)
				}
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			if b.logger != nil {
				b.logger.Error("frame decode error", "error", err)
			}
			continue
		}

		switch frame.Type {
		case protocol.FrameLocation:
			m, err := protocol.DecodeLocation(frame.Payload)
			if err != nil {
				if b.logger != nil {
					b.logger.Error("location decode error", "error", err)
				}
				continue
			}
			b.Schedule(func() { b.handleLocation(m) })

		default:
			if b.logger != nil {
				b.logger.Warn("unknown frame type", "type", frame.Type.String())
			}
		}
	}
}

// runLoop executes scheduled functions one at a time. This is the
// cooperative scheduler the Navigator runs on.
func (b *Bridge) runLoop() {
	for {
		select {
		case fn := <-b.loop:
			fn()
		case <-b.done:
			return
		}
	}
}

// handleLocation folds a client location message into the URL mirror
// and dispatches the matching host event. Runs on the connection loop.
func (b *Bridge) handleLocation(m *protocol.LocationMessage) {
	u, err := url.Parse(m.URL)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("unparseable location from client", "url", m.URL)
		}
		return
	}

	b.mu.Lock()
	b.current = u
	events := b.events
	b.mu.Unlock()

	switch m.Kind {
	case protocol.LocationReport:
		b.readyOnce.Do(func() { close(b.ready) })

	case protocol.LocationTraversal:
		if events.OnTraversal != nil {
			events.OnTraversal()
		}

	case protocol.LocationHashChange:
		if events.OnHashChange != nil {
			events.OnHashChange()
		}
	}
}
