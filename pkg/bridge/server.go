package bridge

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/navkit-dev/navkit/pkg/navkit"
)

// Config configures a bridge Server and the bridges it spawns.
type Config struct {
	// Logger receives connection and decode errors. Silent when nil.
	Logger *slog.Logger

	// DisableTransitions turns off the visual-transition capability
	// even for clients that support it.
	DisableTransitions bool

	// NavigatorOptions are passed to every per-connection Navigator.
	NavigatorOptions []navkit.Option

	// ReadTimeout bounds each WebSocket read. Zero means no deadline.
	ReadTimeout time.Duration

	// WriteTimeout bounds each WebSocket write. Zero means no deadline.
	WriteTimeout time.Duration

	// ReadyTimeout bounds the wait for the client's initial location
	// report. Default: 10 seconds.
	ReadyTimeout time.Duration

	// ProbeClient is the HTTP client for prefetch probes.
	// Default: a client with a 5 second timeout.
	ProbeClient *http.Client

	// CheckOrigin overrides the WebSocket origin check.
	CheckOrigin func(r *http.Request) bool
}

// Session is one connected browser tab: its bridge and the Navigator
// driving it.
type Session struct {
	Bridge *Bridge
	Nav    *navkit.Navigator
}

// Server accepts WebSocket connections and runs one Session per
// connection.
type Server struct {
	config    Config
	upgrader  websocket.Upgrader
	onSession func(*Session)
}

// NewServer creates a bridge server. onSession is invoked once per
// connection, after the client reported its initial location; it runs
// on the connection's handler goroutine and typically wires the
// application's subscribers. May be nil.
func NewServer(config Config, onSession func(*Session)) *Server {
	if config.ReadyTimeout <= 0 {
		config.ReadyTimeout = 10 * time.Second
	}
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
		onSession: onSession,
	}
}

// Routes returns a chi router exposing the WebSocket endpoint at /ws.
// Mount it wherever the application serves its bridge:
//
//	r := chi.NewRouter()
//	r.Mount("/_navkit", srv.Routes())
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", s.HandleWebSocket)
	return r
}

// HandleWebSocket upgrades the request and runs the session until the
// connection closes. Exposed for mounting outside chi.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.config.Logger != nil {
			s.config.Logger.Error("websocket upgrade failed", "error", err)
		}
		return
	}

	b := newBridge(conn, s.config)
	go b.readLoop()
	go b.runLoop()
	defer b.Close()

	ctx, cancel := context.WithTimeout(r.Context(), s.config.ReadyTimeout)
	err = b.waitReady(ctx)
	cancel()
	if err != nil {
		if s.config.Logger != nil {
			s.config.Logger.Warn("client never reported location", "error", err)
		}
		return
	}

	nav := navkit.New(b.Host(), s.config.NavigatorOptions...)
	defer nav.Destroy()

	if s.onSession != nil {
		s.onSession(&Session{Bridge: b, Nav: nav})
	}

	<-b.Done()
}
