package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	clientdist "github.com/navkit-dev/navkit/client/dist"
	"github.com/navkit-dev/navkit/pkg/bridge"
	"github.com/navkit-dev/navkit/pkg/navkit"
)

const demoPage = `<!DOCTYPE html>
<html>
<head>
  <title>navkit demo</title>
  <script src="/navkit.js" defer></script>
</head>
<body>
  <h1>navkit demo</h1>
  <p>Open the console, then use the browser back/forward buttons or
  edit the URL fragment. Every change is mirrored to the server, which
  logs the navigation and drives pushes of its own every few seconds.</p>
</body>
</html>
`

func demoCmd() *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a demo server exercising the navigation bridge",
		Long: `Run a demo HTTP server that serves a page connected to the
navigation bridge. The server pushes a navigation on a timer and logs
every location change it observes, including user back/forward and
fragment edits.

Prometheus metrics are exposed at /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(addr, interval)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":3000", "Address to listen on")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Server-driven navigation interval")

	return cmd
}

func runDemo(addr string, interval time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	metrics := navkit.NewMetrics()

	srv := bridge.NewServer(bridge.Config{
		Logger: logger,
		NavigatorOptions: []navkit.Option{
			navkit.WithLogger(logger),
			navkit.WithMetrics(metrics),
		},
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		// Demo only; browsers connect from the page we just served.
		CheckOrigin: func(r *http.Request) bool { return true },
	}, func(s *bridge.Session) {
		logger.Info("session connected", "path", s.Nav.State().Path)

		s.Nav.Subscribe(func() {
			logger.Info("location changed", "state", s.Nav.State().String())
		})

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			n := 0
			for {
				select {
				case <-ticker.C:
					n++
					dest := fmt.Sprintf("/page/%d?seq=%d", n, n)
					if err := s.Nav.Push(dest); err != nil {
						logger.Error("push failed", "destination", dest, "error", err)
					}
				case <-s.Bridge.Done():
					logger.Info("session closed")
					return
				}
			}
		}()
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/navkit.js", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Write(clientdist.NavkitJS)
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/_navkit", srv.Routes())
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		// Every page path serves the demo shell; the client keeps the
		// URL in sync from there.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(demoPage))
	})

	httpSrv := &http.Server{Addr: addr, Handler: r}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(ctx)
	}()

	logger.Info("demo server listening", "addr", addr)
	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
