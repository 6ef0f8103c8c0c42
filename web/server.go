// Package web provides the development HTTP server.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"devserve/config"
	"devserve/log"
	"devserve/web/handlers"
	webmiddleware "devserve/web/middleware"
	"devserve/web/static"
)

// State is the lifecycle state of a Server.
type State int

const (
	Starting State = iota
	Serving
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Serving:
		return "serving"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const shutdownTimeout = 5 * time.Second

// Server serves a directory over HTTP.
type Server struct {
	config  *config.Config
	router  chi.Router
	srv     *http.Server
	monitor *DirectoryMonitor

	mu    sync.Mutex
	state State
	port  int
}

// Handler returns the http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// NewServer creates a new server for cfg.
func NewServer(cfg *config.Config) *Server {
	server := &Server{
		config: cfg,
		state:  Starting,
	}

	router := chi.NewRouter()

	// Headers go on first so every response, including 404, 405 and
	// preflight, carries them.
	router.Use(webmiddleware.InjectHeaders(cfg.Headers))
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.RequestLogger(&chimiddleware.DefaultLogFormatter{
		Logger:  requestLogger{},
		NoColor: true,
	}))
	router.Use(chimiddleware.Recoverer)

	// Browsers send a preflight before cross-origin GETs with custom headers.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	if cfg.Watch {
		server.monitor = NewDirectoryMonitor(cfg.Root, cfg.WatchInterval())
		router.Get("/__devserve/reload", handlers.ReloadHandler(server.monitor, webmiddleware.ResponseHeader(cfg.Headers)))
		router.Get("/__devserve/reload.js", static.ReloadScript().ServeHTTP)
	}

	files := static.FileServer(http.Dir(cfg.Root), static.Options{
		IndexRewrite:  cfg.Index,
		MimeOverrides: cfg.MimeTypes,
	})
	router.Get("/*", files.ServeHTTP)
	router.Head("/*", files.ServeHTTP)

	server.router = router

	server.srv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          log.FileOnlyErrorLog,
	}

	return server
}

// Listen binds the configured address. Port 0 lets the OS choose.
func (s *Server) Listen() (net.Listener, error) {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}

	s.mu.Lock()
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.mu.Unlock()
	return ln, nil
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. The listener is closed on every return path.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	s.mu.Lock()
	if s.state != Starting {
		s.mu.Unlock()
		return fmt.Errorf("server is %s", s.state)
	}
	s.state = Serving
	if s.port == 0 {
		s.port = ln.Addr().(*net.TCPAddr).Port
	}
	s.mu.Unlock()

	if s.monitor != nil {
		s.monitor.Start()
		defer s.monitor.Stop()
	}

	log.FileOnlyInfoLog.Printf("serving %s on %s", s.config.Root, ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.FileOnlyInfoLog.Printf("shutting down: %v", context.Cause(ctx))
		if s.monitor != nil {
			// Closing subscriber channels ends hijacked reload connections,
			// which Shutdown does not wait for.
			s.monitor.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = s.srv.Shutdown(shutdownCtx)
		if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
			err = serveErr
		}
	}

	s.mu.Lock()
	s.state = Stopped
	s.mu.Unlock()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Port returns the bound port, or 0 before Listen.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// URL returns the address browsers should open.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.Port())
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// requestLogger routes chi's request log lines to the log file, and to stdout
// in verbose mode.
type requestLogger struct{}

func (requestLogger) Print(v ...interface{}) {
	log.InfoLog.Print(v...)
}
