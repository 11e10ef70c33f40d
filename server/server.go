// Package server wires the todo store, login sessions and web handler
// into a running HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/amonks/todomvc/internal/config"
	"github.com/amonks/todomvc/internal/paths"
	"github.com/amonks/todomvc/session"
	"github.com/amonks/todomvc/todo"
	"github.com/amonks/todomvc/web"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":3000"

const shutdownTimeout = 5 * time.Second

// Options configures a server.
type Options struct {
	// StorePath defaults to todo.DefaultFilename in the state dir.
	StorePath  string
	SeedPath   string
	NoSeed     bool
	SaveDelay  time.Duration
	BcryptCost int

	// SecretFile defaults to paths.DefaultSecretPath.
	SecretFile    string
	SessionTTL    time.Duration
	RememberTTL   time.Duration
	SecureCookies bool

	ActionDelay    time.Duration
	SettleWait     time.Duration
	PageTTL        time.Duration
	DebugReconcile bool

	Logger *log.Logger
	Now    func() time.Time
}

// OptionsFromConfig converts loaded configuration to server options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		StorePath:      cfg.Store.Path,
		SeedPath:       cfg.Store.Seed,
		SaveDelay:      cfg.Store.SaveDelay.Duration,
		BcryptCost:     cfg.Store.BcryptCost,
		SecretFile:     cfg.Session.SecretFile,
		SessionTTL:     cfg.Session.TTL.Duration,
		RememberTTL:    cfg.Session.RememberTTL.Duration,
		SecureCookies:  cfg.Session.Secure,
		ActionDelay:    cfg.Server.ActionDelay.Duration,
		SettleWait:     cfg.Server.SettleWait.Duration,
		PageTTL:        cfg.Server.PageTTL.Duration,
		DebugReconcile: cfg.Server.DebugReconcile,
	}
}

// DefaultStorePath returns the store file in the default state dir.
func DefaultStorePath() (string, error) {
	stateDir, err := paths.DefaultStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, todo.DefaultFilename), nil
}

// OpenStore opens the todo store described by opts.
func OpenStore(opts Options) (*todo.Store, error) {
	storePath, err := paths.ResolveWithDefault(opts.StorePath, DefaultStorePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(storePath), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	openOpts := todo.OpenOptions{
		SaveDelay:  opts.SaveDelay,
		NoSeed:     opts.NoSeed,
		BcryptCost: opts.BcryptCost,
		Now:        opts.Now,
		Logger:     opts.Logger,
	}
	if opts.SeedPath != "" && !opts.NoSeed {
		seed, err := os.Open(opts.SeedPath)
		if err != nil {
			return nil, fmt.Errorf("open seed: %w", err)
		}
		defer seed.Close()
		openOpts.Seed = seed
	}

	store, err := todo.Open(storePath, openOpts)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", storePath, err)
	}
	return store, nil
}

// Server serves the todos web app.
type Server struct {
	store  *todo.Store
	web    *web.Handler
	logger *log.Logger
}

// New opens the store and session secret and builds the web handler.
func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "todomvc: ", log.LstdFlags)
		opts.Logger = logger
	}

	secretPath, err := paths.ResolveWithDefault(opts.SecretFile, paths.DefaultSecretPath)
	if err != nil {
		return nil, err
	}
	secret, err := session.LoadOrInitSecret(secretPath)
	if err != nil {
		return nil, fmt.Errorf("load session secret: %w", err)
	}
	sessions, err := session.NewManager(secret, session.Options{
		TTL:         opts.SessionTTL,
		RememberTTL: opts.RememberTTL,
		Secure:      opts.SecureCookies,
		Now:         opts.Now,
	})
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(opts)
	if err != nil {
		return nil, err
	}

	handler, err := web.NewHandler(web.Options{
		Store:          store,
		Sessions:       sessions,
		Logger:         logger,
		ActionDelay:    opts.ActionDelay,
		SettleWait:     opts.SettleWait,
		PageTTL:        opts.PageTTL,
		DebugReconcile: opts.DebugReconcile,
		Now:            opts.Now,
	})
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	return &Server{store: store, web: handler, logger: logger}, nil
}

// Handler returns the HTTP handler for the web app.
func (s *Server) Handler() http.Handler {
	return s.recoverHandler(s.web)
}

// Close drops page state and flushes the store.
func (s *Server) Close() error {
	s.web.Close()
	return s.store.Close()
}

// Serve listens on addr until interrupted, then shuts down gracefully.
func (s *Server) Serve(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.ServeListener(ctx, listener)
}

// ServeListener serves on listener until ctx is done, then shuts down
// gracefully and closes the server.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ErrorLog:          s.logger,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logf("listening on http://%s", listener.Addr())

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.Serve(listener)
	}()

	select {
	case err := <-listenErrs:
		closeErr := s.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logf("server stopped: %v", err)
			return errors.Join(err, closeErr)
		}
		return closeErr
	case <-ctx.Done():
		s.logf("interrupt received, shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		return errors.Join(shutdownErr, listenErr, s.Close())
	}
}

func (s *Server) recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := &responseTracker{ResponseWriter: w}
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				s.logf("panic handling request %s %s: %v\n%s", r.Method, r.URL.Path, recovered, debug.Stack())
				if writer.wroteHeader {
					return
				}
				http.Error(writer, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(writer, r)
	})
}

func (s *Server) logf(format string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Printf(format, args...)
}

type responseTracker struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseTracker) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseTracker) Write(data []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(data)
}

func (w *responseTracker) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
