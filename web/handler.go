// Package web serves the todos application: login, logout and the todos
// page with optimistic rendering of in-flight submissions.
package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/amonks/todomvc/action"
	"github.com/amonks/todomvc/session"
	"github.com/amonks/todomvc/todo"
)

const (
	// DefaultSettleWait is how long a POST waits for its submission to
	// settle before redirecting.
	DefaultSettleWait = 250 * time.Millisecond
	// DefaultPageTTL is how long an idle client keeps its page state.
	DefaultPageTTL = 30 * time.Minute
)

// Store is the data the handler reads and mutates.
type Store interface {
	action.Store
	SelectTodos(userID string) ([]todo.Todo, uint64, error)
	UserByID(userID string) (todo.User, error)
	UserByEmail(email string) (todo.User, error)
	VerifyLogin(email, password string) (todo.User, error)
	InsertUser(email, password string) (todo.User, error)
}

// Options configures the web handler.
type Options struct {
	Store    Store
	Sessions *session.Manager
	Logger   *log.Logger

	// ActionDelay is added before every submitted action runs.
	ActionDelay time.Duration
	// SettleWait defaults to DefaultSettleWait. Negative means don't wait.
	SettleWait time.Duration
	// PageTTL defaults to DefaultPageTTL.
	PageTTL time.Duration
	// DebugReconcile logs how the rendered list changed between renders.
	DebugReconcile bool

	Now func() time.Time
}

// Handler serves the web client.
type Handler struct {
	store          Store
	sessions       *session.Manager
	logger         *log.Logger
	actionDelay    time.Duration
	settleWait     time.Duration
	debugReconcile bool
	now            func() time.Time

	clients   *registry
	templates *template.Template
	router    *mux.Router
}

// NewHandler creates a new web handler.
func NewHandler(opts Options) (*Handler, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session manager is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "todomvc: ", log.LstdFlags)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	settleWait := opts.SettleWait
	if settleWait == 0 {
		settleWait = DefaultSettleWait
	}
	pageTTL := opts.PageTTL
	if pageTTL <= 0 {
		pageTTL = DefaultPageTTL
	}

	h := &Handler{
		store:          opts.Store,
		sessions:       opts.Sessions,
		logger:         logger,
		actionDelay:    opts.ActionDelay,
		settleWait:     settleWait,
		debugReconcile: opts.DebugReconcile,
		now:            now,
		clients:        newRegistry(pageTTL, now),
		templates:      newTemplates(),
	}

	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.Methods(http.MethodGet).Path("/health").HandlerFunc(h.handleHealth)
	r.Methods(http.MethodGet).Path(homeHref).HandlerFunc(h.handleHome)
	r.Methods(http.MethodGet).Path(loginPath).HandlerFunc(h.handleLoginPage)
	r.Methods(http.MethodPost).Path(loginPath).HandlerFunc(h.handleLogin)
	r.Methods(http.MethodGet, http.MethodPost).Path(logoutHref).HandlerFunc(h.handleLogout)
	r.Methods(http.MethodGet).Path(todosHref).HandlerFunc(h.handleTodos)
	r.Methods(http.MethodGet).Path(todosHref + "/{filter}").HandlerFunc(h.handleTodos)
	r.Methods(http.MethodPost).Path(todosHref).HandlerFunc(h.handleTodosPost)
	r.Methods(http.MethodPost).Path(todosHref + "/{filter}").HandlerFunc(h.handleTodosPost)
	r.NotFoundHandler = h.logRequests(http.HandlerFunc(h.handleUnknown))
	h.router = r

	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Close drops every client's page state and cancels their pending
// submissions.
func (h *Handler) Close() {
	h.clients.closeAll()
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		h.logf("%s %s %d %s", r.Method, r.URL.Path, m.Code, m.Duration)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"clients": h.clients.len(),
	})
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.currentUser(r); ok {
		http.Redirect(w, r, todosHref, http.StatusFound)
		return
	}
	http.Redirect(w, r, loginHref(todosHref), http.StatusFound)
}

// handleUnknown sends unknown paths to the todos page, or to login first.
func (h *Handler) handleUnknown(w http.ResponseWriter, r *http.Request) {
	status := http.StatusFound
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		status = http.StatusSeeOther
	}
	if _, ok := h.currentUser(r); ok {
		http.Redirect(w, r, todosHref, status)
		return
	}
	http.Redirect(w, r, loginHref(todosHref), status)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logf("render %s: %v", name, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) logf(format string, args ...any) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Printf(format, args...)
}
