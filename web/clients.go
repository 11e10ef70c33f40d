package web

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amonks/todomvc/action"
	"github.com/amonks/todomvc/optimistic"
)

const clientCookieName = "todomvc_client"

// client is one browser's page state: its submission queues and the
// page reconciling them with the user's list.
type client struct {
	id     string
	userID string

	creating *action.Multi
	acting   *action.Multi

	// mu serializes renders of page.
	mu   sync.Mutex
	page *optimistic.Page

	// lastSeen is guarded by the registry.
	lastSeen time.Time
}

func (c *client) submit(form url.Values) *action.Submission {
	if action.FormKind(form) == action.KindNewTodo {
		return c.creating.Submit(form)
	}
	return c.acting.Submit(form)
}

func (c *client) close() {
	c.creating.Close()
	c.acting.Close()
}

// registry holds live clients, dropping those idle longer than ttl.
type registry struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	clients map[string]*client
}

func newRegistry(ttl time.Duration, now func() time.Time) *registry {
	return &registry{
		ttl:     ttl,
		now:     now,
		clients: make(map[string]*client),
	}
}

// get returns the live client with id if it belongs to userID.
func (r *registry) get(id, userID string) (*client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok || c.userID != userID {
		return nil, false
	}
	c.lastSeen = r.now()
	return c, true
}

// put installs c, closing the client it replaces and any idle clients.
func (r *registry) put(c *client) {
	now := r.now()

	r.mu.Lock()
	var closing []*client
	if prev, ok := r.clients[c.id]; ok {
		closing = append(closing, prev)
	}
	for id, other := range r.clients {
		if id != c.id && now.Sub(other.lastSeen) > r.ttl {
			closing = append(closing, other)
			delete(r.clients, id)
		}
	}
	c.lastSeen = now
	r.clients[c.id] = c
	r.mu.Unlock()

	for _, old := range closing {
		old.close()
	}
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	c, ok := r.clients[id]
	delete(r.clients, id)
	r.mu.Unlock()

	if ok {
		c.close()
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *registry) closeAll() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*client)
	r.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func clientID(r *http.Request) string {
	cookie, err := r.Cookie(clientCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

// liveClient returns the request's client if it has page state.
func (h *Handler) liveClient(r *http.Request, userID string) (*client, bool) {
	id := clientID(r)
	if id == "" {
		return nil, false
	}
	return h.clients.get(id, userID)
}

// pageClient returns the request's live client, or starts one. replay is
// only used by a new client.
func (h *Handler) pageClient(w http.ResponseWriter, r *http.Request, userID string, replay *optimistic.Replay) *client {
	if c, ok := h.liveClient(r, userID); ok {
		return c
	}

	id := clientID(r)
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     clientCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	c := h.newClient(id, userID, replay)
	h.clients.put(c)
	return c
}

func (h *Handler) newClient(id, userID string, replay *optimistic.Replay) *client {
	run := func(ctx context.Context, form url.Values) (any, error) {
		result, err := h.runAction(userID, form)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	opts := action.MultiOptions{Delay: h.actionDelay}
	creating := action.NewMulti(run, opts)
	acting := action.NewMulti(run, opts)
	return &client{
		id:       id,
		userID:   userID,
		creating: creating,
		acting:   acting,
		page:     optimistic.NewPage(creating, acting, replay),
	}
}

func (h *Handler) runAction(userID string, form url.Values) (action.Result, error) {
	if action.FormKind(form) == action.KindNewTodo {
		return action.NewTodo(h.store, userID, form)
	}
	return action.TodoAction(h.store, userID, form)
}

// waitSettled gives a submission a moment to settle, so a fast action
// redirects to its outcome rather than to a pending render.
func (h *Handler) waitSettled(ctx context.Context, sub *action.Submission) {
	if h.settleWait <= 0 {
		return
	}
	timer := time.NewTimer(h.settleWait)
	defer timer.Stop()

	select {
	case <-sub.Done():
	case <-timer.C:
	case <-ctx.Done():
	}
}
