package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/amonks/todomvc/action"
	"github.com/amonks/todomvc/optimistic"
	"github.com/amonks/todomvc/todo"
)

type todosData struct {
	Email   string
	Action  string
	Filter  optimistic.Filter
	Draft   *optimistic.Draft
	Counts  optimistic.Counts
	Items   []*optimistic.View
	Filters []filterLink
	Refresh bool
}

type filterLink struct {
	Href     string
	Label    string
	Selected bool
}

var filterLabels = map[optimistic.Filter]string{
	optimistic.FilterAll:      "All",
	optimistic.FilterActive:   "Active",
	optimistic.FilterComplete: "Completed",
}

func filterLinks(selected optimistic.Filter) []filterLink {
	links := make([]filterLink, 0, len(optimistic.Filters))
	for _, filter := range optimistic.Filters {
		links = append(links, filterLink{
			Href:     filterHref(filter),
			Label:    filterLabels[filter],
			Selected: filter == selected,
		})
	}
	return links
}

func (h *Handler) handleTodos(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, loginHref(r.URL.Path), http.StatusFound)
		return
	}
	filter, ok := requestFilter(r)
	if !ok {
		http.Redirect(w, r, todosHref, http.StatusFound)
		return
	}

	replay, _ := optimistic.DecodeReplay(r.URL.Query().Get(failedParam))
	c := h.pageClient(w, r, user.ID, replay)

	c.mu.Lock()
	defer c.mu.Unlock()

	todos, revision, err := h.store.SelectTodos(user.ID)
	if err != nil {
		if errors.Is(err, todo.ErrUserNotFound) {
			h.sessions.Logout(w)
			http.Redirect(w, r, loginHref(r.URL.Path), http.StatusFound)
			return
		}
		h.renderError(w, r, err)
		return
	}

	snapshot, err := c.page.Render(&optimistic.ServerList{Todos: todos, Revision: revision}, filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if h.debugReconcile && !snapshot.Changes.Empty() {
		h.logf("client %s %s:\n%s", c.id[:8], r.URL.Path, snapshot.Changes)
	}

	h.render(w, http.StatusOK, "todos", todosData{
		Email:   user.Email,
		Action:  r.URL.Path,
		Filter:  filter,
		Draft:   snapshot.ShowDraft,
		Counts:  snapshot.Counts,
		Items:   snapshot.Items,
		Filters: filterLinks(filter),
		Refresh: snapshot.Pending > 0,
	})
}

// handleTodosPost queues a todo action on the client's page. A client
// without page state runs the action directly and carries a form error
// to the next render in the failed query parameter.
func (h *Handler) handleTodosPost(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, loginHref(r.URL.Path), http.StatusSeeOther)
		return
	}
	if _, ok := requestFilter(r); !ok {
		http.Redirect(w, r, todosHref, http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, action.NewServerError("Invalid form data", http.StatusBadRequest))
		return
	}

	form := r.PostForm
	kind := action.FormKind(form)
	switch {
	case kind == action.KindNewTodo:
		if form.Get(action.FieldCreatedAt) == "" {
			form.Set(action.FieldCreatedAt, optimistic.FormatCreatedAt(h.now()))
		}
	case !kind.IsTodoAction():
		h.renderError(w, r, action.NewServerError(fmt.Sprintf("Unsupported action kind: %s", kind), http.StatusBadRequest))
		return
	}

	target := r.URL.Path
	if c, ok := h.liveClient(r, user.ID); ok {
		h.waitSettled(r.Context(), c.submit(form))
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	_, err := h.runAction(user.ID, form)
	var formErr *action.FormError
	switch {
	case err == nil:
	case errors.As(err, &formErr):
		encoded, encodeErr := optimistic.EncodeReplay(form, err)
		if encodeErr != nil {
			h.renderError(w, r, encodeErr)
			return
		}
		target += "?" + url.Values{failedParam: {encoded}}.Encode()
	case kind == action.KindDeleteTodo && action.IsNotFound(err):
	default:
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
