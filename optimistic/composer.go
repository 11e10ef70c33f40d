package optimistic

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/amonks/todomvc/action"
)

// ErrUnknownKind is returned by Composer.Apply for a kind it has no
// handlers for.
var ErrUnknownKind = errors.New("unknown action kind")

type handler func(c *Composer, form url.Values, err error) bool

// composeHandlers defines the optimistic effect of each todo action.
// A phase missing from a kind's table is unhandled.
var composeHandlers = map[action.Kind]map[Phase]handler{
	action.KindClearTodos: {
		PhasePending: (*Composer).clearTodosPending,
	},
	action.KindDeleteTodo: {
		PhasePending: (*Composer).deleteTodoPending,
		PhaseFailed:  (*Composer).deleteTodoFailed,
	},
	action.KindToggleAllTodos: {
		PhasePending: (*Composer).toggleAllTodosPending,
	},
	action.KindToggleTodo: {
		PhasePending: (*Composer).toggleTodoPending,
	},
	action.KindUpdateTodo: {
		PhasePending:   (*Composer).updateTodoPending,
		PhaseCompleted: (*Composer).updateTodoCompleted,
		PhaseFailed:    (*Composer).updateTodoFailed,
	},
}

type updateError struct {
	title   string
	message string
}

// Composer applies pending todo actions on top of a loaded list.
//
// The index is rebuilt by every Load; failed title updates are kept
// across loads and laid over the list by ApplyErrors.
type Composer struct {
	order        []string
	index        map[string]*View
	updateErrors map[string]updateError

	replay *Replay
}

// NewComposer returns an empty composer. When replay carries a failed
// updateTodo, ApplyReplay restores its error once the todo is loaded.
func NewComposer(replay *Replay) *Composer {
	c := &Composer{
		index:        make(map[string]*View),
		updateErrors: make(map[string]updateError),
	}
	if replay != nil && replay.Kind == action.KindUpdateTodo {
		c.replay = replay
	}
	return c
}

// Load replaces the working set with clones of views, in order.
// When an ID repeats, the first view wins.
func (c *Composer) Load(views []*View) {
	c.order = c.order[:0]
	clear(c.index)
	for _, view := range views {
		if _, ok := c.index[view.ID]; ok {
			continue
		}
		c.order = append(c.order, view.ID)
		c.index[view.ID] = view.Clone()
	}
}

// ApplyReplay applies the replayed failure to the loaded list. It is
// dropped if its todo is not in the list. Later calls do nothing.
func (c *Composer) ApplyReplay() {
	if c.replay == nil {
		return
	}
	replay := c.replay
	c.replay = nil
	c.Apply(PhaseFailed, replay.Form, replay.Err)
}

// Apply runs the handler for the form's kind and phase, and reports
// whether the submission was handled. Kinds without handlers are errors.
func (c *Composer) Apply(phase Phase, form url.Values, err error) (bool, error) {
	kind := action.FormKind(form)
	phases, ok := composeHandlers[kind]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	fn, ok := phases[phase]
	if !ok {
		return false, nil
	}
	return fn(c, form, err), nil
}

// ApplyErrors lays cached update failures over the working set and
// forgets failures for todos that are gone.
func (c *Composer) ApplyErrors() {
	for id, cached := range c.updateErrors {
		view, ok := c.index[id]
		if !ok {
			delete(c.updateErrors, id)
			continue
		}
		view.Title = cached.title
		view.Message = cached.message
	}
}

// Result returns the working set in load order.
func (c *Composer) Result() []*View {
	views := make([]*View, 0, len(c.order))
	for _, id := range c.order {
		views = append(views, c.index[id])
	}
	return views
}

func (c *Composer) clearTodosPending(form url.Values, err error) bool {
	for _, id := range c.order {
		view := c.index[id]
		if !view.Complete || view.ToBe != ToBeUnchanged {
			continue
		}
		view.ToBe = ToBeDeleted
	}
	return true
}

func (c *Composer) deleteTodoPending(form url.Values, err error) bool {
	id, ok := action.FormValue(form, action.FieldID)
	if !ok {
		return false
	}
	if view, ok := c.index[id]; ok {
		view.ToBe = ToBeDeleted
	}
	return true
}

// deleteTodoFailed accepts not-found failures: the todo is gone either way.
func (c *Composer) deleteTodoFailed(form url.Values, err error) bool {
	return action.IsNotFound(err)
}

func (c *Composer) toggleAllTodosPending(form url.Values, err error) bool {
	complete, ok := action.ParseComplete(form)
	if !ok {
		return false
	}
	for _, id := range c.order {
		view := c.index[id]
		if view.Complete == complete || view.ToBe == ToBeDeleted {
			continue
		}
		view.Complete = complete
	}
	return true
}

func (c *Composer) toggleTodoPending(form url.Values, err error) bool {
	id, hasID := action.FormValue(form, action.FieldID)
	complete, ok := action.ParseComplete(form)
	if !hasID || !ok {
		return false
	}
	if view, ok := c.index[id]; ok {
		view.Complete = complete
	}
	return true
}

func (c *Composer) updateTodoPending(form url.Values, err error) bool {
	id, hasID := action.FormValue(form, action.FieldID)
	title, hasTitle := action.FormValue(form, action.FieldTitle)
	if !hasID || !hasTitle {
		return false
	}

	delete(c.updateErrors, id)
	view, ok := c.index[id]
	if !ok {
		return false
	}
	view.Title = title
	view.ToBe = ToBeUpdated
	return true
}

func (c *Composer) updateTodoCompleted(form url.Values, err error) bool {
	id, ok := action.FormValue(form, action.FieldID)
	if !ok {
		return false
	}
	delete(c.updateErrors, id)
	return true
}

// updateTodoFailed caches the failure instead of editing the view, so it
// survives the next Load and is restored by ApplyErrors.
func (c *Composer) updateTodoFailed(form url.Values, err error) bool {
	var formErr *action.FormError
	if !errors.As(err, &formErr) {
		return false
	}
	id, hasID := action.FormValue(form, action.FieldID)
	title, hasTitle := action.FormValue(form, action.FieldTitle)
	if !hasID || !hasTitle {
		return false
	}
	if _, ok := c.index[id]; !ok {
		return false
	}

	c.updateErrors[id] = updateError{title: title, message: formErr.DisplayMessage()}
	return true
}
