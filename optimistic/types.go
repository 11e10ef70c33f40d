// Package optimistic reconciles a user's authoritative todo list with
// submissions that have not been confirmed yet, so a page can show the
// expected outcome of every in-flight mutation immediately.
package optimistic

import (
	"fmt"
	"net/url"
	"time"

	"github.com/amonks/todomvc/action"
	"github.com/amonks/todomvc/todo"
)

// ToBe marks the unconfirmed change a View stands for.
type ToBe int

const (
	ToBeCreated ToBe = iota
	ToBeUnchanged
	ToBeUpdated
	ToBeDeleted
)

func (t ToBe) String() string {
	switch t {
	case ToBeCreated:
		return "created"
	case ToBeUnchanged:
		return "unchanged"
	case ToBeUpdated:
		return "updated"
	case ToBeDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("ToBe(%d)", int(t))
	}
}

// View is a todo as it should be presented.
// A View with ToBe == ToBeUnchanged mirrors a persisted todo.
type View struct {
	ID        string
	Title     string
	Complete  bool
	CreatedAt time.Time
	ToBe      ToBe
	// Message is a pending validation error, or "".
	Message string
}

// FromTodo projects a persisted todo.
func FromTodo(t todo.Todo) *View {
	return &View{
		ID:        t.ID,
		Title:     t.Title,
		Complete:  t.Complete,
		CreatedAt: t.CreatedAt,
		ToBe:      ToBeUnchanged,
	}
}

// FromTodos projects a persisted list.
func FromTodos(todos []todo.Todo) []*View {
	views := make([]*View, len(todos))
	for i, t := range todos {
		views[i] = FromTodo(t)
	}
	return views
}

// Clone returns a copy of v.
func (v *View) Clone() *View {
	cloned := *v
	return &cloned
}

// ActionsDisabled reports whether the item can't be acted on yet.
func (v *View) ActionsDisabled() bool {
	return v.ToBe == ToBeCreated || v.ToBe == ToBeDeleted
}

// Hidden reports whether the item is kept only for identity.
func (v *View) Hidden() bool {
	return v.ToBe == ToBeDeleted
}

// ToggleTo is the complete value a toggle submits.
func (v *View) ToggleTo() string {
	return action.FormatComplete(!v.Complete)
}

// ToggleTitle labels the toggle control.
func (v *View) ToggleTitle() string {
	if v.Complete {
		return "Mark as active"
	}
	return "Mark as complete"
}

// Phase is where a submission is in its lifecycle.
type Phase int

const (
	PhasePending Phase = iota
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// PhaseOf classifies a submission state.
func PhaseOf(state action.State) Phase {
	switch {
	case state.Settled && state.Err != nil:
		return PhaseFailed
	case state.Settled:
		return PhaseCompleted
	default:
		return PhasePending
	}
}

// Submissions is a collection of submissions of one action.
type Submissions interface {
	// Observe returns the current submissions and a revision that changes
	// whenever the collection or a submission's state changes.
	Observe() ([]action.Observation, uint64)
}

// UnhandledError is a failed submission that no handler accepted.
type UnhandledError struct {
	Kind  action.Kind
	Input url.Values
	Err   error
}

func (e *UnhandledError) Error() string {
	return fmt.Sprintf("unhandled %s failure: %v", e.Kind, e.Err)
}

func (e *UnhandledError) Unwrap() error {
	return e.Err
}
