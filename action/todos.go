package action

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/amonks/todomvc/internal/ids"
	"github.com/amonks/todomvc/todo"
)

// Store is the subset of the todo store the actions mutate.
type Store interface {
	InsertTodo(userID, title string) (todo.Todo, error)
	DeleteTodo(userID, id string) error
	DeleteCompleteTodos(userID string) (int, error)
	UpdateAllComplete(userID string, complete bool) (int, error)
	UpdateComplete(userID, id string, complete bool) error
	UpdateTitle(userID, id, title string) error
}

// Result is returned by a successful action.
type Result struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// NewTodo validates a newTodo form and inserts the todo.
// The submitted id is the client's draft ID and is only validated.
func NewTodo(store Store, userID string, form url.Values) (Result, error) {
	id, hasID := FormValue(form, FieldID)
	title, hasTitle := FormValue(form, FieldTitle)
	if !hasID || !hasTitle {
		return Result{}, NewServerError("Invalid form data", 0)
	}

	if message := ids.ValidateNewID(id); message != "" {
		return Result{}, NewServerError(message, 0)
	}
	if err := checkTitle(KindNewTodo, id, title); err != nil {
		return Result{}, err
	}

	if _, err := store.InsertTodo(userID, title); err != nil {
		if errors.Is(err, todo.ErrUserNotFound) {
			return Result{}, NewServerError("Invalid user ID", http.StatusUnauthorized)
		}
		return Result{}, err
	}
	return Result{Kind: KindNewTodo, ID: id}, nil
}

// TodoAction dispatches a form to the action named by its kind field.
func TodoAction(store Store, userID string, form url.Values) (Result, error) {
	kind, hasKind := FormValue(form, FieldKind)
	if !hasKind {
		return Result{}, ErrInvalidFormData
	}

	switch Kind(kind) {
	case KindClearTodos:
		return clearTodos(store, userID)
	case KindDeleteTodo:
		return deleteTodo(store, userID, form)
	case KindToggleAllTodos:
		return toggleAllTodos(store, userID, form)
	case KindToggleTodo:
		return toggleTodo(store, userID, form)
	case KindUpdateTodo:
		return updateTodo(store, userID, form)
	default:
		return Result{}, NewServerError(fmt.Sprintf("Unsupported action kind: %s", kind), 0)
	}
}

func clearTodos(store Store, userID string) (Result, error) {
	if _, err := store.DeleteCompleteTodos(userID); err != nil {
		return Result{}, listError(err)
	}
	return Result{Kind: KindClearTodos, ID: string(KindClearTodos)}, nil
}

func deleteTodo(store Store, userID string, form url.Values) (Result, error) {
	id, ok := FormValue(form, FieldID)
	if !ok {
		return Result{}, NewServerError("Invalid Form Data", 0)
	}

	if err := store.DeleteTodo(userID, id); err != nil {
		return Result{}, itemError(err)
	}
	return Result{Kind: KindDeleteTodo, ID: id}, nil
}

func toggleAllTodos(store Store, userID string, form url.Values) (Result, error) {
	complete, ok := ParseComplete(form)
	if !ok {
		return Result{}, ErrInvalidFormData
	}

	if _, err := store.UpdateAllComplete(userID, complete); err != nil {
		return Result{}, listError(err)
	}
	return Result{Kind: KindToggleAllTodos, ID: string(KindToggleAllTodos)}, nil
}

func toggleTodo(store Store, userID string, form url.Values) (Result, error) {
	id, hasID := FormValue(form, FieldID)
	complete, ok := ParseComplete(form)
	if !hasID || !ok {
		return Result{}, ErrInvalidFormData
	}

	if err := store.UpdateComplete(userID, id, complete); err != nil {
		return Result{}, itemError(err)
	}
	return Result{Kind: KindToggleTodo, ID: id}, nil
}

func updateTodo(store Store, userID string, form url.Values) (Result, error) {
	id, hasID := FormValue(form, FieldID)
	title, hasTitle := FormValue(form, FieldTitle)
	if !hasID || !hasTitle {
		return Result{}, NewServerError("Invalid form data", 0)
	}

	if err := checkTitle(KindUpdateTodo, id, title); err != nil {
		return Result{}, err
	}

	if err := store.UpdateTitle(userID, id, title); err != nil {
		return Result{}, itemError(err)
	}
	return Result{Kind: KindUpdateTodo, ID: id}, nil
}

func listError(err error) error {
	if errors.Is(err, todo.ErrUserNotFound) {
		return NewServerError("Todo list not found", http.StatusNotFound)
	}
	return err
}

func itemError(err error) error {
	if errors.Is(err, todo.ErrUserNotFound) || errors.Is(err, todo.ErrTodoNotFound) {
		return NewServerError("Todo not found", http.StatusNotFound)
	}
	return err
}
