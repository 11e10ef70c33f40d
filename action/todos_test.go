package action

import (
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/todomvc/todo"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) (*todo.Store, todo.User) {
	t.Helper()

	store, err := todo.Open(filepath.Join(t.TempDir(), todo.DefaultFilename), todo.OpenOptions{
		NoSeed:     true,
		BcryptCost: bcrypt.MinCost,
		SaveDelay:  time.Hour,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	user, err := store.InsertUser("a@example.com", "password123")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return store, user
}

func form(pairs ...string) url.Values {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		values.Add(pairs[i], pairs[i+1])
	}
	return values
}

func requireFormError(t *testing.T, err error, message string) *FormError {
	t.Helper()

	var formErr *FormError
	if !errors.As(err, &formErr) {
		t.Fatalf("expected FormError, got %T: %v", err, err)
	}
	if formErr.Message != message {
		t.Fatalf("expected message %q, got %q", message, formErr.Message)
	}
	if formErr.FieldErrors[FieldTitle] != message {
		t.Fatalf("expected title field error %q, got %q", message, formErr.FieldErrors[FieldTitle])
	}
	return formErr
}

func requireServerError(t *testing.T, err error, message string, status int) {
	t.Helper()

	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %T: %v", err, err)
	}
	if serverErr.Message != message || serverErr.Status != status {
		t.Fatalf("expected %q/%d, got %q/%d", message, status, serverErr.Message, serverErr.Status)
	}
}

func TestNewTodo(t *testing.T) {
	store, user := newTestStore(t)

	result, err := NewTodo(store, user.ID, form("id", "NEW-5", "title", "Buy milk"))
	if err != nil {
		t.Fatalf("new todo: %v", err)
	}
	if result.Kind != KindNewTodo || result.ID != "NEW-5" {
		t.Fatalf("unexpected result: %+v", result)
	}

	todos, _, _ := store.SelectTodos(user.ID)
	if len(todos) != 1 || todos[0].Title != "Buy milk" {
		t.Fatalf("unexpected todos: %+v", todos)
	}
}

func TestNewTodo_Validation(t *testing.T) {
	store, user := newTestStore(t)

	_, err := NewTodo(store, user.ID, form("id", "NEW-5", "title", "   "))
	formErr := requireFormError(t, err, "Title required")
	if formErr.Fields[FieldKind] != "newTodo" || formErr.Fields[FieldID] != "NEW-5" {
		t.Fatalf("unexpected fields: %+v", formErr.Fields)
	}

	_, err = NewTodo(store, user.ID, form("id", "NEW-5", "title", "an error"))
	requireFormError(t, err, `Todos cannot include the word "error"`)

	_, err = NewTodo(store, user.ID, form("id", "5", "title", "ok"))
	requireServerError(t, err, "Invalid New ID", http.StatusBadRequest)

	_, err = NewTodo(store, user.ID, form("title", "ok"))
	requireServerError(t, err, "Invalid form data", http.StatusBadRequest)

	_, err = NewTodo(store, "missing", form("id", "NEW-5", "title", "ok"))
	requireServerError(t, err, "Invalid user ID", http.StatusUnauthorized)

	todos, _, _ := store.SelectTodos(user.ID)
	if len(todos) != 0 {
		t.Fatalf("expected no todos after failures, got %+v", todos)
	}
}

func TestNewTodo_DemoErrorCheckedFirst(t *testing.T) {
	store, user := newTestStore(t)

	_, err := NewTodo(store, user.ID, form("id", "NEW-5", "title", "error"))
	requireFormError(t, err, DemoTitleErrorMessage)
}

func TestTodoAction_UpdateTodo(t *testing.T) {
	store, user := newTestStore(t)
	created, _ := store.InsertTodo(user.ID, "Old")

	if _, err := TodoAction(store, user.ID, form("kind", "updateTodo", "id", created.ID, "title", "New")); err != nil {
		t.Fatalf("update: %v", err)
	}
	todos, _, _ := store.SelectTodos(user.ID)
	if todos[0].Title != "New" {
		t.Fatalf("expected New, got %q", todos[0].Title)
	}

	_, err := TodoAction(store, user.ID, form("kind", "updateTodo", "id", created.ID, "title", ""))
	formErr := requireFormError(t, err, "Title required")
	if formErr.Fields[FieldKind] != "updateTodo" {
		t.Fatalf("unexpected fields: %+v", formErr.Fields)
	}

	_, err = TodoAction(store, user.ID, form("kind", "updateTodo", "id", "missing", "title", "x"))
	requireServerError(t, err, "Todo not found", http.StatusNotFound)
}

func TestTodoAction_ToggleAndDelete(t *testing.T) {
	store, user := newTestStore(t)
	a, _ := store.InsertTodo(user.ID, "a")
	b, _ := store.InsertTodo(user.ID, "b")

	if _, err := TodoAction(store, user.ID, form("kind", "toggleTodo", "id", a.ID, "complete", "true")); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := TodoAction(store, user.ID, form("kind", "clearTodos")); err != nil {
		t.Fatalf("clear: %v", err)
	}
	todos, _, _ := store.SelectTodos(user.ID)
	if len(todos) != 1 || todos[0].ID != b.ID {
		t.Fatalf("expected only b to remain, got %+v", todos)
	}

	if _, err := TodoAction(store, user.ID, form("kind", "toggleAllTodos", "complete", "true")); err != nil {
		t.Fatalf("toggle all: %v", err)
	}
	todos, _, _ = store.SelectTodos(user.ID)
	if !todos[0].Complete {
		t.Fatal("expected b to be complete")
	}

	if _, err := TodoAction(store, user.ID, form("kind", "deleteTodo", "id", b.ID)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := TodoAction(store, user.ID, form("kind", "deleteTodo", "id", b.ID))
	requireServerError(t, err, "Todo not found", http.StatusNotFound)
	if !IsNotFound(err) {
		t.Fatal("expected IsNotFound")
	}
}

func TestTodoAction_InvalidForms(t *testing.T) {
	store, user := newTestStore(t)

	if _, err := TodoAction(store, user.ID, form("id", "x")); !errors.Is(err, ErrInvalidFormData) {
		t.Fatalf("expected ErrInvalidFormData for missing kind, got %v", err)
	}
	if _, err := TodoAction(store, user.ID, form("kind", "toggleTodo", "id", "x", "complete", "yes")); !errors.Is(err, ErrInvalidFormData) {
		t.Fatalf("expected ErrInvalidFormData for bad complete, got %v", err)
	}
	_, err := TodoAction(store, user.ID, form("kind", "bogus"))
	requireServerError(t, err, "Unsupported action kind: bogus", http.StatusBadRequest)

	_, err = TodoAction(store, "missing", form("kind", "clearTodos"))
	requireServerError(t, err, "Todo list not found", http.StatusNotFound)
}

func TestParseComplete(t *testing.T) {
	tests := []struct {
		value  string
		want   bool
		wantOK bool
	}{
		{value: "true", want: true, wantOK: true},
		{value: "false", want: false, wantOK: true},
		{value: "TRUE"},
		{value: ""},
	}

	for _, tt := range tests {
		got, ok := ParseComplete(form("complete", tt.value))
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseComplete(%q) = %v, %v; want %v, %v", tt.value, got, ok, tt.want, tt.wantOK)
		}
	}
}
