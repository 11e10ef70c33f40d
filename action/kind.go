// Package action defines the todo mutations a client can submit, the
// server-side functions that apply them, and the submission queue that
// runs them asynchronously.
package action

import "net/url"

// Kind names a todo mutation.
type Kind string

const (
	KindNewTodo        Kind = "newTodo"
	KindClearTodos     Kind = "clearTodos"
	KindDeleteTodo     Kind = "deleteTodo"
	KindToggleAllTodos Kind = "toggleAllTodos"
	KindToggleTodo     Kind = "toggleTodo"
	KindUpdateTodo     Kind = "updateTodo"
)

// Form field names.
const (
	FieldKind      = "kind"
	FieldID        = "id"
	FieldTitle     = "title"
	FieldCreatedAt = "created-at"
	FieldComplete  = "complete"
)

// TodoActionKinds are the kinds handled by TodoAction.
var TodoActionKinds = []Kind{
	KindClearTodos,
	KindDeleteTodo,
	KindToggleAllTodos,
	KindToggleTodo,
	KindUpdateTodo,
}

// IsTodoAction reports whether kind is handled by TodoAction.
func (kind Kind) IsTodoAction() bool {
	for _, k := range TodoActionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// FormKind returns the kind field of form.
func FormKind(form url.Values) Kind {
	return Kind(form.Get(FieldKind))
}

// FormValue returns a field and whether it was present at all.
func FormValue(form url.Values, name string) (string, bool) {
	values, ok := form[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// ParseComplete reads the complete field, which must be "true" or "false".
func ParseComplete(form url.Values) (complete bool, ok bool) {
	switch form.Get(FieldComplete) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// FormatComplete renders complete as a form value.
func FormatComplete(complete bool) string {
	if complete {
		return "true"
	}
	return "false"
}
