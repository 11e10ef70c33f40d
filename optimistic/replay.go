package optimistic

import (
	"encoding/json"
	"errors"
	"net/url"
	"sort"

	"github.com/amonks/todomvc/action"
	"github.com/amonks/todomvc/internal/ids"
)

// Replay is a failed submission restored after a full page load, so its
// error can be shown again without losing what the user typed.
type Replay struct {
	Kind action.Kind
	ID   string
	Form url.Values
	Err  *action.FormError
}

type replayCarrier struct {
	Entries [][2]string   `json:"entries"`
	Error   *replayFailure `json:"error"`
}

type replayFailure struct {
	Message     string            `json:"message"`
	FormError   bool              `json:"formError,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// EncodeReplay serializes a failed submission for a redirect.
// Entries are written in field-name order.
func EncodeReplay(form url.Values, err error) (string, error) {
	names := make([]string, 0, len(form))
	for name := range form {
		names = append(names, name)
	}
	sort.Strings(names)

	carrier := replayCarrier{Entries: [][2]string{}}
	for _, name := range names {
		for _, value := range form[name] {
			carrier.Entries = append(carrier.Entries, [2]string{name, value})
		}
	}

	failure := &replayFailure{}
	if err != nil {
		failure.Message = err.Error()
	}
	var formErr *action.FormError
	if errors.As(err, &formErr) {
		failure.Message = formErr.Message
		failure.FormError = true
		failure.Fields = formErr.Fields
		failure.FieldErrors = formErr.FieldErrors
	}
	carrier.Error = failure

	encoded, marshalErr := json.Marshal(carrier)
	if marshalErr != nil {
		return "", marshalErr
	}
	return string(encoded), nil
}

// DecodeReplay restores a failed submission. Anything other than a form
// error on a newTodo or updateTodo with an ID is discarded.
func DecodeReplay(encoded string) (*Replay, bool) {
	if encoded == "" {
		return nil, false
	}

	var carrier replayCarrier
	if err := json.Unmarshal([]byte(encoded), &carrier); err != nil {
		return nil, false
	}
	if carrier.Error == nil || !carrier.Error.FormError {
		return nil, false
	}

	form := url.Values{}
	for _, entry := range carrier.Entries {
		form.Add(entry[0], entry[1])
	}

	kind := action.FormKind(form)
	if kind != action.KindNewTodo && kind != action.KindUpdateTodo {
		return nil, false
	}
	id := form.Get(action.FieldID)
	if id == "" {
		return nil, false
	}
	if kind == action.KindNewTodo {
		if _, ok := ids.ParseNewID(id); !ok {
			return nil, false
		}
	}

	return &Replay{
		Kind: kind,
		ID:   id,
		Form: form,
		Err: &action.FormError{
			Message:     carrier.Error.Message,
			Fields:      carrier.Error.Fields,
			FieldErrors: carrier.Error.FieldErrors,
		},
	}, true
}
