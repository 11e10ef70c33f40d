package optimistic

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/amonks/todomvc/action"
)

func TestReplay_RoundTrip(t *testing.T) {
	submitted := form("kind", "updateTodo", "id", "t1", "title", "error")
	failure := titleError(action.KindUpdateTodo, "t1", "error", action.DemoTitleErrorMessage)

	encoded, err := EncodeReplay(submitted, failure)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(encoded, `{"entries":[["id","t1"],["kind","updateTodo"],["title","error"]]`) {
		t.Fatalf("expected entries in field order, got %s", encoded)
	}

	replay, ok := DecodeReplay(encoded)
	if !ok {
		t.Fatal("expected replay to decode")
	}
	if replay.Kind != action.KindUpdateTodo || replay.ID != "t1" {
		t.Fatalf("unexpected replay: %+v", replay)
	}
	if replay.Form.Get("title") != "error" {
		t.Fatalf("expected form to be restored, got %v", replay.Form)
	}
	if replay.Err.Message != action.DemoTitleErrorMessage {
		t.Fatalf("unexpected message %q", replay.Err.Message)
	}
	if replay.Err.FieldErrors[action.FieldTitle] != action.DemoTitleErrorMessage {
		t.Fatalf("expected field errors, got %v", replay.Err.FieldErrors)
	}
}

func TestReplay_NewTodo(t *testing.T) {
	submitted := form("kind", "newTodo", "id", "NEW-12", "title", "", "created-at", "1700000000000")
	encoded, err := EncodeReplay(submitted, titleError(action.KindNewTodo, "NEW-12", "", action.TitleRequiredMessage))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	replay, ok := DecodeReplay(encoded)
	if !ok {
		t.Fatal("expected replay to decode")
	}
	if replay.Kind != action.KindNewTodo || replay.ID != "NEW-12" {
		t.Fatalf("unexpected replay: %+v", replay)
	}
}

func TestReplay_Discarded(t *testing.T) {
	formErr := func(kind action.Kind, id string) error {
		return titleError(kind, id, "x", "bad")
	}
	encode := func(submitted map[string][]string, err error) string {
		encoded, encodeErr := EncodeReplay(submitted, err)
		if encodeErr != nil {
			t.Fatalf("encode: %v", encodeErr)
		}
		return encoded
	}

	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "malformed", encoded: "{not json"},
		{name: "no error", encoded: `{"entries":[["kind","updateTodo"],["id","t1"]]}`},
		{name: "server error", encoded: encode(form("kind", "updateTodo", "id", "t1"), action.NewServerError("Not found", http.StatusNotFound))},
		{name: "plain error", encoded: encode(form("kind", "updateTodo", "id", "t1"), errors.New("boom"))},
		{name: "other kind", encoded: encode(form("kind", "deleteTodo", "id", "t1"), formErr(action.KindDeleteTodo, "t1"))},
		{name: "missing id", encoded: encode(form("kind", "updateTodo", "title", "x"), formErr(action.KindUpdateTodo, ""))},
		{name: "persisted id for newTodo", encoded: encode(form("kind", "newTodo", "id", "t1"), formErr(action.KindNewTodo, "t1"))},
		{name: "zero new id", encoded: encode(form("kind", "newTodo", "id", "NEW-0"), formErr(action.KindNewTodo, "NEW-0"))},
	}

	for _, tt := range tests {
		if replay, ok := DecodeReplay(tt.encoded); ok {
			t.Fatalf("%s: expected replay to be discarded, got %+v", tt.name, replay)
		}
	}
}
