package optimistic

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/amonks/todomvc/action"
	"github.com/amonks/todomvc/internal/ids"
)

func newTodoForm(id, title string, createdAt int64) url.Values {
	return form("kind", "newTodo", "id", id, "title", title, "created-at", FormatCreatedAt(time.UnixMilli(createdAt)))
}

func TestDrafts_StartsWithFreshDraft(t *testing.T) {
	drafts := NewDrafts(nil)

	current := drafts.Current()
	if current.ShowDraft == nil {
		t.Fatal("expected a current draft")
	}
	if _, ok := ids.ParseNewID(current.ShowDraft.ID); !ok {
		t.Fatalf("expected a new ID, got %q", current.ShowDraft.ID)
	}
	if len(current.ToBe) != 0 {
		t.Fatalf("expected no created views, got %d", len(current.ToBe))
	}
}

func TestDrafts_PendingAddsCreatedViewAndNewDraft(t *testing.T) {
	drafts := NewDrafts(nil)
	first := drafts.Current()
	id := first.ShowDraft.ID

	if !drafts.Apply(PhasePending, newTodoForm(id, "Buy milk", 1000), nil) {
		t.Fatal("expected pending to be handled")
	}

	current := drafts.Current()
	if current.ShowDraft == first.ShowDraft {
		t.Fatal("expected a new current draft")
	}
	if current.ShowDraft.ID == id {
		t.Fatal("expected the new draft to have a new ID")
	}
	if len(current.ToBe) != 1 {
		t.Fatalf("expected 1 created view, got %d", len(current.ToBe))
	}
	view := current.ToBe[0]
	if view.ID != id || view.Title != "Buy milk" || view.ToBe != ToBeCreated || view.Complete {
		t.Fatalf("unexpected view: %+v", view)
	}
	if !view.CreatedAt.Equal(time.UnixMilli(1000)) {
		t.Fatalf("unexpected created at: %v", view.CreatedAt)
	}
	if current.Equal(first) {
		t.Fatal("expected current to differ")
	}
}

func TestDrafts_PendingIsIdempotent(t *testing.T) {
	drafts := NewDrafts(nil)
	id := drafts.Current().ShowDraft.ID
	submitted := newTodoForm(id, "Buy milk", 1000)

	drafts.Apply(PhasePending, submitted, nil)
	before := drafts.Current()

	if drafts.Apply(PhasePending, submitted, nil) {
		t.Fatal("expected repeated pending to be a no-op")
	}
	if !drafts.Current().Equal(before) {
		t.Fatal("expected current to be unchanged")
	}
}

func TestDrafts_PendingUnknownID(t *testing.T) {
	drafts := NewDrafts(nil)
	before := drafts.Current()

	if drafts.Apply(PhasePending, newTodoForm("NEW-1", "x", 1), nil) {
		t.Fatal("expected unknown draft to be unhandled")
	}
	if !drafts.Current().Equal(before) {
		t.Fatal("expected no change")
	}
}

func TestDrafts_PendingMalformedTimestamp(t *testing.T) {
	drafts := NewDrafts(nil)
	first := drafts.Current().ShowDraft
	submitted := form("kind", "newTodo", "id", first.ID, "title", "x", "created-at", "soon")

	if drafts.Apply(PhasePending, submitted, nil) {
		t.Fatal("expected malformed timestamp to be unhandled")
	}
	current := drafts.Current()
	if len(current.ToBe) != 0 {
		t.Fatalf("expected no created view, got %d", len(current.ToBe))
	}
	if current.ShowDraft == first {
		t.Fatal("expected a fresh draft even when the view can't be built")
	}
}

func TestDrafts_CompletedRetiresDraft(t *testing.T) {
	drafts := NewDrafts(nil)
	id := drafts.Current().ShowDraft.ID
	submitted := newTodoForm(id, "Buy milk", 1000)
	drafts.Apply(PhasePending, submitted, nil)

	if !drafts.Apply(PhaseCompleted, submitted, nil) {
		t.Fatal("expected completed to be handled")
	}

	current := drafts.Current()
	if len(current.ToBe) != 0 {
		t.Fatalf("expected created view to be removed, got %d", len(current.ToBe))
	}
	if current.ShowDraft.ID == id {
		t.Fatal("expected retired draft not to be shown")
	}
	if drafts.Apply(PhasePending, submitted, nil) {
		t.Fatal("expected retired draft to be unknown")
	}
}

func TestDrafts_CompletedBeforePendingObserved(t *testing.T) {
	drafts := NewDrafts(nil)
	first := drafts.Current().ShowDraft

	if !drafts.Apply(PhaseCompleted, newTodoForm(first.ID, "fast", 1), nil) {
		t.Fatal("expected completed to be handled")
	}
	current := drafts.Current()
	if current.ShowDraft == nil || current.ShowDraft == first {
		t.Fatal("expected a replacement current draft")
	}
}

func TestDrafts_FailedThenCorrected(t *testing.T) {
	drafts := NewDrafts(nil)
	id := drafts.Current().ShowDraft.ID
	bad := newTodoForm(id, "an error", 1000)
	drafts.Apply(PhasePending, bad, nil)

	failure := titleError(action.KindNewTodo, id, "an error", action.DemoTitleErrorMessage)
	if !drafts.Apply(PhaseFailed, bad, failure) {
		t.Fatal("expected failed to be handled")
	}

	current := drafts.Current()
	if current.ShowDraft.ID != id {
		t.Fatalf("expected failed draft %s to be shown, got %s", id, current.ShowDraft.ID)
	}
	if current.ShowDraft.Message != action.DemoTitleErrorMessage {
		t.Fatalf("unexpected message %q", current.ShowDraft.Message)
	}
	if current.ShowDraft.Title != "an error" {
		t.Fatalf("expected failed title to be kept, got %q", current.ShowDraft.Title)
	}
	if len(current.ToBe) != 0 {
		t.Fatalf("expected created view to be dropped, got %d", len(current.ToBe))
	}

	if !drafts.Apply(PhasePending, newTodoForm(id, "fixed", 2000), nil) {
		t.Fatal("expected corrected pending to be handled")
	}
	current = drafts.Current()
	if current.ShowDraft.ID == id {
		t.Fatal("expected the failed draft to leave the editor")
	}
	if len(current.ToBe) != 1 || current.ToBe[0].Title != "fixed" {
		t.Fatalf("expected reinstated created view, got %+v", current.ToBe)
	}
	for _, view := range current.ToBe {
		if view.Message != "" {
			t.Fatalf("expected message to be cleared, got %q", view.Message)
		}
	}
}

func TestDrafts_DoubleFailureUpdatesMessage(t *testing.T) {
	drafts := NewDrafts(nil)
	id := drafts.Current().ShowDraft.ID
	submitted := newTodoForm(id, "", 1000)
	drafts.Apply(PhasePending, submitted, nil)
	drafts.Apply(PhaseFailed, submitted, titleError(action.KindNewTodo, id, "", "first"))

	if !drafts.Apply(PhaseFailed, submitted, &action.FormError{}) {
		t.Fatal("expected second failure to be handled")
	}
	if got := drafts.Current().ShowDraft.Message; got != "Todo title error" {
		t.Fatalf("expected default message, got %q", got)
	}
}

func TestDrafts_FailedIgnoresOtherErrors(t *testing.T) {
	drafts := NewDrafts(nil)
	id := drafts.Current().ShowDraft.ID
	submitted := newTodoForm(id, "x", 1000)
	drafts.Apply(PhasePending, submitted, nil)

	if drafts.Apply(PhaseFailed, submitted, errors.New("boom")) {
		t.Fatal("expected non-form error to be unhandled")
	}
	if drafts.Apply(PhaseFailed, submitted, action.NewServerError("Invalid New ID", 0)) {
		t.Fatal("expected server error to be unhandled")
	}
}

func TestDrafts_FailedRetiredDraftIsRestored(t *testing.T) {
	drafts := NewDrafts(nil)
	id := drafts.Current().ShowDraft.ID
	drafts.Apply(PhasePending, newTodoForm(id, "Buy eggs", 1000), nil)
	drafts.Apply(PhaseCompleted, newTodoForm(id, "Buy eggs", 1000), nil)

	resubmitted := newTodoForm(id, "an error", 2000)
	failure := titleError(action.KindNewTodo, id, "an error", action.DemoTitleErrorMessage)
	if !drafts.Apply(PhaseFailed, resubmitted, failure) {
		t.Fatal("expected failure of a retired draft to be handled")
	}

	shown := drafts.Current().ShowDraft
	if shown.ID != id || shown.Title != "an error" || shown.Message != action.DemoTitleErrorMessage {
		t.Fatalf("unexpected draft: %+v", shown)
	}

	if !drafts.Apply(PhasePending, newTodoForm(id, "Buy bread", 3000), nil) {
		t.Fatal("expected the restored draft to be resubmittable")
	}
	if drafts.Current().ShowDraft.ID == id {
		t.Fatal("expected the restored draft to leave the editor")
	}
}

func TestDrafts_FailedMalformedIDIsUnhandled(t *testing.T) {
	drafts := NewDrafts(nil)
	submitted := newTodoForm("NEW-0", "an error", 1000)
	failure := titleError(action.KindNewTodo, "NEW-0", "an error", action.DemoTitleErrorMessage)

	if drafts.Apply(PhaseFailed, submitted, failure) {
		t.Fatal("expected malformed id to be unhandled")
	}
}

func TestParseCreatedAt(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{value: "1000", want: 1000, ok: true},
		{value: "1000.7", want: 1000, ok: true},
		{value: "-5", want: -5, ok: true},
		{value: "", ok: false},
		{value: "soon", ok: false},
		{value: "NaN", ok: false},
		{value: "Inf", ok: false},
		{value: "1e300", ok: false},
		{value: "-1e300", ok: false},
		{value: "9223372036854775808", ok: false},
	}

	for _, tt := range tests {
		got, ok := parseCreatedAt(tt.value)
		if ok != tt.ok {
			t.Fatalf("parseCreatedAt(%q) ok = %v, want %v", tt.value, ok, tt.ok)
		}
		if ok && got.UnixMilli() != tt.want {
			t.Fatalf("parseCreatedAt(%q) = %d, want %d", tt.value, got.UnixMilli(), tt.want)
		}
	}
}

func TestDrafts_OldestFailureShownFirst(t *testing.T) {
	drafts := NewDrafts(nil)

	first := drafts.Current().ShowDraft.ID
	firstForm := newTodoForm(first, "error one", 1)
	drafts.Apply(PhasePending, firstForm, nil)

	second := drafts.Current().ShowDraft.ID
	secondForm := newTodoForm(second, "error two", 2)
	drafts.Apply(PhasePending, secondForm, nil)

	drafts.Apply(PhaseFailed, secondForm, titleError(action.KindNewTodo, second, "error two", "two"))
	drafts.Apply(PhaseFailed, firstForm, titleError(action.KindNewTodo, first, "error one", "one"))

	if got := drafts.Current().ShowDraft.ID; got != second {
		t.Fatalf("expected first failure %s to be shown, got %s", second, got)
	}

	drafts.Apply(PhasePending, newTodoForm(second, "fixed two", 3), nil)
	if got := drafts.Current().ShowDraft.ID; got != first {
		t.Fatalf("expected next failure %s to be shown, got %s", first, got)
	}

	drafts.Apply(PhasePending, newTodoForm(first, "fixed one", 4), nil)
	shown := drafts.Current().ShowDraft.ID
	if shown == first || shown == second {
		t.Fatalf("expected the live draft to be shown, got %s", shown)
	}
}

func TestDrafts_ToBeSliceIsReplaced(t *testing.T) {
	drafts := NewDrafts(nil)
	id := drafts.Current().ShowDraft.ID
	drafts.Apply(PhasePending, newTodoForm(id, "a", 1), nil)
	before := drafts.Current().ToBe

	next := drafts.Current().ShowDraft.ID
	drafts.Apply(PhasePending, newTodoForm(next, "b", 2), nil)

	if len(before) != 1 {
		t.Fatalf("expected earlier slice to be untouched, got %d", len(before))
	}
	if got := len(drafts.Current().ToBe); got != 2 {
		t.Fatalf("expected 2 created views, got %d", got)
	}
}

func TestDrafts_Replay(t *testing.T) {
	replayForm := form("kind", "newTodo", "id", "NEW-42", "title", "an error", "created-at", "1000")
	replay := &Replay{
		Kind: action.KindNewTodo,
		ID:   "NEW-42",
		Form: replayForm,
		Err:  titleError(action.KindNewTodo, "NEW-42", "an error", action.DemoTitleErrorMessage),
	}
	drafts := NewDrafts(replay)
	drafts.ApplyReplay()

	current := drafts.Current()
	if current.ShowDraft.ID != "NEW-42" || current.ShowDraft.Message != action.DemoTitleErrorMessage {
		t.Fatalf("expected replayed failure to be shown, got %+v", current.ShowDraft)
	}
	if current.ShowDraft.Title != "an error" {
		t.Fatalf("expected replayed title, got %q", current.ShowDraft.Title)
	}
	if len(current.ToBe) != 0 {
		t.Fatalf("expected no created views, got %d", len(current.ToBe))
	}

	// The live draft continues below the replayed ID.
	drafts.Apply(PhasePending, newTodoForm("NEW-42", "fixed", 2000), nil)
	if got := drafts.Current().ShowDraft.ID; got != "NEW-41" {
		t.Fatalf("expected live draft NEW-41, got %s", got)
	}

	drafts.ApplyReplay()
	if got := len(drafts.Current().ToBe); got != 1 {
		t.Fatalf("expected second ApplyReplay to do nothing, got %d created views", got)
	}
}
