package optimistic

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/amonks/todomvc/action"
	"github.com/amonks/todomvc/internal/ids"
)

// Draft is a todo being written in the new-todo editor.
type Draft struct {
	ID      string
	Title   string
	Message string
}

type draftEntry struct {
	draft *Draft
	// view is the created-view shown while the draft's submission is pending.
	view *View
}

// Drafts tracks new-todo drafts from editing through confirmation.
//
// Exactly one draft is current. A draft whose submission is pending
// projects into a View with ToBe == ToBeCreated; a draft whose submission
// failed keeps its title and message and takes precedence in the editor.
type Drafts struct {
	gen     *ids.Generator
	current *Draft
	entries map[string]*draftEntry
	failed  []*Draft

	toBe    []*View
	toBeGen uint64

	replay *Replay
}

// NewDrafts returns a tracker with a fresh current draft. When replay
// carries a failed newTodo, its draft is restored with the same ID and
// its failure is applied by the first ApplyReplay.
func NewDrafts(replay *Replay) *Drafts {
	d := &Drafts{entries: make(map[string]*draftEntry)}

	if replay != nil && replay.Kind == action.KindNewTodo {
		d.gen = ids.NewGenerator(replay.ID)
		d.install(replay.ID)
		d.replay = replay
		return d
	}

	d.gen = ids.NewGenerator("")
	d.install(d.gen.Next())
	return d
}

func (d *Drafts) install(id string) {
	draft := &Draft{ID: id}
	d.entries[id] = &draftEntry{draft: draft}
	d.current = draft
}

// ApplyReplay re-applies a replayed failure as pending then failed.
// Later calls do nothing.
func (d *Drafts) ApplyReplay() {
	if d.replay == nil {
		return
	}
	replay := d.replay
	d.replay = nil

	d.Apply(PhasePending, replay.Form, nil)
	d.Apply(PhaseFailed, replay.Form, replay.Err)
}

// Apply updates the tracker for one newTodo submission in phase and
// reports whether it was handled.
func (d *Drafts) Apply(phase Phase, form url.Values, err error) bool {
	id, ok := action.FormValue(form, action.FieldID)
	if !ok {
		return false
	}

	switch phase {
	case PhasePending:
		return d.pending(id, form)
	case PhaseCompleted:
		return d.completed(id)
	case PhaseFailed:
		return d.failedSubmission(id, form, err)
	default:
		return false
	}
}

func (d *Drafts) pending(id string, form url.Values) bool {
	entry := d.entries[id]
	if entry == nil || entry.view != nil {
		return false
	}

	d.removeFailed(entry.draft)
	if entry.draft == d.current {
		d.install(d.gen.Next())
	}

	title, hasTitle := action.FormValue(form, action.FieldTitle)
	createdAt, validTime := parseCreatedAt(form.Get(action.FieldCreatedAt))
	if !hasTitle || !validTime {
		return false
	}

	entry.draft.Title = title
	entry.view = &View{
		ID:        id,
		Title:     title,
		CreatedAt: createdAt,
		ToBe:      ToBeCreated,
	}
	d.setToBe(append(d.toBe[:len(d.toBe):len(d.toBe)], entry.view))
	return true
}

func (d *Drafts) completed(id string) bool {
	entry := d.entries[id]
	if entry == nil {
		return false
	}

	d.removeView(entry)
	d.removeFailed(entry.draft)
	delete(d.entries, id)
	if entry.draft == d.current {
		d.install(d.gen.Next())
	}
	return true
}

func (d *Drafts) failedSubmission(id string, form url.Values, err error) bool {
	var formErr *action.FormError
	if !errors.As(err, &formErr) {
		return false
	}
	entry := d.entries[id]
	if entry == nil {
		// Another tab of the same browser may resubmit a retired draft.
		if _, ok := ids.ParseNewID(id); !ok {
			return false
		}
		entry = &draftEntry{draft: &Draft{ID: id}}
		d.entries[id] = entry
	}

	if title, ok := action.FormValue(form, action.FieldTitle); ok {
		entry.draft.Title = title
	}

	message := formErr.DisplayMessage()
	if d.isFailed(entry.draft) {
		entry.draft.Message = message
		return true
	}

	d.removeView(entry)
	entry.draft.Message = message
	d.failed = append(d.failed, entry.draft)
	return true
}

func (d *Drafts) isFailed(draft *Draft) bool {
	for _, failed := range d.failed {
		if failed == draft {
			return true
		}
	}
	return false
}

// removeFailed clears draft's failure. The oldest remaining failure
// becomes the one shown.
func (d *Drafts) removeFailed(draft *Draft) {
	for i, failed := range d.failed {
		if failed == draft {
			d.failed = append(d.failed[:i:i], d.failed[i+1:]...)
			draft.Message = ""
			return
		}
	}
}

func (d *Drafts) removeView(entry *draftEntry) {
	if entry.view == nil {
		return
	}

	next := make([]*View, 0, len(d.toBe))
	for _, view := range d.toBe {
		if view != entry.view {
			next = append(next, view)
		}
	}
	entry.view = nil
	d.setToBe(next)
}

func (d *Drafts) setToBe(views []*View) {
	d.toBe = views
	d.toBeGen++
}

// Current is what the new-todo editor and the list should show.
type Current struct {
	// ShowDraft is the oldest failed draft, or the current draft.
	ShowDraft *Draft
	// ToBe holds one created-view per pending draft, in submission order.
	// The slice is replaced, never modified, when it changes.
	ToBe []*View

	gen uint64
}

// Current returns the tracker's presentation state.
func (d *Drafts) Current() Current {
	show := d.current
	if len(d.failed) > 0 {
		show = d.failed[0]
	}
	return Current{ShowDraft: show, ToBe: d.toBe, gen: d.toBeGen}
}

// Equal reports whether c and other show the same draft and the same
// created-views.
func (c Current) Equal(other Current) bool {
	return c.ShowDraft == other.ShowDraft && c.gen == other.gen
}

// parseCreatedAt reads a Unix millisecond timestamp.
func parseCreatedAt(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(ms) || ms < math.MinInt64 || ms >= math.MaxInt64 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

// FormatCreatedAt renders t as a Unix millisecond timestamp.
func FormatCreatedAt(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
