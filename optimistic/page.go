package optimistic

import (
	"fmt"

	"github.com/amonks/todomvc/action"
	"github.com/amonks/todomvc/todo"
)

// ServerList is a fetched authoritative list and the store revision it
// was read at.
type ServerList struct {
	Todos    []todo.Todo
	Revision uint64
}

// Snapshot is everything a todos page renders.
type Snapshot struct {
	ShowDraft *Draft
	ToBe      []*View
	Composed  []*View
	Counts    Counts
	// Items is the filtered, sorted list. Item pointers are stable per ID.
	Items   []*View
	Changes Changes
	// Pending counts submissions that haven't settled.
	Pending int
}

type composedKey struct {
	loaded    bool
	serverRev uint64
	toBeGen   uint64
	actingRev uint64
}

type viewKey struct {
	composedGen uint64
	filter      Filter
}

// Page recomputes a todos page from the server list and the submissions
// of the newTodo and todo actions. Each stage reruns only when one of its
// inputs changed.
//
// A Page is not safe for concurrent use.
type Page struct {
	creating Submissions
	acting   Submissions

	drafts       *Drafts
	composer     *Composer
	materializer *Materializer

	creatingRev  uint64
	creatingSeen bool
	current      Current

	composedKey   composedKey
	composedValid bool
	composedGen   uint64
	composed      []*View

	viewKey   viewKey
	viewValid bool
	counts    Counts
	items     []*View
	changes   Changes
}

// NewPage returns a page observing creating (newTodo submissions) and
// acting (all other todo actions). replay may be nil.
func NewPage(creating, acting Submissions, replay *Replay) *Page {
	p := &Page{
		creating:     creating,
		acting:       acting,
		drafts:       NewDrafts(replay),
		composer:     NewComposer(replay),
		materializer: NewMaterializer(),
	}
	p.current = p.drafts.Current()
	return p
}

// Render brings the page up to date. A nil list means the server list
// has not been loaded yet, which is different from an empty list.
//
// Terminal submissions are retired as they are consumed. A failure with
// no handler is returned as an *UnhandledError.
func (p *Page) Render(list *ServerList, filter Filter) (*Snapshot, error) {
	pending := 0

	creating, creatingRev := p.creating.Observe()
	pending += countPending(creating)
	if !p.creatingSeen || creatingRev != p.creatingRev {
		if err := p.updateDrafts(creating); err != nil {
			return nil, err
		}
		p.creatingRev = creatingRev
		p.creatingSeen = true
	}

	acting, actingRev := p.acting.Observe()
	pending += countPending(acting)
	key := composedKey{
		loaded:    list != nil,
		toBeGen:   p.current.gen,
		actingRev: actingRev,
	}
	if list != nil {
		key.serverRev = list.Revision
	}
	if !p.composedValid || key != p.composedKey {
		composed, err := p.compose(list, acting)
		if err != nil {
			p.composedValid = false
			return nil, err
		}
		p.composed = composed
		p.composedKey = key
		p.composedValid = true
		p.composedGen++
	}

	vk := viewKey{composedGen: p.composedGen, filter: filter}
	if !p.viewValid || vk != p.viewKey {
		p.counts, p.items, p.changes = p.materializer.Make(filter, p.composed)
		p.viewKey = vk
		p.viewValid = true
	} else {
		p.changes = Changes{PrevSize: len(p.items), NextSize: len(p.items)}
	}

	return &Snapshot{
		ShowDraft: p.current.ShowDraft,
		ToBe:      p.current.ToBe,
		Composed:  p.composed,
		Counts:    p.counts,
		Items:     p.items,
		Changes:   p.changes,
		Pending:   pending,
	}, nil
}

func (p *Page) updateDrafts(observed []action.Observation) error {
	p.drafts.ApplyReplay()

	for _, obs := range observed {
		if !obs.Settled {
			continue
		}
		phase := PhaseOf(obs.State)
		handled := p.drafts.Apply(phase, obs.Input, obs.Err)
		obs.Clear()
		if phase == PhaseFailed && !handled {
			return &UnhandledError{Kind: action.KindNewTodo, Input: obs.Input, Err: obs.Err}
		}
	}
	for _, obs := range observed {
		if !obs.Settled {
			p.drafts.Apply(PhasePending, obs.Input, nil)
		}
	}

	next := p.drafts.Current()
	if !next.Equal(p.current) {
		p.current = next
	}
	return nil
}

func (p *Page) compose(list *ServerList, observed []action.Observation) ([]*View, error) {
	views := append([]*View(nil), p.current.ToBe...)
	if list != nil {
		views = append(views, FromTodos(list.Todos)...)
	}
	p.composer.Load(views)
	if list != nil {
		p.composer.ApplyReplay()
	}

	for _, obs := range observed {
		if !obs.Settled {
			continue
		}
		phase := PhaseOf(obs.State)
		handled, err := p.composer.Apply(phase, obs.Input, obs.Err)
		obs.Clear()
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", action.FormKind(obs.Input), phase, err)
		}
		if phase == PhaseFailed && !handled {
			return nil, &UnhandledError{Kind: action.FormKind(obs.Input), Input: obs.Input, Err: obs.Err}
		}
	}
	for _, obs := range observed {
		if obs.Settled {
			continue
		}
		if _, err := p.composer.Apply(PhasePending, obs.Input, nil); err != nil {
			return nil, fmt.Errorf("%s pending: %w", action.FormKind(obs.Input), err)
		}
	}

	p.composer.ApplyErrors()
	return p.composer.Result(), nil
}

func countPending(observed []action.Observation) int {
	count := 0
	for _, obs := range observed {
		if !obs.Settled {
			count++
		}
	}
	return count
}
