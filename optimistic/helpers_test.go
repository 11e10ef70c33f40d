package optimistic

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/amonks/todomvc/action"
)

func form(pairs ...string) url.Values {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		values.Add(pairs[i], pairs[i+1])
	}
	return values
}

func titleError(kind action.Kind, id, title, message string) *action.FormError {
	return &action.FormError{
		Message:     message,
		FieldErrors: map[string]string{action.FieldTitle: message},
		Fields: map[string]string{
			action.FieldKind:  string(kind),
			action.FieldID:    id,
			action.FieldTitle: title,
		},
	}
}

type outcome struct {
	result any
	err    error
}

// gatedRun holds every submission until the test settles it.
type gatedRun struct {
	mu    sync.Mutex
	gates map[string]chan outcome
}

func newGatedMulti(t *testing.T) (*action.Multi, *gatedRun) {
	t.Helper()

	g := &gatedRun{gates: make(map[string]chan outcome)}
	multi := action.NewMulti(g.run, action.MultiOptions{})
	t.Cleanup(multi.Close)
	return multi, g
}

func (g *gatedRun) gate(key string) chan outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.gates[key]
	if !ok {
		ch = make(chan outcome, 1)
		g.gates[key] = ch
	}
	return ch
}

func (g *gatedRun) run(ctx context.Context, form url.Values) (any, error) {
	select {
	case o := <-g.gate(form.Encode()):
		return o.result, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedRun) settle(t *testing.T, sub *action.Submission, result any, err error) {
	t.Helper()

	g.gate(sub.Input().Encode()) <- outcome{result: result, err: err}
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("submission never settled")
	}
}
