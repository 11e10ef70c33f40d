package action

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// RunFunc executes one submitted form.
type RunFunc func(ctx context.Context, form url.Values) (any, error)

// MultiOptions configures a Multi.
type MultiOptions struct {
	// Delay is added before every run, to make pending states visible.
	Delay time.Duration
}

// Multi runs submitted forms in the background and keeps every
// submission observable until it is cleared.
type Multi struct {
	run   RunFunc
	delay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	subs []*Submission
	rev  uint64
}

// Submission is one submitted form.
type Submission struct {
	multi *Multi
	input url.Values
	done  chan struct{}

	// Guarded by multi.mu.
	state   State
	cleared bool
}

// State is a submission's outcome at the time it was read.
// At most one of Result and Err is set, and only when Settled.
type State struct {
	Result  any
	Err     error
	Settled bool
}

// NewMulti returns a Multi that executes forms with run.
func NewMulti(run RunFunc, opts MultiOptions) *Multi {
	ctx, cancel := context.WithCancel(context.Background())
	return &Multi{
		run:    run,
		delay:  opts.Delay,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Submit records form as pending and starts running it.
func (m *Multi) Submit(form url.Values) *Submission {
	sub := &Submission{
		multi: m,
		input: cloneValues(form),
		done:  make(chan struct{}),
	}

	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.rev++
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		result, err := m.execute(sub.input)
		m.settle(sub, result, err)
	}()
	return sub
}

func (m *Multi) execute(form url.Values) (result any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = nil
			err = fmt.Errorf("action panicked: %v", recovered)
		}
	}()

	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-m.ctx.Done():
			return nil, m.ctx.Err()
		}
	}
	return m.run(m.ctx, form)
}

func (m *Multi) settle(sub *Submission, result any, err error) {
	m.mu.Lock()
	if err != nil {
		sub.state = State{Err: err, Settled: true}
	} else {
		if result == nil {
			result = struct{}{}
		}
		sub.state = State{Result: result, Settled: true}
	}
	if !sub.cleared {
		m.rev++
	}
	m.mu.Unlock()
	close(sub.done)
}

// Observation is a submission's input and state as of one Observe call.
type Observation struct {
	Input url.Values
	State

	sub *Submission
}

// Clear retires the observed submission.
func (o Observation) Clear() {
	o.sub.Clear()
}

// Submission returns the observed submission.
func (o Observation) Submission() *Submission {
	return o.sub
}

// Observe returns the uncleared submissions in submission order, with
// their states read atomically, and a revision that changes whenever the
// collection or any state changes.
func (m *Multi) Observe() ([]Observation, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	observed := make([]Observation, len(m.subs))
	for i, sub := range m.subs {
		observed[i] = Observation{Input: sub.input, State: sub.state, sub: sub}
	}
	return observed, m.rev
}

// Pending returns the number of uncleared submissions that have not settled.
func (m *Multi) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, sub := range m.subs {
		if !sub.state.Settled {
			count++
		}
	}
	return count
}

// Close cancels running submissions and waits for them to settle.
func (m *Multi) Close() {
	m.cancel()
	m.wg.Wait()
}

// Input returns the submitted form. Callers must not modify it.
func (s *Submission) Input() url.Values {
	return s.input
}

// State returns the submission's current outcome.
func (s *Submission) State() State {
	s.multi.mu.Lock()
	defer s.multi.mu.Unlock()
	return s.state
}

// Done is closed once the submission settles.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Clear removes the submission from its collection. It is safe to call
// more than once.
func (s *Submission) Clear() {
	m := s.multi
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.cleared {
		return
	}
	s.cleared = true
	for i, sub := range m.subs {
		if sub == s {
			m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
			break
		}
	}
	m.rev++
}

func cloneValues(form url.Values) url.Values {
	cloned := make(url.Values, len(form))
	for key, values := range form {
		cloned[key] = append([]string(nil), values...)
	}
	return cloned
}
