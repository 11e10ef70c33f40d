package todo

import (
	"log"
	"sync"
	"time"
)

// saver coalesces store writes: each notify pushes the save back by delay,
// and a save that starts while another is running is rescheduled.
type saver struct {
	delay  time.Duration
	save   func() error
	logger *log.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	running bool
	idle    *sync.Cond
}

func newSaver(delay time.Duration, save func() error, logger *log.Logger) *saver {
	s := &saver{delay: delay, save: save, logger: logger}
	s.idle = sync.NewCond(&s.mu)
	return s
}

func (s *saver) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.onTimer)
		return
	}
	s.timer.Reset(s.delay)
}

func (s *saver) onTimer() {
	s.mu.Lock()
	if s.running {
		s.timer.Reset(s.delay)
		s.mu.Unlock()
		return
	}
	if !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.running = true
	s.mu.Unlock()

	if err := s.save(); err != nil {
		s.logger.Printf("save failed: %v", err)
		s.mu.Lock()
		s.pending = true
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.running = false
	if s.pending && s.timer != nil {
		s.timer.Reset(s.delay)
	}
	s.idle.Broadcast()
	s.mu.Unlock()
}

// flush cancels the timer and saves synchronously if anything is pending.
func (s *saver) flush() error {
	s.mu.Lock()
	for s.running {
		s.idle.Wait()
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	if !s.pending {
		s.mu.Unlock()
		return nil
	}
	s.pending = false
	s.running = true
	s.mu.Unlock()

	err := s.save()

	s.mu.Lock()
	s.running = false
	if err != nil {
		s.pending = true
	}
	s.idle.Broadcast()
	s.mu.Unlock()
	return err
}
