// Package rollover runs the midnight job that prepares a logged-in user's
// checklist for the new day.
package rollover

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/wellness/internal/model"
)

// RolloverMsg is a tea.Msg sent after each midnight run.
type RolloverMsg struct {
	Seq uint64
	Day string
	Err error
}

// GenerateFunc prepares day's checklist.
type GenerateFunc func(ctx context.Context, day string) error

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the time source and timer. Tests use it to fire
// midnight on demand.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
		s.after = after
	}
}

// WithLocation sets the zone whose midnight triggers a run.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// Scheduler owns the single recurring midnight task of one session.
type Scheduler struct {
	seq      uint64
	generate GenerateFunc
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
	loc      *time.Location

	resultCh chan RolloverMsg
	stopCh   chan struct{}
	done     chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a Scheduler for the session identified by seq.
func New(seq uint64, generate GenerateFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		seq:      seq,
		generate: generate,
		now:      time.Now,
		after:    time.After,
		loc:      time.Local,
		resultCh: make(chan RolloverMsg, 4),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextMidnight returns the start of the day after t in loc.
func NextMidnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// Start launches the scheduling goroutine, which ends when ctx is cancelled
// or Stop is called. The returned command delivers the first RolloverMsg.
// Calling Start again returns nil.
func (s *Scheduler) Start(ctx context.Context) tea.Cmd {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	go s.run(ctx)

	return s.WaitForNext()
}

// Stop ends the scheduling goroutine. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)
	if !s.started {
		close(s.done)
	}
}

// Done is closed once the scheduling goroutine has returned.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// WaitForNext returns a tea.Cmd that waits for the next run. It yields nil
// once the scheduler has stopped.
func (s *Scheduler) WaitForNext() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-s.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.resultCh)

	var last time.Time
	for {
		from := s.now()
		if !from.After(last) {
			from = last
		}
		next := NextMidnight(from, s.loc)

		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-s.after(next.Sub(s.now())):
		}
		last = next

		day := model.DayOf(next, s.loc)
		err := s.generate(ctx, day)

		select {
		case s.resultCh <- RolloverMsg{Seq: s.seq, Day: day, Err: err}:
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		}
	}
}
