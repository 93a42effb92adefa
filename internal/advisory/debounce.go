package advisory

import (
	"context"
	"sync"
	"time"
)

type analyzer interface {
	Analyze(ctx context.Context) string
}

// Snapshot is the current advisory state served to clients.
type Snapshot struct {
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
	Loading     bool      `json:"loading"`
}

// Scheduler debounces refresh requests so that a burst of data changes
// produces a single model call. Each Refresh restarts the delay timer;
// once it fires, the analysis runs and its result is applied only if no
// newer refresh superseded it in the meantime.
type Scheduler struct {
	service analyzer
	delay   time.Duration
	timeout time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	applied uint64
	text    string
	updated time.Time
	stopped bool
}

// NewScheduler builds a scheduler around the advisory service. delay is
// the debounce window, timeout bounds each analysis run.
func NewScheduler(service analyzer, delay, timeout time.Duration) *Scheduler {
	return &Scheduler{
		service: service,
		delay:   delay,
		timeout: timeout,
		text:    MessageNoLicenses,
	}
}

// Refresh requests a new analysis after the debounce window. Calling it
// again before the window elapses restarts the timer and invalidates any
// analysis already in flight.
func (s *Scheduler) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.seq++
	gen := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.run(gen) })
}

func (s *Scheduler) run(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.seq {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	text := s.service.Analyze(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	// A newer refresh was scheduled while this run was in flight; its
	// result will reflect the fresher data, so drop this one.
	if gen != s.seq {
		return
	}
	s.text = text
	s.updated = time.Now()
	s.applied = gen
}

// Snapshot returns the latest applied result. Loading reports whether a
// scheduled or in-flight analysis has not been applied yet.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Text:        s.text,
		GeneratedAt: s.updated,
		Loading:     s.seq != s.applied,
	}
}

// Stop cancels any pending timer and rejects further refreshes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
