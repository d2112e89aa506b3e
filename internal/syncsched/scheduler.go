// Package syncsched periodically forces a registered swapper to stable
// storage on a cron schedule, the ambient "who calls fsync" story a real
// embedding of the substrate needs beyond the explicit Force call.
package syncsched

import (
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/keelsong/pageswap/internal/swapper"
)

// Forcer is the subset of *swapper.Swapper the scheduler depends on.
type Forcer interface {
	Force() error
	File() string
}

// Scheduler runs one or more registered swappers' Force on independent
// cron schedules.
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New returns a Scheduler using second-resolution cron expressions, so
// "@every 5s"-style specs used for fsync intervals parse correctly.
func New() *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		entries: make(map[string]cron.EntryID),
	}
}

// Start begins executing scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler, waiting for any in-flight job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Register schedules f.Force() to run on spec (a six-field cron expression
// whose first field is seconds, or a descriptor such as "@every 5s"),
// replacing any existing schedule previously registered
// under the same path.
func (s *Scheduler) Register(f Forcer, spec string) error {
	id, err := s.cron.AddFunc(spec, func() {
		if err := f.Force(); err != nil {
			log.Printf("syncsched: force failed for %s: %v", f.File(), err)
		}
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[f.File()]; ok {
		s.cron.Remove(old)
	}
	s.entries[f.File()] = id
	return nil
}

// Unregister removes path's scheduled force, if any.
func (s *Scheduler) Unregister(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[path]; ok {
		s.cron.Remove(id)
		delete(s.entries, path)
	}
}

var _ Forcer = (*swapper.Swapper)(nil)
