package swapper

import "log"

// reopen replaces the stripe handle at index with a freshly opened one
// after a closed-channel failure (spec §4.G). It is the critical section
// that must never run concurrently with another reopen of the same index,
// so callers serialize through the per-index mutex in swapper.go.
//
// If the swapper has already been explicitly closed, reopen refuses to
// heal anything: a transparent reopen after Close would resurrect a
// handle the caller believes is gone.
func (s *Swapper) reopen(index int) error {
	if s.closed.Load() {
		return &ClosedSwapperError{Path: s.path}
	}

	h, err := s.fs.Write(s.path)
	if err != nil {
		return &IoFailure{Op: "reopen", Path: s.path, Err: err}
	}

	old := s.stripes.replace(index, h)
	if err := old.Close(); err != nil && s.verbose {
		log.Printf("swapper[%s]: error closing stale stripe handle for %s: %v", s.id, s.path, err)
	}

	if index == 0 {
		// Closing the old token handle just released the region lock; the
		// new handle installed in its place must reacquire it.
		if err := acquireLock(h, s.verbose); err != nil {
			return err
		}
	}
	return nil
}
