//go:build !unix

package swapper

// lockBreaksStriping is true on non-POSIX hosts (notably Windows): a
// locked region has historically restricted I/O to the locking handle, so
// the lock manager (spec §4.D) skips locking entirely rather than break
// striping.
const lockBreaksStriping = true

// TryLock is never invoked on this platform — lockBreaksStriping causes the
// lock manager to skip locking before it would be called — but is defined
// so osHandle still satisfies StoreChannel.
func (h *osHandle) TryLock() (bool, error) {
	return false, nil
}

// No VectorIO implementation is provided here: osHandle simply does not
// satisfy the VectorIO interface on this platform, so the swapper's
// hasFastPath detection falls back to the scalar per-page loop (spec §4.F).
