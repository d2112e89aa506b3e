package swapper

import (
	"errors"
	"log"
	"os"
)

// isClosedChannelErr reports whether err indicates the underlying handle
// was closed out from under the swapper — the only failure reopen.go knows
// how to heal (spec §4.E, §4.G). Any other I/O error is surfaced as-is.
func isClosedChannelErr(err error) bool {
	return errors.Is(err, os.ErrClosed)
}

// readScalar reads one page at pageID into buf, zero-filling any bytes
// past the current end of file (spec §4.E): a page that has never been
// written, or has only been partially written, reads back as zeros rather
// than an error or garbage.
func (s *Swapper) readScalar(pageID int64, buf []byte) error {
	offset := pageID * int64(s.pageSize)
	index := s.stripes.indexFor(pageID)

	attempts := 0
	budget := s.retryBudget
	for {
		h := s.stripes.at(index)
		n, err := h.ReadAt(buf, offset)
		if err != nil {
			if isClosedChannelErr(err) && attempts < budget {
				attempts++
				if rerr := s.healStripe(index); rerr != nil {
					return rerr
				}
				continue
			}
			if isClosedChannelErr(err) {
				return &IoInterrupted{Op: "read", Path: s.path, Attempts: attempts, Err: err}
			}
			return &IoFailure{Op: "read", Path: s.path, Err: err}
		}
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		return nil
	}
}

// writeScalar writes buf to pageID, retrying through reopen.go on a
// closed-channel failure up to s.retryBudget times before giving up with
// IoInterrupted.
func (s *Swapper) writeScalar(pageID int64, buf []byte) error {
	offset := pageID * int64(s.pageSize)
	index := s.stripes.indexFor(pageID)

	// Raise fileSize before issuing the write so a concurrent reader can
	// never observe a size that excludes a write already underway.
	s.fileSize.increaseTo(offset + int64(len(buf)))

	attempts := 0
	budget := s.retryBudget
	for {
		h := s.stripes.at(index)
		err := h.WriteAll(buf, offset)
		if err != nil {
			if isClosedChannelErr(err) && attempts < budget {
				attempts++
				if rerr := s.healStripe(index); rerr != nil {
					return rerr
				}
				continue
			}
			if isClosedChannelErr(err) {
				return &IoInterrupted{Op: "write", Path: s.path, Attempts: attempts, Err: err}
			}
			return &IoFailure{Op: "write", Path: s.path, Err: err}
		}
		return nil
	}
}

// healStripe serializes reopen of one stripe index behind its own mutex so
// two goroutines racing to heal the same closed stripe don't both open a
// replacement handle.
func (s *Swapper) healStripe(index int) error {
	s.reopenMu[index].Lock()
	defer s.reopenMu[index].Unlock()

	// Another goroutine may have already healed this index while we were
	// waiting for the lock; a freshly reopened handle reports IsOpen.
	if s.stripes.at(index).IsOpen() {
		return nil
	}
	if err := s.reopen(index); err != nil {
		if s.verbose {
			log.Printf("swapper[%s]: reopen of stripe %d for %s failed: %v", s.id, index, s.path, err)
		}
		return err
	}
	return nil
}
