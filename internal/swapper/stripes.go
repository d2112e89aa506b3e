package swapper

import "sync/atomic"

// stripeSet holds the K independently-opened handles onto one backing file
// (spec §4.A, §4.D). K is always a power of two so pick() reduces to a
// shift-and-mask instead of a division.
//
// Each slot is an atomic.Pointer[StoreChannel] rather than a plain
// StoreChannel in the slice: an interface value is two words, so an
// unsynchronized write from reopen.go racing an unsynchronized read from a
// concurrent Read/Write call could observe a torn itab/data pair. Every
// read goes through atomic.Pointer.Load and every replacement through
// atomic.Pointer.Swap so a reader always sees one handle whole, never a
// mix of old and new.
type stripeSet struct {
	handles []atomic.Pointer[StoreChannel]
	shift   uint
	mask    int64
}

// newStripeSet opens count handles onto path via fs, closing any already
// opened handle if a later open fails.
func newStripeSet(fs FileSystem, path string, count int, shift uint) (*stripeSet, error) {
	handles := make([]atomic.Pointer[StoreChannel], count)
	for i := 0; i < count; i++ {
		h, err := fs.Write(path)
		if err != nil {
			for j := 0; j < i; j++ {
				(*handles[j].Load()).Close()
			}
			return nil, err
		}
		handles[i].Store(&h)
	}
	return &stripeSet{handles: handles, shift: shift, mask: int64(count - 1)}, nil
}

// size returns K, the number of stripes.
func (s *stripeSet) size() int {
	return len(s.handles)
}

// token is the stripe carrying the exclusive region lock and the handle
// size-priming reads from at construction (spec §4.C, §4.D): always index
// 0, a fixed choice rather than anything page-id derived.
func (s *stripeSet) token() StoreChannel {
	return *s.handles[0].Load()
}

// at returns the handle for stripe index i, for reopen.go to replace after
// a closed-channel failure.
func (s *stripeSet) at(i int) StoreChannel {
	return *s.handles[i].Load()
}

// indexFor maps a page id to a stripe index: the page id's bits above
// shift select the stripe, round-robin. With shift=4 and K=8, pages 0-15
// land on stripe 0, 16-31 on stripe 1, and so on wrapping back to 0 after
// K groups — this is what lets K independent channels serve strictly
// sequential scans without every one of them seeing every page.
func (s *stripeSet) indexFor(pageID int64) int {
	if s.mask == 0 {
		return 0
	}
	return int((pageID >> s.shift) & s.mask)
}

// pick returns the handle responsible for pageID.
func (s *stripeSet) pick(pageID int64) StoreChannel {
	return s.at(s.indexFor(pageID))
}

// replace swaps in a freshly reopened handle at index i, returning the
// stale one so the caller can best-effort Close it. The swap is atomic so
// a concurrent Read/Write at index i observes either the old or the new
// handle in full, never a torn interface value.
func (s *stripeSet) replace(i int, h StoreChannel) StoreChannel {
	old := s.handles[i].Swap(&h)
	return *old
}

// closeAll closes every stripe handle, returning the first error
// encountered (if any) after attempting all of them.
func (s *stripeSet) closeAll() error {
	var first error
	for i := range s.handles {
		if err := s.at(i).Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
