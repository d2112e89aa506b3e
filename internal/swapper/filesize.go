package swapper

import "sync/atomic"

// fileSizeRegister is the swapper's cached view of the backing file's
// length (spec §4.C). It is primed once from the token stripe at
// construction and afterward only ever moves in two ways: monotonically
// upward via increaseTo (a write extends the file) or reset to an exact
// value via set (Truncate). It never shrinks as a side effect of a read or
// a failed write.
type fileSizeRegister struct {
	v atomic.Int64
}

func newFileSizeRegister(initial int64) *fileSizeRegister {
	r := &fileSizeRegister{}
	r.v.Store(initial)
	return r
}

// get returns the current cached size.
func (r *fileSizeRegister) get() int64 {
	return r.v.Load()
}

// increaseTo raises the cached size to newSize if newSize is larger than
// the current value, via CAS retry loop so concurrent writers racing to
// extend the file never lose an update to a stale read.
func (r *fileSizeRegister) increaseTo(newSize int64) {
	for {
		cur := r.v.Load()
		if newSize <= cur {
			return
		}
		if r.v.CompareAndSwap(cur, newSize) {
			return
		}
	}
}

// set forces the cached size to an exact value, used after Truncate since
// truncation can shrink the file and increaseTo's CAS loop only ever moves
// upward.
func (r *fileSizeRegister) set(v int64) {
	r.v.Store(v)
}

// lastPageID returns the largest page id currently backed by the file,
// counting a partial tail page, given a fixed pageSize:
// ceil(size/pageSize) - 1, or -1 for an empty file.
func (r *fileSizeRegister) lastPageID(pageSize int64) int64 {
	size := r.get()
	if size <= 0 {
		return -1
	}
	pages := (size + pageSize - 1) / pageSize
	return pages - 1
}
