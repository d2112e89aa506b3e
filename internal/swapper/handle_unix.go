//go:build unix

package swapper

import (
	"golang.org/x/sys/unix"
)

// lockBreaksStriping is false on POSIX hosts: flock on one descriptor does
// not restrict positioned I/O issued through the other K-1 stripe handles
// (spec §4.D).
const lockBreaksStriping = false

// TryLock attempts a non-blocking exclusive flock on the whole file.
func (h *osHandle) TryLock() (bool, error) {
	fd := int(h.f.Fd())
	err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if err == unix.EWOULDBLOCK || err == unix.EAGAIN {
		return false, nil
	}
	return false, err
}

// ReadVectorAt implements VectorIO using a single preadv(2) call, which is
// atomic with respect to the file offset across all len(bufs) buffers —
// the "position lock taken once for the whole batch" spec §4.F asks for.
func (h *osHandle) ReadVectorAt(bufs [][]byte, offset int64) (int64, error) {
	fd := int(h.f.Fd())
	n, err := unix.Preadv(fd, bufs, offset)
	return int64(n), err
}

// WriteVectorAt implements VectorIO using a single pwritev(2) call.
func (h *osHandle) WriteVectorAt(bufs [][]byte, offset int64) (int64, error) {
	fd := int(h.f.Fd())
	n, err := unix.Pwritev(fd, bufs, offset)
	return int64(n), err
}
