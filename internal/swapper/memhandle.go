package swapper

import (
	"io"
	"sync"

	"github.com/dsnet/golib/memfile"
)

// memFileSystem is an in-memory FileSystem for tests, in the spirit of
// cznic-exp/lldb's MemFiler: no OS file descriptors, no real fsync, but the
// same ReadAt/WriteAt/Truncate/Size contract the core depends on. Unlike
// MemFiler it backs onto github.com/dsnet/golib/memfile rather than a
// private page map, and it tracks one advisory lock per path (not per
// handle) so lock.go's acquire/skip logic behaves like real flock: any
// handle on the path can observe and release it, mirroring how K file
// descriptors onto the same disk file share one kernel lock.
type memFileSystem struct {
	mu    sync.Mutex
	files map[string]*memfile.File
	locks map[string]bool
}

// NewMemFileSystem returns a FileSystem backed entirely by memory, used by
// the swapper's own test suite to exercise striping, reopen, and vectored
// I/O without touching disk.
func NewMemFileSystem() FileSystem {
	return &memFileSystem{files: map[string]*memfile.File{}, locks: map[string]bool{}}
}

func (fs *memFileSystem) Open(path string) (StoreChannel, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.files[path]
	if !ok {
		return nil, &IoFailure{Op: "open", Path: path, Err: errNotExist{path}}
	}
	return newMemHandle(path, f, fs), nil
}

func (fs *memFileSystem) Write(path string) (StoreChannel, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.files[path]
	if !ok {
		f = memfile.New(nil)
		fs.files[path] = f
	}
	return newMemHandle(path, f, fs), nil
}

func (fs *memFileSystem) DeleteFile(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[path]; !ok {
		return &IoFailure{Op: "delete", Path: path, Err: errNotExist{path}}
	}
	delete(fs.files, path)
	delete(fs.locks, path)
	return nil
}

func (fs *memFileSystem) GetBlockSize(path string) (int64, error) {
	return 4096, nil
}

func (fs *memFileSystem) tryLock(path string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.locks[path] {
		return false
	}
	fs.locks[path] = true
	return true
}

func (fs *memFileSystem) unlock(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.locks, path)
}

type errNotExist struct{ path string }

func (e errNotExist) Error() string { return e.path + ": no such file" }

// memHandle adapts a shared *memfile.File into a StoreChannel. Every
// in-memory stripe handle for the same path shares one *memfile.File and
// the filesystem's mutex, mirroring how K os.File descriptors against the
// same path on disk all observe one another's writes.
type memHandle struct {
	path   string
	f      *memfile.File
	fs     *memFileSystem
	closed bool
	holds  bool
}

func newMemHandle(path string, f *memfile.File, fs *memFileSystem) *memHandle {
	return &memHandle{path: path, f: f, fs: fs}
}

func (h *memHandle) ReadAt(buf []byte, offset int64) (int, error) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	n, err := h.f.ReadAt(buf, offset)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

func (h *memHandle) WriteAll(buf []byte, offset int64) error {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	for len(buf) > 0 {
		n, err := h.f.WriteAt(buf, offset)
		if err != nil {
			return err
		}
		buf = buf[n:]
		offset += int64(n)
	}
	return nil
}

func (h *memHandle) Truncate(size int64) error {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	return h.f.Truncate(size)
}

func (h *memHandle) Force(metadata bool) error {
	return nil
}

func (h *memHandle) TryLock() (bool, error) {
	ok := h.fs.tryLock(h.path)
	if ok {
		h.holds = true
	}
	return ok, nil
}

func (h *memHandle) Close() error {
	h.closed = true
	if h.holds {
		h.fs.unlock(h.path)
		h.holds = false
	}
	return nil
}

func (h *memHandle) Size() (int64, error) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	info, err := h.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (h *memHandle) IsOpen() bool {
	return !h.closed
}

func (h *memHandle) Name() string {
	return h.path
}
