package swapper

import (
	"os"
)

// StoreChannel is the capability set a single stripe handle must provide
// (spec §4.A). It mirrors java.nio.channels.FileChannel's positioned I/O
// surface: ReadAt/WriteAll never mutate an externally visible cursor, and
// WriteAll does not return until the whole buffer has been written or an
// error occurs.
type StoreChannel interface {
	// ReadAt reads into buf starting at offset. It returns io.EOF-style
	// short reads (n < len(buf)) rather than an error when the read
	// simply runs past the current end of file.
	ReadAt(buf []byte, offset int64) (n int, err error)

	// WriteAll writes the entirety of buf at offset, looping internally
	// until done or an error occurs.
	WriteAll(buf []byte, offset int64) error

	// Truncate resizes the underlying file.
	Truncate(size int64) error

	// Force flushes to stable storage. metadata selects whether file
	// metadata (not just data) must also be synced.
	Force(metadata bool) error

	// TryLock attempts to acquire an exclusive advisory lock on the
	// entire file. ok is false (with err nil) when another process holds
	// the lock; err is non-nil for any other failure.
	TryLock() (ok bool, err error)

	// Close closes the handle, releasing any lock it holds.
	Close() error

	// Size reports the current on-disk file size.
	Size() (int64, error)

	// IsOpen reports whether the handle has not been closed.
	IsOpen() bool

	// Name returns the path the handle was opened against.
	Name() string
}

// VectorIO is implemented by handles that support a serialized
// gather/scatter fast path (spec §4.F). A handle that does not implement
// it causes the swapper to fall back to the scalar per-page loop.
type VectorIO interface {
	// ReadVectorAt performs one positioned scatter-read filling bufs in
	// order, starting at offset. It returns the total bytes read.
	ReadVectorAt(bufs [][]byte, offset int64) (int64, error)

	// WriteVectorAt performs one positioned gather-write draining bufs in
	// order, starting at offset. It returns the total bytes written.
	WriteVectorAt(bufs [][]byte, offset int64) (int64, error)
}

// FileSystem is the capability set consumed by the core (spec §4.A): it
// opens, creates, and deletes files, and reports filesystem block size for
// direct-I/O alignment decisions.
type FileSystem interface {
	// Open opens an existing file for positioned read/write. It fails if
	// the file does not exist.
	Open(path string) (StoreChannel, error)

	// Write opens path for positioned read/write, creating it if it does
	// not already exist.
	Write(path string) (StoreChannel, error)

	// DeleteFile removes path.
	DeleteFile(path string) error

	// GetBlockSize reports the filesystem block size backing path, used
	// to validate UseDirectIO's alignment requirement.
	GetBlockSize(path string) (int64, error)
}

// osFileSystem is the default FileSystem, backed by *os.File.
type osFileSystem struct {
	useDirectIO bool
}

// NewOSFileSystem returns the default FileSystem, backed by ordinary
// buffered OS file handles.
func NewOSFileSystem() FileSystem {
	return &osFileSystem{}
}

// NewDirectIOFileSystem returns a FileSystem whose handles are opened with
// the platform's direct-I/O flag and expect page-aligned buffers. Only
// Linux hosts support this; see directio_linux.go / directio_other.go.
func NewDirectIOFileSystem() FileSystem {
	return &osFileSystem{useDirectIO: true}
}

func (fs *osFileSystem) Open(path string) (StoreChannel, error) {
	return fs.open(path, os.O_RDWR)
}

func (fs *osFileSystem) Write(path string) (StoreChannel, error) {
	return fs.open(path, os.O_RDWR|os.O_CREATE)
}

func (fs *osFileSystem) open(path string, flag int) (StoreChannel, error) {
	var (
		f   *os.File
		err error
	)
	if fs.useDirectIO {
		f, err = openDirectIO(path, flag)
	} else {
		f, err = os.OpenFile(path, flag, 0644)
	}
	if err != nil {
		return nil, &IoFailure{Op: "open", Path: path, Err: err}
	}
	return newOSHandle(f), nil
}

func (fs *osFileSystem) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil {
		return &IoFailure{Op: "delete", Path: path, Err: err}
	}
	return nil
}

func (fs *osFileSystem) GetBlockSize(path string) (int64, error) {
	size, err := getBlockSize(path)
	if err != nil {
		return 0, &IoFailure{Op: "statfs", Path: path, Err: err}
	}
	return size, nil
}
