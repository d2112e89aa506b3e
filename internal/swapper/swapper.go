package swapper

import (
	"sync"
	"sync/atomic"
)

// Swapper is the lowest layer of a paged buffer pool: it translates
// fixed-size page read/write operations into positioned I/O against one
// backing file, striped across K independent channels for concurrency and
// able to transparently heal a handle an interrupt closed out from under
// it. It performs no page replacement, dirty tracking, transaction
// logging, or crash recovery — see doc.go.
type Swapper struct {
	id       string
	path     string
	fs       FileSystem
	pageSize uint32

	stripes     *stripeSet
	hasFastPath bool
	reopenMu    []sync.Mutex

	fileSize *fileSizeRegister

	retryBudget int
	verbose     bool

	evictMu sync.Mutex
	onEvict func(pageID int64)

	closed atomic.Bool
}

// Open constructs a Swapper over path, creating it if absent. It validates
// cfg, opens K stripe handles, primes fileSize from the token stripe's
// current length, and — unless the platform forbids it — acquires the
// construction-time exclusive region lock.
func Open(fs FileSystem, path string, cfg Config) (*Swapper, error) {
	if cfg.PageSize == 0 {
		return nil, &ConfigurationError{Reason: "PageSize must be > 0"}
	}

	if cfg.UseDirectIO {
		if !directIOSupported {
			return nil, &ConfigurationError{Reason: "UseDirectIO is only supported on linux"}
		}
		blockSize, err := fs.GetBlockSize(path)
		if err != nil {
			return nil, err
		}
		if blockSize <= 0 || int64(cfg.PageSize)%blockSize != 0 {
			return nil, &ConfigurationError{Reason: "PageSize must be a multiple of the filesystem block size when UseDirectIO is set"}
		}
	}

	power := cfg.stripePower()
	count := 1 << uint(power)

	stripes, err := newStripeSet(fs, path, count, cfg.stripeShift())
	if err != nil {
		return nil, err
	}

	size, err := stripes.token().Size()
	if err != nil {
		stripes.closeAll()
		return nil, &IoFailure{Op: "stat", Path: path, Err: err}
	}

	if err := acquireLock(stripes.token(), cfg.PrintReflectionExceptions); err != nil {
		stripes.closeAll()
		return nil, err
	}

	_, hasFastPath := stripes.token().(VectorIO)

	s := &Swapper{
		id:          newInstanceID(),
		path:        path,
		fs:          fs,
		pageSize:    cfg.PageSize,
		stripes:     stripes,
		hasFastPath: hasFastPath,
		reopenMu:    make([]sync.Mutex, count),
		fileSize:    newFileSizeRegister(size),
		retryBudget: cfg.retryBudget(),
		verbose:     cfg.PrintReflectionExceptions,
		onEvict:     cfg.OnEvict,
	}
	return s, nil
}

// Read reads one page at pageID into buf, which must be at least PageSize
// bytes. Bytes past the current end of file are zero-filled rather than
// erroring.
func (s *Swapper) Read(pageID int64, buf []byte) (int, error) {
	if err := s.readScalar(pageID, buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// Write writes one page's worth of buf at pageID, extending fileSize if
// this write moves past the current end of file.
func (s *Swapper) Write(pageID int64, buf []byte) (int, error) {
	if err := s.writeScalar(pageID, buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// ReadVector reads len(bufs) consecutive pages starting at startPageID,
// using one positioned scatter read when the platform and striping
// configuration allow it.
func (s *Swapper) ReadVector(startPageID int64, bufs [][]byte) (int64, error) {
	if err := s.readVector(startPageID, bufs); err != nil {
		return 0, err
	}
	return totalLen(bufs), nil
}

// WriteVector writes len(bufs) consecutive pages starting at startPageID,
// using one positioned gather write when possible.
func (s *Swapper) WriteVector(startPageID int64, bufs [][]byte) (int64, error) {
	if err := s.writeVector(startPageID, bufs); err != nil {
		return 0, err
	}
	return totalLen(bufs), nil
}

func totalLen(bufs [][]byte) int64 {
	var n int64
	for _, b := range bufs {
		n += int64(len(b))
	}
	return n
}

// File returns the path this swapper was opened against, also its
// identity for Equals.
func (s *Swapper) File() string {
	return s.path
}

// Force flushes the token stripe to stable storage.
func (s *Swapper) Force() error {
	return s.withReopenRetry(0, func(h StoreChannel) error {
		return h.Force(false)
	})
}

// Truncate resets the file to zero length and fileSize to 0, so
// GetLastPageId returns -1 afterward.
func (s *Swapper) Truncate() error {
	s.fileSize.set(0)
	return s.withReopenRetry(0, func(h StoreChannel) error {
		return h.Truncate(0)
	})
}

// GetLastPageId returns the largest page id backed by the file, or -1 if
// the file is empty.
func (s *Swapper) GetLastPageId() int64 {
	return s.fileSize.lastPageID(int64(s.pageSize))
}

// Close marks the swapper closed, closes every stripe (the first failure
// wins, the rest are suppressed), and clears the eviction callback so
// large translation structures it may reference can be released.
func (s *Swapper) Close() error {
	s.closed.Store(true)
	err := s.stripes.closeAll()
	s.evictMu.Lock()
	s.onEvict = nil
	s.evictMu.Unlock()
	if err != nil {
		return &IoFailure{Op: "close", Path: s.path, Err: err}
	}
	return nil
}

// CloseAndDelete closes the swapper then deletes the backing file.
func (s *Swapper) CloseAndDelete() error {
	if err := s.Close(); err != nil {
		return err
	}
	return s.fs.DeleteFile(s.path)
}

// Equals reports whether two swappers share the same file identity:
// object identity if other is nil is always false, otherwise path
// equality, matching the cache's de-duplication key (spec §4.I).
func (s *Swapper) Equals(other *Swapper) bool {
	if other == nil {
		return false
	}
	return s.path == other.path
}

// withReopenRetry runs op against the stripe at index, healing and
// retrying on a closed-channel failure up to the retry budget — the same
// protocol as readScalar/writeScalar but for the single-shot lifecycle
// operations (force, truncate) that only ever touch the token stripe.
func (s *Swapper) withReopenRetry(index int, op func(StoreChannel) error) error {
	attempts := 0
	for {
		h := s.stripes.at(index)
		err := op(h)
		if err == nil {
			return nil
		}
		if isClosedChannelErr(err) && attempts < s.retryBudget {
			attempts++
			if herr := s.healStripe(index); herr != nil {
				return herr
			}
			continue
		}
		if isClosedChannelErr(err) {
			return &IoInterrupted{Op: "lifecycle", Path: s.path, Attempts: attempts, Err: err}
		}
		return &IoFailure{Op: "lifecycle", Path: s.path, Err: err}
	}
}
