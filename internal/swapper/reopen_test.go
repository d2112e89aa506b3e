package swapper

import (
	"bytes"
	"os"
	"testing"
)

// interruptFileSystem wraps memFileSystem and lets a test arm one stripe
// handle to fail its next I/O call with os.ErrClosed, simulating a thread
// interrupt closing the channel mid-call (spec §4.G, S3).
type interruptFileSystem struct {
	inner FileSystem
}

func newInterruptFileSystem() *interruptFileSystem {
	return &interruptFileSystem{inner: NewMemFileSystem()}
}

func (fs *interruptFileSystem) Open(path string) (StoreChannel, error) {
	h, err := fs.inner.Open(path)
	if err != nil {
		return nil, err
	}
	return &interruptHandle{StoreChannel: h}, nil
}

func (fs *interruptFileSystem) Write(path string) (StoreChannel, error) {
	h, err := fs.inner.Write(path)
	if err != nil {
		return nil, err
	}
	return &interruptHandle{StoreChannel: h}, nil
}

func (fs *interruptFileSystem) DeleteFile(path string) error { return fs.inner.DeleteFile(path) }
func (fs *interruptFileSystem) GetBlockSize(path string) (int64, error) {
	return fs.inner.GetBlockSize(path)
}

type interruptHandle struct {
	StoreChannel
	tripped bool
	closed  bool
}

func (h *interruptHandle) arm() { h.tripped = true }

func (h *interruptHandle) ReadAt(buf []byte, offset int64) (int, error) {
	if h.tripped {
		h.tripped = false
		h.closed = true
		return 0, os.ErrClosed
	}
	return h.StoreChannel.ReadAt(buf, offset)
}

func (h *interruptHandle) WriteAll(buf []byte, offset int64) error {
	if h.tripped {
		h.tripped = false
		h.closed = true
		return os.ErrClosed
	}
	return h.StoreChannel.WriteAll(buf, offset)
}

func (h *interruptHandle) IsOpen() bool {
	return !h.closed
}

func TestReopenHealsAfterSimulatedInterrupt(t *testing.T) {
	fs := newInterruptFileSystem()
	sw, err := Open(fs, "i.db", Config{PageSize: 512, NoChannelStriping: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sw.Close()

	want := bytes.Repeat([]byte{0x42}, 512)
	if _, err := sw.Write(0, want); err != nil {
		t.Fatalf("priming Write: %v", err)
	}

	stripe := sw.stripes.at(0).(*interruptHandle)
	stripe.arm()

	got := make([]byte, 512)
	n, err := sw.Read(0, got)
	if err != nil {
		t.Fatalf("Read after simulated interrupt: %v", err)
	}
	if n != 512 {
		t.Fatalf("Read returned %d bytes, want 512", n)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Read after reopen returned stale/garbled data")
	}

	if sw.stripes.at(0) == StoreChannel(stripe) {
		t.Fatalf("expected the tripped handle to have been replaced by reopen")
	}
}

func TestCloseRefusesReopen(t *testing.T) {
	fs := newInterruptFileSystem()
	sw, err := Open(fs, "closed.db", Config{PageSize: 128, NoChannelStriping: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	stripe := sw.stripes.at(0).(*interruptHandle)
	sw.closed.Store(true)
	stripe.arm()

	buf := make([]byte, 128)
	if _, err := sw.Read(0, buf); err == nil {
		t.Fatalf("expected Read to fail once the swapper is explicitly closed")
	}
}
