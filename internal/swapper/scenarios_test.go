package swapper

import (
	"bytes"
	"testing"
)

// TestScenarioS1 covers spec §8 S1: a write to page 3 leaves page 0
// readable as zeros, page 3 readable as written, and getLastPageId at 3.
func TestScenarioS1(t *testing.T) {
	sw, _ := newTestSwapper(t, 8192, Config{})

	a := bytes.Repeat([]byte{0x9}, 8192)
	if _, err := sw.Write(3, a); err != nil {
		t.Fatalf("Write(3): %v", err)
	}

	zero := make([]byte, 8192)
	x := make([]byte, 8192)
	n, err := sw.Read(0, x)
	if err != nil {
		t.Fatalf("Read(0): %v", err)
	}
	if n != 8192 || !bytes.Equal(x, zero) {
		t.Fatalf("Read(0) = %d bytes, want 8192 zero bytes", n)
	}

	n, err = sw.Read(3, x)
	if err != nil {
		t.Fatalf("Read(3): %v", err)
	}
	if n != 8192 || !bytes.Equal(x, a) {
		t.Fatalf("Read(3) did not recover the written page")
	}

	if got := sw.GetLastPageId(); got != 3 {
		t.Fatalf("GetLastPageId = %d, want 3", got)
	}
}

// TestScenarioS2 covers S2: a 4-page vectored write recovers in order via
// a vectored read, totalling 16384 bytes for pageSize=4096.
func TestScenarioS2(t *testing.T) {
	fs := newVectorFileSystem()
	sw, err := Open(fs, "s2.db", Config{PageSize: 4096})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sw.Close()

	patterns := [][]byte{
		bytes.Repeat([]byte{0xA0}, 4096),
		bytes.Repeat([]byte{0xA1}, 4096),
		bytes.Repeat([]byte{0xA2}, 4096),
		bytes.Repeat([]byte{0xA3}, 4096),
	}
	if _, err := sw.WriteVector(0, patterns); err != nil {
		t.Fatalf("WriteVector: %v", err)
	}

	bufs := make([][]byte, 4)
	for i := range bufs {
		bufs[i] = make([]byte, 4096)
	}
	n, err := sw.ReadVector(0, bufs)
	if err != nil {
		t.Fatalf("ReadVector: %v", err)
	}
	if n != 16384 {
		t.Fatalf("ReadVector returned %d bytes, want 16384", n)
	}
	for i, want := range patterns {
		if !bytes.Equal(bufs[i], want) {
			t.Fatalf("page %d did not recover pattern P%d", i, i)
		}
	}
}

// TestScenarioS3 covers S3: a read interrupted mid-call by a closed
// channel still returns the full page after transparent reopen.
func TestScenarioS3(t *testing.T) {
	fs := newInterruptFileSystem()
	sw, err := Open(fs, "s3.db", Config{PageSize: 512, NoChannelStriping: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sw.Close()

	b := bytes.Repeat([]byte{0x55}, 512)
	if _, err := sw.Write(0, b); err != nil {
		t.Fatalf("Write: %v", err)
	}

	sw.stripes.at(0).(*interruptHandle).arm()

	got := make([]byte, 512)
	n, err := sw.Read(0, got)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 512 || !bytes.Equal(got, b) {
		t.Fatalf("Read after interrupt = %d bytes %x, want 512 bytes matching B", n, got)
	}
}

// TestScenarioS4 covers S4: a second construction over the same file
// fails with FileLockFailure when striped locking is active (i.e. the
// platform's lock does not break striping).
func TestScenarioS4(t *testing.T) {
	if lockBreaksStriping {
		t.Skip("platform lock would break striping; construction-time locking is skipped entirely")
	}

	fs := NewMemFileSystem()
	first, err := Open(fs, "s4.db", Config{PageSize: 256})
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	defer first.Close()

	_, err = Open(fs, "s4.db", Config{PageSize: 256})
	if err == nil {
		t.Fatalf("expected second Open over the same file to fail with FileLockFailure")
	}
	if _, ok := err.(*FileLockFailure); !ok {
		t.Fatalf("second Open error = %T, want *FileLockFailure", err)
	}
}

// TestScenarioS5 covers S5: truncate after S1-like state resets
// getLastPageId to -1 and reads back zero-filled pages.
func TestScenarioS5(t *testing.T) {
	sw, _ := newTestSwapper(t, 8192, Config{})

	a := bytes.Repeat([]byte{0x9}, 8192)
	if _, err := sw.Write(3, a); err != nil {
		t.Fatalf("Write(3): %v", err)
	}

	if err := sw.Truncate(); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if got := sw.GetLastPageId(); got != -1 {
		t.Fatalf("GetLastPageId after truncate = %d, want -1", got)
	}

	x := make([]byte, 8192)
	n, err := sw.Read(3, x)
	if err != nil {
		t.Fatalf("Read(3) after truncate: %v", err)
	}
	if n != 0 && !bytes.Equal(x, make([]byte, 8192)) {
		t.Fatalf("Read(3) after truncate should be zero-filled")
	}
}

// TestScenarioS6 covers S6: UseDirectIO with a PageSize not a multiple of
// the filesystem's block size fails construction with ConfigurationError.
func TestScenarioS6(t *testing.T) {
	fs := &fixedBlockSizeFS{FileSystem: NewMemFileSystem(), blockSize: 512}
	_, err := Open(fs, "s6.db", Config{PageSize: 100, UseDirectIO: true})
	if err == nil {
		t.Fatalf("expected ConfigurationError for misaligned PageSize with UseDirectIO")
	}
	if _, ok := err.(*ConfigurationError); !ok {
		t.Fatalf("error = %T, want *ConfigurationError", err)
	}
}

type fixedBlockSizeFS struct {
	FileSystem
	blockSize int64
}

func (fs *fixedBlockSizeFS) GetBlockSize(path string) (int64, error) {
	return fs.blockSize, nil
}
