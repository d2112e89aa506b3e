//go:build linux

package swapper

import (
	"os"

	"github.com/ncw/directio"
)

// directIOSupported is true only on Linux, matching spec §6's construction
// check for UseDirectIO.
const directIOSupported = true

// openDirectIO opens path with O_DIRECT so reads/writes bypass the page
// cache; buffers passed to ReadAt/WriteAll on a direct-I/O handle must be
// allocated with AlignedDirectIOBlock to satisfy the kernel's alignment
// requirement.
func openDirectIO(path string, flag int) (*os.File, error) {
	return directio.OpenFile(path, flag, 0644)
}

// AlignedDirectIOBlock returns a buffer of size bytes aligned to the
// platform's direct-I/O block boundary, suitable for use against a handle
// opened with UseDirectIO.
func AlignedDirectIOBlock(size int) []byte {
	return directio.AlignedBlock(size)
}

// directIOBlockSize is the alignment direct I/O buffers must respect.
const directIOBlockSize = directio.BlockSize
