//go:build unix

package swapper

import "golang.org/x/sys/unix"

// getBlockSize reports the filesystem block size backing path, used to
// validate the UseDirectIO alignment requirement (spec §6, S6).
func getBlockSize(path string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return int64(stat.Bsize), nil
}
