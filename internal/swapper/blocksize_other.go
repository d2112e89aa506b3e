//go:build !unix

package swapper

// getBlockSize returns a conservative default on platforms with no
// portable statfs equivalent reachable from here. UseDirectIO always fails
// with ConfigurationError on these platforms anyway (directio_other.go),
// so the value is never used to validate alignment.
func getBlockSize(path string) (int64, error) {
	return 4096, nil
}
