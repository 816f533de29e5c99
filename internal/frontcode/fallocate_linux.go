//go:build linux

package frontcode

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile pre-allocates size bytes for f so the writer's sequential
// block appends don't force repeated filesystem extent growth. Best
// effort: an unsupported filesystem is not a write-time error.
func fallocateFile(f *os.File, size int64) error {
	err := unix.Fallocate(int(f.Fd()), 0, 0, size)
	if err == unix.ENOTSUP || err == unix.EOPNOTSUPP {
		return nil
	}
	return err
}
