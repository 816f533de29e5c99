//go:build linux

package frontcode

import (
	"os"

	"golang.org/x/sys/unix"
)

// fadviseSequential hints that f will be read once, start to end, so the
// kernel can read ahead aggressively and drop pages behind the cursor.
func fadviseSequential(f *os.File) error {
	return unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
