//go:build linux

package frontcode

import "golang.org/x/sys/unix"

// prefaultRegion advises the kernel to fault in mm's pages eagerly rather
// than one page at a time as the decode cursor walks it, trading a burst
// of page faults up front for a smoother read-through pass.
func prefaultRegion(mm []byte) error {
	if len(mm) == 0 {
		return nil
	}
	return unix.Madvise(mm, unix.MADV_WILLNEED)
}
