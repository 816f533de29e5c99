//go:build !linux

package frontcode

import "os"

// fadviseSequential is a no-op outside Linux.
func fadviseSequential(f *os.File) error {
	return nil
}
