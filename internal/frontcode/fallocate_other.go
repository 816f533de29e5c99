//go:build !linux

package frontcode

import "os"

// fallocateFile is a no-op outside Linux; darwin/BSD lack a portable
// posix_fallocate equivalent worth shelling out for here.
func fallocateFile(f *os.File, size int64) error {
	return nil
}
