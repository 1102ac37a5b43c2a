//go:build linux || darwin || freebsd

package walk

import (
	"io/fs"
	"syscall"
)

// inodeOf extracts the inode number from a POSIX FileInfo's underlying
// syscall.Stat_t.
func inodeOf(info fs.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(st.Ino)
}
