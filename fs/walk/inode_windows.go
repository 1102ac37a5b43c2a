//go:build windows

package walk

import "io/fs"

// inodeOf has no direct analogue on Windows without opening a handle for
// GetFileInformationByHandle; the walker's contract only requires a stable
// per-entry identifier within one step, not cross-platform inode parity, so
// this returns 0. Callers that need a real file index on Windows should
// open the entry themselves.
func inodeOf(info fs.FileInfo) uint64 {
	return 0
}
