// Package path implements bounded Path/Name value types and a fixed-capacity
// composition buffer, matching the original's PATH_MAX/NAME_MAX string
// discipline instead of Go's unbounded strings.
package path

import (
	"strings"

	"github.com/JMaximus76/filesync/fs/ferrors"
)

// PathMax and NameMax mirror the POSIX limits the original bounds against.
const (
	PathMax = 4096
	NameMax = 255
)

// Path is an owned bounded string of length <= PathMax with no trailing '/'
// (except the root path itself, "/").
type Path struct {
	s string
}

// NewPath validates and wraps s as a Path, trimming trailing slashes first
// (a string made only of slashes becomes "/").
func NewPath(s string) (Path, error) {
	if len(s) > PathMax {
		return Path{}, ferrors.New(ferrors.KindPathLen)
	}
	if s != "/" {
		trimmed := strings.TrimRight(s, "/")
		if trimmed == "" && s != "" {
			trimmed = "/"
		}
		s = trimmed
	}
	if s == "" {
		return Path{}, ferrors.New(ferrors.KindInvalPath)
	}
	return Path{s: s}, nil
}

// String returns the path's text.
func (p Path) String() string { return p.s }

// Name is an owned bounded, nonempty string of length <= NameMax containing
// no '/'.
type Name struct {
	s string
}

// NewName validates and wraps s as a Name.
func NewName(s string) (Name, error) {
	if s == "" {
		return Name{}, ferrors.New(ferrors.KindInvalPath)
	}
	if len(s) > NameMax {
		return Name{}, ferrors.New(ferrors.KindNameLen)
	}
	if strings.ContainsRune(s, '/') {
		return Name{}, ferrors.New(ferrors.KindInvalPath)
	}
	return Name{s: s}, nil
}

// String returns the name's text.
func (n Name) String() string { return n.s }

// PathBuf is a mutable fixed-capacity composition buffer of PathMax+1 bytes,
// used to build a Path out of a Path and a Name without per-call
// allocation policy surprises.
type PathBuf struct {
	buf [PathMax + 1]byte
	len int
}

// Compose writes path + "/" + name into the buffer and returns the result
// as a Path. Fails with ferrors.KindPathOverflow when
// len(path)+1+len(name) > PathMax.
func (b *PathBuf) Compose(p Path, n Name) (Path, error) {
	total := len(p.s) + 1 + len(n.s)
	if total > PathMax {
		return Path{}, ferrors.New(ferrors.KindPathOverflow)
	}

	b.len = 0
	b.len += copy(b.buf[b.len:], p.s)
	if p.s != "/" {
		b.buf[b.len] = '/'
		b.len++
	}
	b.len += copy(b.buf[b.len:], n.s)

	return Path{s: string(b.buf[:b.len])}, nil
}
