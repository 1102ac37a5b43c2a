// Package walk implements a recursive file-system walker driven by an
// explicit stack of pending directory paths rather than OS-level recursion,
// so a caller can drive it one Step at a time and recover from a
// permission-denied directory without aborting the whole traversal.
package walk

import (
	"io/fs"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/JMaximus76/filesync/fs/ferrors"
	jpath "github.com/JMaximus76/filesync/fs/path"
)

// Kind classifies a walked entry.
type Kind int

const (
	Regular Kind = iota
	Directory
)

// FileEntry is one entry discovered while enumerating a directory.
type FileEntry struct {
	Kind  Kind
	Name  jpath.Name
	Inode uint64
}

// DirRecord is the immutable result of one completed Step: the directory
// that was enumerated and the entries found in it.
type DirRecord struct {
	Path    jpath.Path
	Entries []FileEntry
}

// Record is the final, immutable output of a complete walk: an ordered
// sequence of DirRecord in the order directories were popped from the
// pending stack (LIFO from the start path).
type Record struct {
	Dirs []DirRecord
}

// State holds a walk in progress: the stack of directories not yet visited
// and the records completed so far. State is single-threaded; callers must
// serialize access.
type State struct {
	pending   []jpath.Path
	completed []DirRecord
}

// NewState starts a walk rooted at start. Fails with ferrors.KindFWState if
// start is not a directory.
func NewState(start jpath.Path) (*State, error) {
	info, err := os.Lstat(start.String())
	if err != nil {
		return nil, ferrors.WrapErrno(err, "lstat start path")
	}
	if !info.IsDir() {
		return nil, ferrors.New(ferrors.KindFWState)
	}
	return &State{pending: []jpath.Path{start}}, nil
}

// StepResult is the outcome of one Step invocation.
type StepResult struct {
	// Record is nil when the step produced no record (the directory was
	// skipped).
	Record *DirRecord
	// Done is true once the pending stack is empty after this step.
	Done bool
}

// Step pops one pending path and enumerates it. A permission-denied open
// surfaces as a ferrors.KindFWSkip error with a valid StepResult so the
// caller can continue; any other open failure is fatal to the step.
func (s *State) Step() (StepResult, error) {
	if len(s.pending) == 0 {
		return StepResult{Done: true}, nil
	}

	last := len(s.pending) - 1
	p := s.pending[last]
	s.pending = s.pending[:last]

	dir, err := os.Open(p.String())
	if err != nil {
		if os.IsPermission(err) {
			logrus.WithField("path", p.String()).Warn("skipping directory: permission denied")
			return StepResult{Done: len(s.pending) == 0}, ferrors.New(ferrors.KindFWSkip)
		}
		return StepResult{}, ferrors.WrapErrno(err, "open directory")
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil {
		return StepResult{}, errors.Wrap(ferrors.WrapErrno(err, "readdir"), p.String())
	}

	files, skip := s.classifyEntries(p, entries)

	s.completed = append(s.completed, DirRecord{Path: p, Entries: files})
	result := StepResult{Record: &s.completed[len(s.completed)-1], Done: len(s.pending) == 0}
	return result, skip
}

// classifyEntries enumerates dir's entries, classifying each one and
// pushing discovered subdirectories onto the pending stack. Per-entry
// classification failures (unsupported or unresolvable types) are not
// fatal to the step: the entry is skipped, logged, and enumeration
// continues, but the first such skip's error is returned alongside the
// otherwise-complete file vector so the caller can observe it by kind,
// matching how a permission-denied Open already surfaces as a non-fatal
// ferrors.KindFWSkip alongside a valid StepResult.
func (s *State) classifyEntries(dir jpath.Path, entries []fs.DirEntry) ([]FileEntry, error) {
	var files []FileEntry
	var buf jpath.PathBuf
	var firstSkip error

	for _, de := range entries {
		name := de.Name()
		if name == "." || name == ".." {
			continue
		}
		nm, err := jpath.NewName(name)
		if err != nil {
			continue // name violates the bounded Name invariant: skip, not fatal
		}

		full, err := buf.Compose(dir, nm)
		if err != nil {
			continue // composed path would overflow PATH_MAX: skip, not fatal
		}

		kind, info, cerr := classifyDirent(de)
		if cerr != nil {
			logrus.WithField("path", full.String()).WithField("kind", ferrors.KindOf(cerr)).
				Warn("skipping unsupported entry type")
			if firstSkip == nil {
				firstSkip = errors.Wrap(cerr, full.String())
			}
			continue
		}
		if info == nil {
			st, ierr := os.Lstat(full.String())
			if ierr != nil {
				if os.IsPermission(ierr) {
					continue
				}
				logrus.WithField("path", full.String()).Warn("unknown entry type, lstat failed")
				if firstSkip == nil {
					firstSkip = errors.Wrap(ferrors.New(ferrors.KindFWUnknown), full.String())
				}
				continue
			}
			switch {
			case st.Mode().IsRegular():
				kind = Regular
			case st.Mode().IsDir():
				kind = Directory
			default:
				logrus.WithField("path", full.String()).Warn("unsupported entry type after lstat fallback")
				if firstSkip == nil {
					firstSkip = errors.Wrap(ferrors.New(ferrors.KindFWUnsupported), full.String())
				}
				continue
			}
			info = st
		}

		inode := inodeOf(info)
		files = append(files, FileEntry{Kind: kind, Name: nm, Inode: inode})

		if kind == Directory {
			s.pending = append(s.pending, full)
		}
	}
	return files, firstSkip
}

// classifyDirent inspects a dirent's cheap type byte. A definitely-
// unsupported type (symlink, device, socket, fifo) returns a
// ferrors.KindFWUnsupported error, meaning "skip, don't fall back". For
// every other entry err is nil and info is always nil, so the caller lstats
// the entry: the lstat result decides the final kind (replacing the kind
// returned here for a Regular/Directory type byte) and supplies the inode.
// The type byte therefore never saves the lstat of a regular file or
// directory.
func classifyDirent(de fs.DirEntry) (kind Kind, info fs.FileInfo, err error) {
	typ := de.Type()
	switch {
	case typ.IsRegular():
		return Regular, nil, nil
	case typ.IsDir():
		return Directory, nil, nil
	case typ&fs.ModeSymlink != 0, typ&fs.ModeDevice != 0, typ&fs.ModeNamedPipe != 0,
		typ&fs.ModeSocket != 0, typ&fs.ModeCharDevice != 0:
		return 0, nil, ferrors.New(ferrors.KindFWUnsupported)
	default:
		return 0, nil, nil // unresolved from the dirent alone: the caller's lstat classifies it
	}
}

// Finalize materializes the records completed so far as an immutable
// Record. It may be called before the walk is Done to snapshot partial
// progress, or after, to get the full result.
func (s *State) Finalize() Record {
	dirs := make([]DirRecord, len(s.completed))
	copy(dirs, s.completed)
	return Record{Dirs: dirs}
}
