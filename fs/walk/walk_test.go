package walk

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/JMaximus76/filesync/fs/ferrors"
	jpath "github.com/JMaximus76/filesync/fs/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree creates root/{a/, b/(mode 000), c/d/file.txt} under a temp dir,
// matching the literal walker skip scenario.
func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))

	bDir := filepath.Join(root, "b")
	require.NoError(t, os.Mkdir(bDir, 0o755))
	require.NoError(t, os.Chmod(bDir, 0o000))
	t.Cleanup(func() { _ = os.Chmod(bDir, 0o755) })

	require.NoError(t, os.MkdirAll(filepath.Join(root, "c", "d"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c", "d", "file.txt"), []byte("hi"), 0o644))

	return root
}

// skipKinds are the non-fatal Kinds Step may return alongside a valid
// StepResult: a directory that could not be opened, or an entry within an
// otherwise-successful directory that could not be classified.
var skipKinds = map[ferrors.Kind]bool{
	ferrors.KindFWSkip:        true,
	ferrors.KindFWUnsupported: true,
	ferrors.KindFWUnknown:     true,
}

func runToCompletion(t *testing.T, s *State) ([]string, map[ferrors.Kind]int) {
	t.Helper()
	skips := map[ferrors.Kind]int{}
	var order []string
	for {
		res, err := s.Step()
		if err != nil {
			kind := ferrors.KindOf(err)
			if skipKinds[kind] {
				skips[kind]++
			} else {
				require.NoError(t, err)
			}
		}
		if res.Record != nil {
			order = append(order, res.Record.Path.String())
		}
		if res.Done {
			break
		}
	}
	return order, skips
}

func TestWalkerSkipLiteralScenario(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root bypasses directory permission bits")
	}

	root := buildTree(t)
	rootPath, err := jpath.NewPath(root)
	require.NoError(t, err)

	s, err := NewState(rootPath)
	require.NoError(t, err)

	order, skips := runToCompletion(t, s)
	assert.Equal(t, 1, skips[ferrors.KindFWSkip], "b must be skipped exactly once")

	want := []string{
		root,
		filepath.Join(root, "a"),
		filepath.Join(root, "c"),
		filepath.Join(root, "c", "d"),
	}
	assert.ElementsMatch(t, want, order)

	rec := s.Finalize()
	var dDir *DirRecord
	for i := range rec.Dirs {
		if rec.Dirs[i].Path.String() == filepath.Join(root, "c", "d") {
			dDir = &rec.Dirs[i]
		}
	}
	require.NotNil(t, dDir)
	require.Len(t, dDir.Entries, 1)
	assert.Equal(t, "file.txt", dDir.Entries[0].Name.String())
	assert.Equal(t, Regular, dDir.Entries[0].Kind)
}

func TestWalkerSkipsSymlinkAsUnsupported(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "r.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "r.txt"), filepath.Join(root, "link")))

	rootPath, err := jpath.NewPath(root)
	require.NoError(t, err)

	s, err := NewState(rootPath)
	require.NoError(t, err)

	_, skips := runToCompletion(t, s)
	assert.Equal(t, 1, skips[ferrors.KindFWUnsupported], "symlink must be skipped as an unsupported type")

	rec := s.Finalize()
	require.Len(t, rec.Dirs, 1)
	require.Len(t, rec.Dirs[0].Entries, 1, "only the regular file should survive classification")
	assert.Equal(t, "r.txt", rec.Dirs[0].Entries[0].Name.String())
}

// fakeUnresolvedDirEntry reports a type byte that is neither Regular, Dir,
// nor one of the definitely-unsupported types, forcing classifyEntries
// down the lstat-fallback path; its Name does not exist on disk, so the
// fallback lstat fails for a reason other than permission, exercising the
// DT_UNKNOWN-with-unresolvable-lstat case.
type fakeUnresolvedDirEntry struct{ name string }

func (f fakeUnresolvedDirEntry) Name() string {
	return f.name
}

func (f fakeUnresolvedDirEntry) IsDir() bool {
	return false
}

func (f fakeUnresolvedDirEntry) Type() fs.FileMode {
	return fs.ModeIrregular
}
func (f fakeUnresolvedDirEntry) Info() (fs.FileInfo, error) {
	return nil, fs.ErrInvalid
}

func TestClassifyEntriesReportsUnknownOnUnresolvableLstat(t *testing.T) {
	root := t.TempDir()
	dirPath, err := jpath.NewPath(root)
	require.NoError(t, err)

	s := &State{}
	files, skip := s.classifyEntries(dirPath, []fs.DirEntry{fakeUnresolvedDirEntry{name: "ghost"}})

	assert.Empty(t, files)
	assert.True(t, ferrors.Is(skip, ferrors.KindFWUnknown))
}

func TestNewStateRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	p, err := jpath.NewPath(file)
	require.NoError(t, err)

	_, err = NewState(p)
	assert.True(t, ferrors.Is(err, ferrors.KindFWState))
}

func TestStepAfterDoneIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	p, err := jpath.NewPath(dir)
	require.NoError(t, err)

	s, err := NewState(p)
	require.NoError(t, err)

	res, err := s.Step()
	require.NoError(t, err)
	assert.True(t, res.Done)

	res, err = s.Step()
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Nil(t, res.Record)
}
