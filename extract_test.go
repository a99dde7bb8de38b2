package sqlar

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRestoresModeAndTime(t *testing.T) {
	t.Parallel()

	a := newTestArchive(t)
	mtime := time.Unix(1578096131, 0)
	require.NoError(t, a.WriteString("docs/readme.txt", "Fantastic prose\n",
		WriteWithMode(0o640),
		WriteWithModTime(mtime),
	))

	dir := t.TempDir()
	require.NoError(t, a.Extract("docs/readme.txt", dir))

	dest := filepath.Join(dir, "docs", "readme.txt")
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("Fantastic prose\n"), content)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.EqualValues(t, 0o640, info.Mode().Perm())
	}
	assert.Equal(t, mtime.Unix(), info.ModTime().Unix())
}

func TestExtractEmptyFile(t *testing.T) {
	t.Parallel()

	// An empty payload is stored as a zero-length blob, not NULL; only
	// directory rows carry NULL data. Both must extract to the right kind.
	a := newTestArchive(t)
	require.NoError(t, a.Write("empty.txt", []byte{}))

	dir := t.TempDir()
	require.NoError(t, a.Extract("empty.txt", dir))

	st, err := os.Stat(filepath.Join(dir, "empty.txt"))
	require.NoError(t, err)
	assert.True(t, st.Mode().IsRegular(), "empty file must extract as a regular file")
	assert.Zero(t, st.Size())

	// ExtractAll takes a separate query path; it must agree.
	all := t.TempDir()
	require.NoError(t, a.ExtractAll(all))
	st, err = os.Stat(filepath.Join(all, "empty.txt"))
	require.NoError(t, err)
	assert.True(t, st.Mode().IsRegular())
}

func TestWriteFileEmptyRoundTrip(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "zero.txt")
	require.NoError(t, os.WriteFile(src, nil, 0o644))

	a := newTestArchive(t)
	require.NoError(t, a.WriteFile(src, WriteWithName("zero.txt")))

	info, err := a.Info("zero.txt")
	require.NoError(t, err)
	assert.Zero(t, info.Size)

	dir := t.TempDir()
	require.NoError(t, a.Extract("zero.txt", dir))
	st, err := os.Stat(filepath.Join(dir, "zero.txt"))
	require.NoError(t, err)
	assert.True(t, st.Mode().IsRegular())
	assert.Zero(t, st.Size())
}

func TestExtractMissing(t *testing.T) {
	t.Parallel()

	a := newTestArchive(t)
	require.ErrorIs(t, a.Extract("nope", t.TempDir()), ErrNotFound)
}

func TestExtractAll(t *testing.T) {
	t.Parallel()

	entries := map[string]string{
		"a.txt":        "alpha",
		"sub/b.txt":    "beta",
		"sub/in/c.txt": "gamma",
	}
	a := newTestArchive(t)
	for name, content := range entries {
		require.NoError(t, a.WriteString(name, content))
	}

	dir := t.TempDir()
	require.NoError(t, a.ExtractAll(dir))

	for name, want := range entries {
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		require.NoError(t, err)
		assert.Equal(t, []byte(want), content)
	}
}

func TestExtractAllNamed(t *testing.T) {
	t.Parallel()

	a := newTestArchive(t)
	require.NoError(t, a.WriteString("keep.txt", "keep"))
	require.NoError(t, a.WriteString("skip.txt", "skip"))

	dir := t.TempDir()
	require.NoError(t, a.ExtractAll(dir, "keep.txt"))

	_, err := os.Stat(filepath.Join(dir, "keep.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "skip.txt"))
	require.Error(t, err)

	require.ErrorIs(t, a.ExtractAll(dir, "keep.txt", "nope.txt"), ErrNotFound)
}

func TestWriteFileRoundTrip(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "source.txt")
	require.NoError(t, os.WriteFile(src, []byte("from disk"), 0o600))
	mtime := time.Unix(1578096145, 0)
	require.NoError(t, os.Chtimes(src, time.Now(), mtime))

	a := newTestArchive(t)
	require.NoError(t, a.WriteFile(src, WriteWithName("imported/source.txt")))

	content, err := a.Read("imported/source.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("from disk"), content)

	info, err := a.Info("imported/source.txt")
	require.NoError(t, err)
	assert.Equal(t, mtime.Unix(), info.ModTime.Unix())
	if runtime.GOOS != "windows" {
		assert.EqualValues(t, 0o600, info.Mode)
	}
}

func TestWriteFileDefaultName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	a := newTestArchive(t)
	require.NoError(t, a.WriteFile(src))

	ok, err := a.Contains(filepath.ToSlash(src))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWriteFileDirectory(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "emptydir")
	require.NoError(t, os.Mkdir(src, 0o755))

	a := newTestArchive(t)
	require.NoError(t, a.WriteFile(src, WriteWithName("emptydir")))

	info, err := a.Info("emptydir")
	require.NoError(t, err)
	assert.Zero(t, info.Size)

	content, err := a.Read("emptydir")
	require.NoError(t, err)
	assert.Empty(t, content)

	dest := t.TempDir()
	require.NoError(t, a.Extract("emptydir", dest))
	st, err := os.Stat(filepath.Join(dest, "emptydir"))
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestWriteFileSymlink(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("pointed at"), 0o644))
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	a := newTestArchive(t)
	require.NoError(t, a.WriteFile(link, WriteWithName("link.txt")))

	info, err := a.Info("link.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), info.Size)

	// Read returns the stored target verbatim; no decompression applies.
	storedTarget, err := a.Read("link.txt")
	require.NoError(t, err)
	assert.NotEmpty(t, storedTarget)

	dest := t.TempDir()
	require.NoError(t, a.Extract("link.txt", dest))
	got, err := os.Readlink(filepath.Join(dest, "link.txt"))
	require.NoError(t, err)
	assert.Equal(t, string(storedTarget), got)
}
