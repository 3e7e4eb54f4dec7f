package sequence

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frames = "/frames"

// newFrameFs returns an in-memory filesystem holding frames/<name> for each
// entry of files, with the map value as content.
func newFrameFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(frames, 0o755))
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(frames, name), []byte(content), 0o644))
	}
	return fs
}

// listing returns name -> content for every regular file in dir.
func listing(t *testing.T, fs afero.Fs, dir string) map[string]string {
	t.Helper()
	infos, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	out := make(map[string]string)
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		data, err := afero.ReadFile(fs, filepath.Join(dir, fi.Name()))
		require.NoError(t, err)
		out[fi.Name()] = string(data)
	}
	return out
}

// failingFs fails any Rename whose target base name equals failTo.
type failingFs struct {
	afero.Fs
	failTo string
}

func (f *failingFs) Rename(oldname, newname string) error {
	if filepath.Base(newname) == f.failTo {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: os.ErrPermission}
	}
	return f.Fs.Rename(oldname, newname)
}

func TestPlan(t *testing.T) {
	fs := newFrameFs(t, map[string]string{
		"c.jpg":     "c",
		"a.jpg":     "a",
		"B.jpg":     "B",
		"d.JPG":     "d",
		"notes.txt": "n",
	})
	require.NoError(t, fs.Mkdir(filepath.Join(frames, "sub.jpg"), 0o755))

	plan, err := NewRenamer(fs).Plan(frames, Options{})
	require.NoError(t, err)

	assert.Equal(t, frames, plan.Dir)
	assert.Equal(t, ".jpg", plan.Ext)
	assert.Equal(t, []Rename{
		{From: "B.jpg", To: "1.jpg"},
		{From: "a.jpg", To: "2.jpg"},
		{From: "c.jpg", To: "3.jpg"},
	}, plan.Renames)
}

func TestPlan_StartAndExt(t *testing.T) {
	fs := newFrameFs(t, map[string]string{"x.png": "x", "y.png": "y", "z.jpg": "z"})

	plan, err := NewRenamer(fs).Plan(frames, Options{Ext: ".png", Start: 10})
	require.NoError(t, err)
	assert.Equal(t, []Rename{
		{From: "x.png", To: "10.png"},
		{From: "y.png", To: "11.png"},
	}, plan.Renames)
}

func TestPlan_MissingDir(t *testing.T) {
	_, err := NewRenamer(afero.NewMemMapFs()).Plan("/nowhere", Options{})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	fs := newFrameFs(t, map[string]string{
		"c.jpg":     "c",
		"a.jpg":     "a",
		"b.jpg":     "b",
		"notes.txt": "notes",
	})
	var out bytes.Buffer
	r := NewRenamer(fs)
	r.Out = &out

	res, err := r.Run(context.Background(), frames, Options{})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"1.jpg":     "a",
		"2.jpg":     "b",
		"3.jpg":     "c",
		"notes.txt": "notes",
	}, listing(t, fs, frames))
	assert.Equal(t, 3, res.Found)
	assert.Equal(t, 3, res.Renamed)
	assert.Equal(t, "Found 3 images.\nRenaming complete.\n", out.String())
}

func TestRun_NoMatches(t *testing.T) {
	fs := newFrameFs(t, map[string]string{"notes.txt": "n"})
	var out bytes.Buffer
	r := NewRenamer(fs)
	r.Out = &out

	res, err := r.Run(context.Background(), frames, Options{JournalPath: "/journal.yaml"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Found)
	assert.Equal(t, 0, res.Renamed)
	assert.Equal(t, map[string]string{"notes.txt": "n"}, listing(t, fs, frames))
	assert.True(t, strings.HasPrefix(out.String(), "Found 0 images.\n"))

	exists, err := afero.Exists(fs, "/journal.yaml")
	require.NoError(t, err)
	assert.False(t, exists, "no journal for an empty batch")
}

func TestRun_AlreadySequential(t *testing.T) {
	files := map[string]string{"1.jpg": "one", "2.jpg": "two", "3.jpg": "three"}
	fs := newFrameFs(t, files)

	res, err := NewRenamer(fs).Run(context.Background(), frames, Options{})
	require.NoError(t, err)

	assert.Equal(t, files, listing(t, fs, frames))
	assert.Equal(t, 3, res.Renamed, "each file is still renamed")
	assert.Equal(t, 3, res.Unchanged)
}

func TestRun_SwapsThroughTemporaryNames(t *testing.T) {
	// Sorted order is 0.jpg, 1.jpg, 10.jpg: every file wants a name held by
	// another selected file.
	fs := newFrameFs(t, map[string]string{"0.jpg": "zero", "1.jpg": "one", "10.jpg": "ten"})

	_, err := NewRenamer(fs).Run(context.Background(), frames, Options{})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"1.jpg": "zero",
		"2.jpg": "one",
		"3.jpg": "ten",
	}, listing(t, fs, frames))
}

func TestRun_TargetHeldByOutsider(t *testing.T) {
	fs := newFrameFs(t, map[string]string{"a.jpg": "a", "b.jpg": "b"})
	require.NoError(t, fs.Mkdir(filepath.Join(frames, "2.jpg"), 0o755))

	_, err := NewRenamer(fs).Run(context.Background(), frames, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTargetExists)

	assert.Equal(t, map[string]string{"a.jpg": "a", "b.jpg": "b"}, listing(t, fs, frames))
}

func TestRun_DryRun(t *testing.T) {
	files := map[string]string{"b.jpg": "b", "a.jpg": "a"}
	fs := newFrameFs(t, files)
	var out bytes.Buffer
	r := NewRenamer(fs)
	r.Out = &out

	res, err := r.Run(context.Background(), frames, Options{DryRun: true, JournalPath: "/j.yaml"})
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, 0, res.Renamed)
	assert.Equal(t, files, listing(t, fs, frames))
	assert.Contains(t, out.String(), "a.jpg -> 1.jpg\n")
	assert.Contains(t, out.String(), "b.jpg -> 2.jpg\n")
	assert.True(t, strings.HasSuffix(out.String(), "Dry run complete, nothing renamed.\n"))
	assert.NotContains(t, out.String(), "Renaming complete.")

	exists, _ := afero.Exists(fs, "/j.yaml")
	assert.False(t, exists)
}

func TestRun_RollbackOnFailure(t *testing.T) {
	files := map[string]string{"a.jpg": "a", "b.jpg": "b", "c.jpg": "c"}
	fs := &failingFs{Fs: newFrameFs(t, files), failTo: "2.jpg"}

	_, err := NewRenamer(fs).Run(context.Background(), frames, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)

	// Original names restored and no temporary files left behind.
	assert.Equal(t, files, listing(t, fs, frames))
}

func TestRun_Cancelled(t *testing.T) {
	files := map[string]string{"a.jpg": "a", "b.jpg": "b"}
	fs := newFrameFs(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenamer(fs).Run(ctx, frames, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, files, listing(t, fs, frames))
}

func TestRun_OsFs(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{"c.jpg": "c", "a.jpg": "a", "b.jpg": "b", "notes.txt": "n"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	_, err := NewRenamer(afero.NewOsFs()).Run(context.Background(), dir, Options{})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"1.jpg", "2.jpg", "3.jpg", "notes.txt"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestApply_EmptyPlan(t *testing.T) {
	res, err := NewRenamer(afero.NewMemMapFs()).Apply(context.Background(), &Plan{Dir: frames}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Found)
}
