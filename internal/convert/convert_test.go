// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mdconvert/internal/report"
)

// writeTree creates files (relative path -> content) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"report.pdf", true},
		{"REPORT.PDF", true},
		{"slides.PpTx", true},
		{"notes.txt", true},
		{"archive.zip", true},
		{"image.bmp", false},
		{"README", false},
		{"notes.md", false},
		{"dir.pdf/file", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSupported(tt.path), tt.path)
	}
	assert.Len(t, SupportedExtensions, 16)
}

func TestIsLegacySpreadsheet(t *testing.T) {
	assert.True(t, IsLegacySpreadsheet("data.xls"))
	assert.True(t, IsLegacySpreadsheet("DATA.XLS"))
	assert.False(t, IsLegacySpreadsheet("data.xlsx"))
}

func TestDestinationFor(t *testing.T) {
	in := filepath.FromSlash("/in")
	out := filepath.FromSlash("/out")

	got, err := DestinationFor(in, out, filepath.FromSlash("/in/a/b/report.final.pdf"))
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/out/a/b/report.final.md"), got)

	got, err = DestinationFor(in, out, filepath.FromSlash("/in/notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/out/notes.md"), got)
}

func TestPlanJob(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeTree(t, in, map[string]string{
		"report.pdf":        "pdf",
		"image.bmp":         "bmp",
		"sub/notes.txt":     "notes",
		"sub/deep/data.xls": "xls",
	})

	job, err := PlanJob(in, out)
	require.NoError(t, err)
	require.Equal(t, 4, job.Len())

	byRel := map[string]Entry{}
	for _, e := range job.Entries {
		byRel[e.Rel] = e
	}
	assert.Equal(t, filepath.Join(out, "sub", "deep", "data.md"), byRel["sub/deep/data.xls"].Destination)
	assert.Equal(t, filepath.Join(out, "image.md"), byRel["image.bmp"].Destination,
		"unsupported files are still planned so they count toward progress")
	assert.Equal(t, filepath.Join(in, "sub", "notes.txt"), byRel["sub/notes.txt"].Source)
}

func TestPlanJob_EmptyDirectory(t *testing.T) {
	job, err := PlanJob(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, job.Len())
}

func TestPlanJob_InvalidInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := PlanJob(missing, t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidInputDirectory)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = PlanJob(file, t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidInputDirectory)
}

func TestPlanJob_FollowsFileSymlinks(t *testing.T) {
	in := t.TempDir()
	elsewhere := t.TempDir()
	writeTree(t, in, map[string]string{"a.txt": "plain"})
	writeTree(t, elsewhere, map[string]string{"real.txt": "linked content", "dir/inner.txt": "inner"})
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "real.txt"), filepath.Join(in, "linked.txt")))
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "missing.txt"), filepath.Join(in, "broken.txt")))
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "dir"), filepath.Join(in, "dirlink")))

	out := t.TempDir()
	job, err := PlanJob(in, out)
	require.NoError(t, err)

	var rels []string
	for _, e := range job.Entries {
		rels = append(rels, e.Rel)
	}
	assert.Equal(t, []string{"a.txt", "broken.txt", "linked.txt"}, rels,
		"file links are planned, directory links are not descended into")

	runLog := &report.RunLog{}
	b := &Batch{Converter: NewNativeConverter(), Reporter: report.NewReporter(nil, runLog)}
	result, err := b.Run(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total())
	assert.Equal(t, 2, result.Converted)
	assert.Equal(t, 1, result.Failed)

	got, err := os.ReadFile(filepath.Join(out, "linked.md"))
	require.NoError(t, err)
	assert.Equal(t, "linked content", string(got))
	assert.True(t, containsLine(runLog.Lines(), "failed:  "+filepath.Join(in, "broken.txt")))
}

// withWalkError makes PlanJob see err when it reaches a directory named dir.
func withWalkError(t *testing.T, dir string, err error) {
	t.Helper()
	orig := walkDir
	walkDir = func(root string, fn fs.WalkDirFunc) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr == nil && d.IsDir() && d.Name() == dir {
				return fn(path, d, err)
			}
			return fn(path, d, walkErr)
		})
	}
	t.Cleanup(func() { walkDir = orig })
}

func TestPlanJob_UnreadableSubdirectoryIsAWarning(t *testing.T) {
	in := t.TempDir()
	writeTree(t, in, map[string]string{
		"a.txt":        "a",
		"locked/b.txt": "b",
		"z/c.txt":      "c",
	})
	withWalkError(t, "locked", fs.ErrPermission)

	out := t.TempDir()
	job, err := PlanJob(in, out)
	require.NoError(t, err)
	require.Len(t, job.Warnings, 1)
	assert.Contains(t, job.Warnings[0], filepath.Join(in, "locked"))

	var rels []string
	for _, e := range job.Entries {
		rels = append(rels, e.Rel)
	}
	assert.Equal(t, []string{"a.txt", "z/c.txt"}, rels)

	runLog := &report.RunLog{}
	b := &Batch{Converter: &fakeConverter{}, Reporter: report.NewReporter(nil, runLog)}
	result, err := b.Run(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Converted)
	require.NotEmpty(t, runLog.Lines())
	assert.True(t, strings.HasPrefix(runLog.Lines()[0], "warning: cannot read "))
}

func TestPlanJob_UnreadableRootIsFatal(t *testing.T) {
	in := t.TempDir()
	writeTree(t, in, map[string]string{"a.txt": "a"})
	withWalkError(t, filepath.Base(in), fs.ErrPermission)

	_, err := PlanJob(in, t.TempDir())
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, fs.ErrPermission)
}
