// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverDirectorySkipsProcessed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf")
	writeFile(t, dir, "b.pdf")
	writeFile(t, dir, "b.txt")

	res, err := Discover(dir, ".txt")
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "a.pdf")}, res.Files)
	assert.Equal(t, 2, res.Found)
	assert.Equal(t, 1, res.Skipped)
	assert.False(t, res.Single)
}

func TestDiscoverTargetExtensionOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf")
	writeFile(t, dir, "a.md")

	res, err := Discover(dir, ".txt")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf")}, res.Files)
	assert.Zero(t, res.Skipped)
}

func TestDiscoverRecursiveSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "z.pdf")
	writeFile(t, dir, "sub/deeper/c.PDF")
	writeFile(t, dir, "sub/b.pdf")
	writeFile(t, dir, "a.Pdf")
	writeFile(t, dir, "notes.txt")
	writeFile(t, dir, "pdf")

	res, err := Discover(dir, ".md")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.Pdf"),
		filepath.Join(dir, "sub", "b.pdf"),
		filepath.Join(dir, "sub", "deeper", "c.PDF"),
		filepath.Join(dir, "z.pdf"),
	}, res.Files)
	assert.Equal(t, 4, res.Found)
}

func TestDiscoverAllProcessed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf")
	writeFile(t, dir, "a.md")

	res, err := Discover(dir, ".md")
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.Equal(t, 1, res.Skipped)
}

func TestDiscoverSymlinkDeduplicated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf")
	if err := os.Symlink(filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.pdf")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res, err := Discover(dir, ".md")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf")}, res.Files)
}

func TestDiscoverSymlinkedRoot(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "real")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "sub"), 0o755))
	writeFile(t, target, "a.pdf")
	writeFile(t, filepath.Join(target, "sub"), "b.pdf")
	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(target, link))

	res, err := Discover(link, ".txt")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(link, "a.pdf"),
		filepath.Join(link, "sub", "b.pdf"),
	}, res.Files)
	assert.Equal(t, 2, res.Found)
	assert.False(t, res.Single)
}

func TestDiscoverSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "report.PDF")

	res, err := Discover(filepath.Join(dir, "report.PDF"), ".txt")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "report.PDF")}, res.Files)
	assert.True(t, res.Single)
}

func TestDiscoverErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "file that is not a pdf",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "notes.txt")
				return filepath.Join(dir, "notes.txt")
			},
			wantErr: ErrNotAPDF,
		},
		{
			name: "directory without pdfs",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "notes.txt")
				return dir
			},
			wantErr: ErrNoPDFsFound,
		},
		{
			name: "missing path",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			wantErr: ErrPathNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Discover(tt.setup(t), ".md")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSiblingPath(t *testing.T) {
	assert.Equal(t, "/x/doc.txt", SiblingPath("/x/doc.pdf", ".txt"))
	assert.Equal(t, "/x/doc.v2.md", SiblingPath("/x/doc.v2.PDF", ".md"))
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestNextFreePath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "doc.txt")
	assert.Equal(t, target, NextFreePath(target))

	writeFile(t, dir, "doc.txt")
	writeFile(t, dir, "doc_1.txt")
	assert.Equal(t, filepath.Join(dir, "doc_2.txt"), NextFreePath(target))

	writeFile(t, dir, "doc_3.txt")
	writeFile(t, dir, "doc_2.txt")
	assert.Equal(t, filepath.Join(dir, "doc_4.txt"), NextFreePath(target))
}
