package mdfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"tracker/internal/mdfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullFrontmatter(t *testing.T) {
	path := writeFile(t, t.TempDir(), "task-deadbeef.md", `---
title: Fix the build
status: in_progress
priority: 1
created: 2026-01-02T10:00:00
labels:
  - backend
  - ci
people: "@alice, @bob"
updates:
  - timestamp: 2026-01-03T09:00:00
    content: Started work
---

Some task content.
`)

	fm, content, err := mdfile.Load(path, "fallback", "todo")

	require.NoError(t, err)
	assert.Equal(t, "Fix the build", fm.Title)
	assert.Equal(t, "in_progress", fm.Status)
	require.NotNil(t, fm.Priority)
	assert.Equal(t, 1, *fm.Priority)
	assert.Equal(t, []string{"backend", "ci"}, fm.Labels())
	assert.Equal(t, []string{"alice", "bob"}, fm.People())
	require.Len(t, fm.Updates, 1)
	assert.Equal(t, "Started work", fm.Updates[0].Content)
	assert.Equal(t, "Some task content.\n", content)
}

func TestLoad_NoFrontmatter(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note-deadbeef.md", "Just a body, no metadata.\n")

	fm, content, err := mdfile.Load(path, "note-deadbeef", "active")

	require.NoError(t, err)
	assert.Equal(t, "note-deadbeef", fm.Title)
	assert.Equal(t, "active", fm.Status)
	assert.Equal(t, "Just a body, no metadata.\n", content)
}

func TestLoad_MalformedYAMLFallsBack(t *testing.T) {
	path := writeFile(t, t.TempDir(), "task-deadbeef.md", "---\ntitle: [unclosed\nstatus::bad\n---\nbody survives\n")

	fm, content, err := mdfile.Load(path, "fallback", "todo")

	require.NoError(t, err)
	assert.Equal(t, "fallback", fm.Title)
	assert.Equal(t, "todo", fm.Status)
	assert.Equal(t, "body survives\n", content)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "task-deadbeef.md", "")

	fm, content, err := mdfile.Load(path, "fallback", "todo")

	require.NoError(t, err)
	assert.Equal(t, "fallback", fm.Title)
	assert.Empty(t, content)
}

func TestLoad_CRLFAndBOM(t *testing.T) {
	path := writeFile(t, t.TempDir(), "task-deadbeef.md", "\xef\xbb\xbf---\r\ntitle: Windows file\r\n---\r\n\r\nbody\r\n")

	fm, content, err := mdfile.Load(path, "fallback", "todo")

	require.NoError(t, err)
	assert.Equal(t, "Windows file", fm.Title)
	assert.Equal(t, "body\n", content)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := mdfile.Load(filepath.Join(t.TempDir(), "absent.md"), "x", "todo")

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "task-deadbeef.md")

	in := &mdfile.Frontmatter{
		Title:   "Round trip",
		Status:  "todo",
		SeqID:   "t7",
		Created: "2026-01-02T10:00:00",
	}
	require.NoError(t, mdfile.Save(path, in, "the body\n"))

	fm, content, err := mdfile.Load(path, "fallback", "active")

	require.NoError(t, err)
	assert.Equal(t, "Round trip", fm.Title)
	assert.Equal(t, "todo", fm.Status)
	assert.Equal(t, "t7", fm.SeqID)
	assert.Equal(t, "the body\n", content)
}

func TestNewID(t *testing.T) {
	id := mdfile.NewID("task")

	assert.True(t, mdfile.ValidateID(id, "task"))
	assert.Len(t, id, len("task-")+8)
}

func TestValidateID(t *testing.T) {
	assert.True(t, mdfile.ValidateID("task-deadbeef", "task"))
	assert.True(t, mdfile.ValidateID("project-inbox", "project"))
	assert.False(t, mdfile.ValidateID("project-inbox", "task"))
	assert.False(t, mdfile.ValidateID("task-XYZ", "task"))
	assert.False(t, mdfile.ValidateID("task-deadbeef1", "task"))
	assert.False(t, mdfile.ValidateID("epic-deadbeef", "task"))
	assert.False(t, mdfile.ValidateID("task-deadbeef", "unknown"))
}

func TestSafeJoin(t *testing.T) {
	root := t.TempDir()

	inside, err := mdfile.SafeJoin(root, "projects", "project-inbox.md")
	require.NoError(t, err)
	assert.Contains(t, inside, root)

	_, err = mdfile.SafeJoin(root, "..", "outside.md")
	assert.ErrorIs(t, err, mdfile.ErrUnsafePath)

	_, err = mdfile.SafeJoin(root, "projects", "..", "..", "escape.md")
	assert.ErrorIs(t, err, mdfile.ErrUnsafePath)
}
