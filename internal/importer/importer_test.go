package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tracker/internal/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEntity(t *testing.T, root string, rel, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func buildTree(t *testing.T) string {
	root := t.TempDir()

	writeEntity(t, root, "projects/project-cafebabe.md", "---\ntitle: Website\nstatus: active\n---\nProject body.\n")
	writeEntity(t, root, "projects/project-cafebabe/epics/epic-deadbeef.md", "---\ntitle: Launch\nseq_id: e1\n---\n")
	writeEntity(t, root, "projects/project-cafebabe/epics/epic-deadbeef/tasks/task-aaaabbbb.md", "---\ntitle: Ship it\nseq_id: t1\nstatus: in_progress\nlabels:\n  - backend\n---\nTask body.\n")
	writeEntity(t, root, "projects/project-cafebabe/epics/epic-deadbeef/tasks/task-aaaabbbb/subtasks/subtask-ccccdddd.md", "---\ntitle: Step one\nseq_id: st1\n---\n")
	writeEntity(t, root, "projects/project-cafebabe/tasks/task-12345678.md", "---\ntitle: Loose end\nseq_id: t2\n---\n")
	writeEntity(t, root, "notes/note-0badf00d.md", "---\ntitle: Meeting notes\nstatus: active\n---\nDiscussed the launch.\n")
	writeEntity(t, root, "people/person-feedface.md", "---\nname: alice\ndisplay_name: Alice\n---\n")

	return root
}

func TestImporter_DryRun_CountsTree(t *testing.T) {
	// Arrange
	root := buildTree(t)
	im := importer.New(nil, root, true)

	// Act
	stats, err := im.Run(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Projects)
	assert.Equal(t, 1, stats.Epics)
	assert.Equal(t, 2, stats.Tasks)
	assert.Equal(t, 1, stats.Subtasks)
	assert.Equal(t, 1, stats.Notes)
	assert.Equal(t, 1, stats.People)
	assert.Equal(t, 0, stats.Errors)
}

func TestImporter_DryRun_CollectsBadFileNames(t *testing.T) {
	// Arrange
	root := buildTree(t)
	writeEntity(t, root, "notes/README.md", "not an entity\n")
	writeEntity(t, root, "projects/task-aaaabbbb.md", "wrong kind in projects dir\n")
	im := importer.New(nil, root, true)

	// Act
	stats, err := im.Run(context.Background())

	// Assert
	assert.Error(t, err)
	assert.Equal(t, 2, stats.Errors)

	// Good files still import around the bad ones.
	assert.Equal(t, 1, stats.Projects)
	assert.Equal(t, 1, stats.Notes)
}

func TestImporter_DryRun_EmptyRoot(t *testing.T) {
	// Arrange
	im := importer.New(nil, t.TempDir(), true)

	// Act
	stats, err := im.Run(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &importer.Stats{}, stats)
}
