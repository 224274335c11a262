package handler

import (
	"testing"

	"tracker/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChecklist() model.Checklist {
	return model.Checklist{
		{ID: "aaaa1111", Title: "write tests", Status: model.StatusTodo},
		{ID: "bbbb2222", Title: "review", Status: model.StatusDone},
	}
}

func TestApplyChecklist_Add(t *testing.T) {
	items, err := applyChecklist(sampleChecklist(), ChecklistRequest{Action: "add", Title: "deploy"})

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "deploy", items[2].Title)
	assert.Equal(t, model.StatusTodo, items[2].Status)
	assert.Len(t, items[2].ID, 8)
}

func TestApplyChecklist_Add_MissingTitle(t *testing.T) {
	_, err := applyChecklist(sampleChecklist(), ChecklistRequest{Action: "add"})

	assert.Error(t, err)
}

func TestApplyChecklist_Toggle(t *testing.T) {
	items, err := applyChecklist(sampleChecklist(), ChecklistRequest{Action: "toggle", ItemID: "aaaa1111"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, items[0].Status)

	// Toggling a done item brings it back to todo.
	items, err = applyChecklist(items, ChecklistRequest{Action: "toggle", ItemID: "bbbb2222"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, items[1].Status)
}

func TestApplyChecklist_Toggle_NotFound(t *testing.T) {
	_, err := applyChecklist(sampleChecklist(), ChecklistRequest{Action: "toggle", ItemID: "missing0"})

	assert.ErrorIs(t, err, errChecklistItemNotFound)
}

func TestApplyChecklist_Delete(t *testing.T) {
	items, err := applyChecklist(sampleChecklist(), ChecklistRequest{Action: "delete", ItemID: "aaaa1111"})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bbbb2222", items[0].ID)
}

func TestApplyChecklist_Delete_NotFound(t *testing.T) {
	_, err := applyChecklist(sampleChecklist(), ChecklistRequest{Action: "delete", ItemID: "missing0"})

	assert.ErrorIs(t, err, errChecklistItemNotFound)
}
