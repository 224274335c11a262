package handler

import (
	"errors"

	"tracker/internal/model"

	"github.com/google/uuid"
)

// ChecklistRequest is one mutation of a task's or subtask's inline
// checklist.
type ChecklistRequest struct {
	Action string `json:"action" binding:"required,oneof=add toggle delete"`
	ItemID string `json:"item_id"`
	Title  string `json:"title"`
}

var errChecklistItemNotFound = errors.New("checklist item not found")

// applyChecklist returns the checklist after the requested mutation.
func applyChecklist(items model.Checklist, req ChecklistRequest) (model.Checklist, error) {
	switch req.Action {
	case "add":
		if req.Title == "" {
			return nil, errors.New("title is required")
		}
		return append(items, model.ChecklistItem{
			ID:     uuid.NewString()[:8],
			Title:  req.Title,
			Status: model.StatusTodo,
		}), nil

	case "toggle":
		for i, item := range items {
			if item.ID == req.ItemID {
				if items[i].Status == model.StatusDone {
					items[i].Status = model.StatusTodo
				} else {
					items[i].Status = model.StatusDone
				}
				return items, nil
			}
		}
		return nil, errChecklistItemNotFound

	case "delete":
		for i, item := range items {
			if item.ID == req.ItemID {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, errChecklistItemNotFound
	}
	return nil, errors.New("unknown action")
}
