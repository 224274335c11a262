package repository

import "errors"

// Common repository errors
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrEpicNotFound    = errors.New("epic not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
	ErrNoteNotFound    = errors.New("note not found")
	ErrPersonNotFound  = errors.New("person not found")
	ErrLabelNotFound   = errors.New("label not found")
	ErrStatusNotFound  = errors.New("status not found")
)
