package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// ChecklistItem is a single inline checklist entry on a task or subtask.
type ChecklistItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"` // todo or done
}

// Checklist is stored as a JSON text column.
type Checklist []ChecklistItem

func (c Checklist) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	return string(b), err
}

func (c *Checklist) Scan(value interface{}) error {
	return scanJSON(value, c)
}

// Dependencies records cross-task dependency edges in both directions.
type Dependencies struct {
	Blocks    []string `json:"blocks,omitempty"`
	BlockedBy []string `json:"blocked_by,omitempty"`
}

func (d Dependencies) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	return string(b), err
}

func (d *Dependencies) Scan(value interface{}) error {
	return scanJSON(value, d)
}

// StringList is a JSON array column, used for linked note IDs.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// ProjectStats is the aggregated roll-up cached on a project.
type ProjectStats struct {
	EpicsCount           int `json:"epics_count"`
	TasksCount           int `json:"tasks_count"`
	DoneTasksCount       int `json:"done_tasks_count"`
	SubtasksCount        int `json:"subtasks_count"`
	DoneSubtasksCount    int `json:"done_subtasks_count"`
	CompletionPercentage int `json:"completion_percentage"`
}

func (s ProjectStats) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *ProjectStats) Scan(value interface{}) error {
	return scanJSON(value, s)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported JSON column type")
	}
}
