package model

// Subtask belongs to a task; project and epic references are denormalized
// from the parent task so roll-up queries stay flat.
type Subtask struct {
	EntityFields

	TaskID    string  `gorm:"size:50;not null;index" json:"task_id"`
	ProjectID string  `gorm:"size:50;not null;index" json:"project_id"`
	EpicID    *string `gorm:"size:50;index" json:"epic_id,omitempty"`

	Dependencies Dependencies `gorm:"type:text" json:"dependencies"`
	Checklist    Checklist    `gorm:"type:text" json:"checklist"`
	NoteIDs      StringList   `gorm:"type:text" json:"notes,omitempty"`

	Task    Task    `gorm:"foreignKey:TaskID" json:"-"`
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

func (Subtask) TableName() string { return "subtasks" }
