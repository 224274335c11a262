package model

type Task struct {
	EntityFields

	ProjectID string  `gorm:"size:50;not null;index" json:"project_id"`
	EpicID    *string `gorm:"size:50;index" json:"epic_id,omitempty"`

	Dependencies Dependencies `gorm:"type:text" json:"dependencies"`
	Checklist    Checklist    `gorm:"type:text" json:"checklist"`
	NoteIDs      StringList   `gorm:"type:text" json:"notes,omitempty"`

	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
	Epic    *Epic   `gorm:"foreignKey:EpicID" json:"-"`
}

func (Task) TableName() string { return "tasks" }
