package model

type Note struct {
	EntityFields

	NoteIDs StringList `gorm:"type:text" json:"notes,omitempty"`
}

func (Note) TableName() string { return "notes" }
