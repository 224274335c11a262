package model

type Epic struct {
	EntityFields

	ProjectID   string     `gorm:"size:50;not null;index" json:"project_id"`
	IsInboxEpic bool       `gorm:"default:false;index" json:"is_inbox_epic,omitempty"`
	NoteIDs     StringList `gorm:"type:text" json:"notes,omitempty"`

	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

func (Epic) TableName() string { return "epics" }
