package model

import "time"

// InboxProjectID is the singleton quick-capture project.
const InboxProjectID = "project-inbox"

type Project struct {
	EntityFields

	Color        string       `gorm:"size:7" json:"color,omitempty"`
	IsInbox      bool         `gorm:"default:false" json:"is_inbox,omitempty"`
	Stats        ProjectStats `gorm:"type:text" json:"stats"`
	StatsVersion *int         `json:"stats_version,omitempty"`
	StatsUpdated *time.Time   `json:"stats_updated,omitempty"`
	NoteIDs      StringList   `gorm:"type:text" json:"notes,omitempty"`
}

func (Project) TableName() string { return "projects" }
