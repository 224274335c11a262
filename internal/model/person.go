package model

import "time"

type Person struct {
	ID          string     `gorm:"primaryKey;size:50" json:"id"`
	Name        string     `gorm:"size:200;uniqueIndex;not null" json:"name"`
	DisplayName string     `gorm:"size:200" json:"display_name,omitempty"`
	Email       string     `gorm:"size:254" json:"email,omitempty"`
	Phone       string     `gorm:"size:50" json:"phone,omitempty"`
	JobTitle    string     `gorm:"size:200" json:"job_title,omitempty"`
	Company     string     `gorm:"size:200" json:"company,omitempty"`
	Content     string     `json:"content,omitempty"`
	NoteIDs     StringList `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Person) TableName() string { return "persons" }
