package model

import "time"

// EntityPersonLink associates a person with any entity kind.
type EntityPersonLink struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EntityType string    `gorm:"size:20;not null;uniqueIndex:idx_person_link" json:"entity_type"`
	EntityID   string    `gorm:"size:50;not null;uniqueIndex:idx_person_link;index" json:"entity_id"`
	PersonID   string    `gorm:"size:50;not null;uniqueIndex:idx_person_link;index" json:"person_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Person Person `gorm:"foreignKey:PersonID" json:"-"`
}

func (EntityPersonLink) TableName() string { return "entity_person_links" }

// EntityLabelLink associates a label with any entity kind.
type EntityLabelLink struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EntityType string    `gorm:"size:20;not null;uniqueIndex:idx_label_link" json:"entity_type"`
	EntityID   string    `gorm:"size:50;not null;uniqueIndex:idx_label_link;index" json:"entity_id"`
	LabelID    uint      `gorm:"not null;uniqueIndex:idx_label_link;index" json:"label_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Label Label `gorm:"foreignKey:LabelID" json:"-"`
}

func (EntityLabelLink) TableName() string { return "entity_label_links" }
