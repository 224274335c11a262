package model

import "time"

// Status defines a named workflow state and the entity kinds it applies to.
// EntityTypes is comma separated, e.g. "task,subtask".
type Status struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	DisplayName string    `gorm:"size:100;not null" json:"display_name"`
	EntityTypes string    `gorm:"size:200" json:"entity_types"`
	Color       string    `gorm:"size:7" json:"color,omitempty"`
	Order       int       `gorm:"column:sort_order;default:0" json:"order"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Status) TableName() string { return "statuses" }
