package model

// Update types.
const (
	UpdateTypeUser   = "user"
	UpdateTypeSystem = "system"
)

// Update is a timestamped note on an entity's activity feed. User updates
// carry free-form progress narrative; system updates record field changes
// with an activity type such as "status_changed".
type Update struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	EntityID     string `gorm:"size:50;not null;index" json:"entity_id"`
	Content      string `gorm:"not null" json:"content"`
	Timestamp    string `gorm:"size:50;index" json:"timestamp"`
	Type         string `gorm:"size:20;default:user;index" json:"type"`
	ActivityType string `gorm:"size:50" json:"activity_type,omitempty"`
}

func (Update) TableName() string { return "updates" }
