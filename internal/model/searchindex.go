package model

// SearchIndex is one full-text row per entity. Content and updates are
// truncated before indexing; the tsvector column and GIN index are created
// by the SQL migrations, not by GORM tags.
type SearchIndex struct {
	EntityID   string `gorm:"primaryKey;size:50" json:"entity_id"`
	EntityType string `gorm:"size:20;not null;index" json:"entity_type"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Updates    string `json:"updates"`
	People     string `json:"people"`
	Labels     string `json:"labels"`
}

func (SearchIndex) TableName() string { return "search_index" }
