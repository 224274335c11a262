package model

// Entity kinds used as ID prefixes and discriminators in link tables
// and the search index.
const (
	KindProject = "project"
	KindEpic    = "epic"
	KindTask    = "task"
	KindSubtask = "subtask"
	KindNote    = "note"
	KindPerson  = "person"
)

// Status names shared across entity kinds.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusActive     = "active"
	StatusArchived   = "archived"
)

// EntityFields is the common column set of all tracked entities.
// IDs are immutable "{kind}-{8 hex}" strings so that file names from the
// markdown era remain valid foreign keys after migration.
type EntityFields struct {
	ID       string  `gorm:"primaryKey;size:50" json:"id"`
	Title    string  `gorm:"size:500;not null" json:"title"`
	Status   string  `gorm:"size:50;not null;index" json:"status"`
	Priority *int    `json:"priority,omitempty"`
	Created  string  `gorm:"size:50" json:"created,omitempty"`
	Updated  string  `gorm:"size:50" json:"updated,omitempty"`
	DueDate  *string `gorm:"size:50" json:"due_date,omitempty"`

	ScheduleStart *string `gorm:"size:50" json:"schedule_start,omitempty"`
	ScheduleEnd   *string `gorm:"size:50" json:"schedule_end,omitempty"`

	Content  string `json:"content,omitempty"`
	SeqID    string `gorm:"size:50;index" json:"seq_id,omitempty"`
	Archived bool   `gorm:"default:false;index" json:"archived"`
}

// DefaultStatus returns the status a newly created entity of the given kind
// gets when none is supplied.
func DefaultStatus(kind string) string {
	switch kind {
	case KindTask, KindSubtask:
		return StatusTodo
	default:
		return StatusActive
	}
}
