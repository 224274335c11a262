// Package activity builds the system-generated entries of an entity's
// update feed.
package activity

import (
	"fmt"
	"time"
)

// Activity types recorded on entity feeds.
const (
	StatusChanged        = "status_changed"
	PriorityChanged      = "priority_changed"
	DueDateChanged       = "due_date_changed"
	ScheduleStartChanged = "schedule_start_changed"
	ScheduleEndChanged   = "schedule_end_changed"
	LabelAdded           = "label_added"
	LabelRemoved         = "label_removed"
	PersonAdded          = "person_added"
	PersonRemoved        = "person_removed"
	NoteLinked           = "note_linked"
	NoteUnlinked         = "note_unlinked"
	DependencyAdded      = "dependency_added"
	DependencyRemoved    = "dependency_removed"
	Created              = "created"
	Archived             = "archived"
)

// Entry is a system update ready to be appended to an entity's feed.
type Entry struct {
	Timestamp    string
	Content      string
	ActivityType string
}

// Now is swapped out in tests.
var Now = time.Now

// New builds the human-readable message for an activity. oldValue and
// newValue are used according to the activity type; either may be empty.
func New(activityType, oldValue, newValue string) Entry {
	var content string
	switch activityType {
	case StatusChanged:
		content = fmt.Sprintf("Status changed from %s to %s", oldValue, newValue)
	case PriorityChanged:
		switch {
		case oldValue == "":
			content = fmt.Sprintf("Priority set to P%s", newValue)
		case newValue == "":
			content = fmt.Sprintf("Priority removed (was P%s)", oldValue)
		default:
			content = fmt.Sprintf("Priority changed from P%s to P%s", oldValue, newValue)
		}
	case DueDateChanged:
		content = setOrRemoved("Due date", newValue)
	case ScheduleStartChanged:
		content = setOrRemoved("Start time", newValue)
	case ScheduleEndChanged:
		content = setOrRemoved("End time", newValue)
	case LabelAdded:
		content = fmt.Sprintf("Label '%s' added", newValue)
	case LabelRemoved:
		content = fmt.Sprintf("Label '%s' removed", oldValue)
	case PersonAdded:
		content = fmt.Sprintf("Person '%s' added", newValue)
	case PersonRemoved:
		content = fmt.Sprintf("Person '%s' removed", oldValue)
	case NoteLinked:
		content = fmt.Sprintf("Note '%s' linked", newValue)
	case NoteUnlinked:
		content = fmt.Sprintf("Note '%s' unlinked", oldValue)
	case DependencyAdded:
		content = fmt.Sprintf("Dependency '%s' added", newValue)
	case DependencyRemoved:
		content = fmt.Sprintf("Dependency '%s' removed", oldValue)
	case Created:
		content = "Created"
	case Archived:
		content = "Archived"
	default:
		v := newValue
		if v == "" {
			v = oldValue
		}
		content = fmt.Sprintf("%s: %s", activityType, v)
	}

	return Entry{
		Timestamp:    Now().Format("2006-01-02T15:04:05"),
		Content:      content,
		ActivityType: activityType,
	}
}

func setOrRemoved(field, newValue string) string {
	if newValue == "" {
		return field + " removed"
	}
	return fmt.Sprintf("%s set to %s", field, newValue)
}
