package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Messages(t *testing.T) {
	tests := []struct {
		activityType string
		oldValue     string
		newValue     string
		want         string
	}{
		{StatusChanged, "todo", "in_progress", "Status changed from todo to in_progress"},
		{PriorityChanged, "", "1", "Priority set to P1"},
		{PriorityChanged, "2", "", "Priority removed (was P2)"},
		{PriorityChanged, "2", "1", "Priority changed from P2 to P1"},
		{DueDateChanged, "", "2026-09-01", "Due date set to 2026-09-01"},
		{DueDateChanged, "2026-09-01", "", "Due date removed"},
		{ScheduleStartChanged, "", "2026-09-01T10:00", "Start time set to 2026-09-01T10:00"},
		{ScheduleEndChanged, "2026-09-01T11:00", "", "End time removed"},
		{LabelAdded, "", "backend", "Label 'backend' added"},
		{LabelRemoved, "backend", "", "Label 'backend' removed"},
		{PersonAdded, "", "alice", "Person 'alice' added"},
		{PersonRemoved, "alice", "", "Person 'alice' removed"},
		{NoteLinked, "", "note-deadbeef", "Note 'note-deadbeef' linked"},
		{NoteUnlinked, "note-deadbeef", "", "Note 'note-deadbeef' unlinked"},
		{DependencyAdded, "", "task-deadbeef", "Dependency 'task-deadbeef' added"},
		{DependencyRemoved, "task-deadbeef", "", "Dependency 'task-deadbeef' removed"},
		{Created, "", "task", "Created"},
		{Archived, "", "task", "Archived"},
	}

	for _, tt := range tests {
		t.Run(tt.activityType+"/"+tt.want, func(t *testing.T) {
			entry := New(tt.activityType, tt.oldValue, tt.newValue)
			assert.Equal(t, tt.want, entry.Content)
			assert.Equal(t, tt.activityType, entry.ActivityType)
		})
	}
}

func TestNew_Timestamp(t *testing.T) {
	fixed := time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	Now = func() time.Time { return fixed }
	defer func() { Now = time.Now }()

	entry := New(StatusChanged, "todo", "done")

	assert.Equal(t, "2026-08-31T14:30:05", entry.Timestamp)
}

func TestNew_UnknownType(t *testing.T) {
	entry := New("custom_event", "", "payload")

	assert.Equal(t, "custom_event: payload", entry.Content)
	assert.Equal(t, "custom_event", entry.ActivityType)
}
