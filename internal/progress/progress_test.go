package progress_test

import (
	"testing"

	"tracker/internal/progress"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    progress.Report
	}{
		{
			name:    "no tickboxes",
			content: "Just some text\nwith lines",
			want:    progress.Report{},
		},
		{
			name:    "mixed tickboxes",
			content: "- [ ] first\n- [x] second\n- [X] third",
			want:    progress.Report{Completed: 2, Total: 3, Percentage: 66},
		},
		{
			name:    "bare brackets without list marker",
			content: "[ ] open\n[x] closed",
			want:    progress.Report{Completed: 1, Total: 2, Percentage: 50},
		},
		{
			name:    "indented star and plus markers",
			content: "  * [x] a\n  + [ ] b",
			want:    progress.Report{Completed: 1, Total: 2, Percentage: 50},
		},
		{
			name:    "brackets mid-line are not tickboxes",
			content: "see [x] reference in prose",
			want:    progress.Report{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progress.Markdown(tt.content))
		})
	}
}

func TestChecklist(t *testing.T) {
	assert.Equal(t, progress.Report{}, progress.Checklist(nil))
	assert.Equal(t,
		progress.Report{Completed: 1, Total: 3, Percentage: 33},
		progress.Checklist([]string{"done", "todo", "in_progress"}))
	assert.Equal(t,
		progress.Report{Completed: 2, Total: 2, Percentage: 100},
		progress.Checklist([]string{"done", "done"}))
}

func TestChildren(t *testing.T) {
	assert.Equal(t, progress.Report{}, progress.Children(0, 0))
	assert.Equal(t, progress.Report{Completed: 1, Total: 3, Percentage: 33}, progress.Children(1, 3))
}

func TestCombined(t *testing.T) {
	checklist := progress.Checklist([]string{"done", "todo"})
	children := progress.Children(2, 2)

	combined := progress.Combined(checklist, children)

	// 3 of 4 items complete, percentage truncated.
	assert.Equal(t, progress.Report{Completed: 3, Total: 4, Percentage: 75}, combined)
}

func TestCombined_Empty(t *testing.T) {
	assert.Equal(t, progress.Report{}, progress.Combined(progress.Report{}, progress.Report{}))
}
