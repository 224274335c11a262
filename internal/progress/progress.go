// Package progress implements the completion roll-ups shown on project,
// epic and task views. All percentages are truncated integers.
package progress

import "regexp"

// Report is a completed/total pair with its derived percentage.
type Report struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

var tickboxRe = regexp.MustCompile(`(?m)^\s*[-*+]?\s*\[([ xX])\]`)

// Markdown counts tickboxes ("[ ]", "[x]") in markdown content.
func Markdown(content string) Report {
	if content == "" {
		return Report{}
	}
	matches := tickboxRe.FindAllStringSubmatch(content, -1)
	total := len(matches)
	completed := 0
	for _, m := range matches {
		if m[1] == "x" || m[1] == "X" {
			completed++
		}
	}
	return report(completed, total)
}

// Checklist counts done items in an inline checklist. statuses holds the
// per-item status strings.
func Checklist(statuses []string) Report {
	completed := 0
	for _, s := range statuses {
		if s == "done" {
			completed++
		}
	}
	return report(completed, len(statuses))
}

// Children derives an epic or project completion report from child counts.
// An entity with no children reports zero percent, not an error.
func Children(done, total int) Report {
	return report(done, total)
}

// Combined merges two reports item-wise, used for a task's overall progress
// across its checklist and its subtasks.
func Combined(a, b Report) Report {
	return report(a.Completed+b.Completed, a.Total+b.Total)
}

func report(completed, total int) Report {
	r := Report{Completed: completed, Total: total}
	if total > 0 {
		r.Percentage = completed * 100 / total
	}
	return r
}
