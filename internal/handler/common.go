package handler

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"strings"
	"time"

	"tracker/internal/model"
	"tracker/internal/repository"
)

// Entity timestamps use the same second-resolution local format the
// markdown frontmatter carried, so values survive migration round-trips.
const timestampLayout = "2006-01-02T15:04:05"

func nowStamp() string {
	return time.Now().Format(timestampLayout)
}

// kindFromID derives the entity kind from its ID prefix.
func kindFromID(id string) string {
	kind, _, found := strings.Cut(id, "-")
	if !found {
		return ""
	}
	switch kind {
	case model.KindProject, model.KindEpic, model.KindTask, model.KindSubtask, model.KindNote, model.KindPerson:
		return kind
	}
	return ""
}

var projectColors = []string{
	"#ff6600", "#0066ff", "#00cc66", "#cc00ff", "#ff0066",
	"#00ffcc", "#ffcc00", "#6600ff", "#ff3300", "#00ff33",
	"#ff0099", "#0099ff", "#99ff00", "#ff9900", "#9900ff",
}

// projectColor picks a stable color for a project from its ID.
func projectColor(projectID, existing string) string {
	if existing != "" {
		return existing
	}
	sum := md5.Sum([]byte(projectID))
	idx := binary.BigEndian.Uint32(sum[:4]) % uint32(len(projectColors))
	return projectColors[idx]
}

// EntityLookup resolves any entity kind to its title and content, used by
// the handlers that touch the search index for arbitrary entities.
type EntityLookup struct {
	projectRepo *repository.ProjectRepository
	epicRepo    *repository.EpicRepository
	taskRepo    *repository.TaskRepository
	subtaskRepo *repository.SubtaskRepository
	noteRepo    *repository.NoteRepository
	personRepo  *repository.PersonRepository
}

func NewEntityLookup(
	projectRepo *repository.ProjectRepository,
	epicRepo *repository.EpicRepository,
	taskRepo *repository.TaskRepository,
	subtaskRepo *repository.SubtaskRepository,
	noteRepo *repository.NoteRepository,
	personRepo *repository.PersonRepository,
) *EntityLookup {
	return &EntityLookup{
		projectRepo: projectRepo,
		epicRepo:    epicRepo,
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		noteRepo:    noteRepo,
		personRepo:  personRepo,
	}
}

var errUnknownKind = errors.New("unknown entity kind")

func (l *EntityLookup) titleContent(ctx context.Context, kind, id string) (title, content string, err error) {
	switch kind {
	case model.KindProject:
		p, err := l.projectRepo.GetByID(ctx, id)
		if err != nil {
			return "", "", err
		}
		return p.Title, p.Content, nil
	case model.KindEpic:
		e, err := l.epicRepo.GetByID(ctx, id)
		if err != nil {
			return "", "", err
		}
		return e.Title, e.Content, nil
	case model.KindTask:
		t, err := l.taskRepo.GetByID(ctx, id)
		if err != nil {
			return "", "", err
		}
		return t.Title, t.Content, nil
	case model.KindSubtask:
		s, err := l.subtaskRepo.GetByID(ctx, id)
		if err != nil {
			return "", "", err
		}
		return s.Title, s.Content, nil
	case model.KindNote:
		n, err := l.noteRepo.GetByID(ctx, id)
		if err != nil {
			return "", "", err
		}
		return n.Title, n.Content, nil
	case model.KindPerson:
		p, err := l.personRepo.GetByID(ctx, id)
		if err != nil {
			return "", "", err
		}
		name := p.DisplayName
		if name == "" {
			name = p.Name
		}
		return name, p.Content, nil
	}
	return "", "", errUnknownKind
}

// checklistStatuses projects a checklist into its status strings for the
// progress roll-up.
func checklistStatuses(items model.Checklist) []string {
	statuses := make([]string, len(items))
	for i, item := range items {
		statuses[i] = item.Status
	}
	return statuses
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// emptyToNil maps an explicit empty string to a cleared column.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func containsValue(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// appendUnique adds v to list unless it is already present. The second
// return reports whether the list changed.
func appendUnique(list []string, v string) ([]string, bool) {
	if containsValue(list, v) {
		return list, false
	}
	return append(list, v), true
}

// removeValue removes v from list, reporting whether it was present.
func removeValue(list []string, v string) ([]string, bool) {
	for i, item := range list {
		if item == v {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

// diffValues splits a list transition into the values that appeared and the
// ones that went away.
func diffValues(old, next []string) (added, removed []string) {
	for _, v := range next {
		if !containsValue(old, v) {
			added = append(added, v)
		}
	}
	for _, v := range old {
		if !containsValue(next, v) {
			removed = append(removed, v)
		}
	}
	return added, removed
}

// normalizeName trims a person tag and strips a leading @.
func normalizeName(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "@")
}
