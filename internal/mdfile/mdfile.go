// Package mdfile reads and writes the markdown+YAML files that were the
// system's original storage format and remain the input to the migration.
package mdfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrUnsafePath is returned when a joined path would escape the data root.
var ErrUnsafePath = errors.New("path escapes data root")

var idPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, kind := range []string{"project", "epic", "task", "subtask", "note", "person"} {
		idPatterns[kind] = regexp.MustCompile(fmt.Sprintf(`^%s-[a-f0-9]{8}$`, kind))
	}
}

// UpdateEntry is one activity feed item as stored in frontmatter.
type UpdateEntry struct {
	Timestamp    string `yaml:"timestamp" json:"timestamp"`
	Content      string `yaml:"content" json:"content"`
	Type         string `yaml:"type,omitempty" json:"type,omitempty"`
	ActivityType string `yaml:"activity_type,omitempty" json:"activity_type,omitempty"`
}

// ChecklistEntry is one inline checklist item as stored in frontmatter.
type ChecklistEntry struct {
	ID     string `yaml:"id" json:"id"`
	Title  string `yaml:"title" json:"title"`
	Status string `yaml:"status" json:"status"`
}

// Frontmatter holds the YAML metadata block of an entity file. Labels and
// people tolerate both list and comma-separated string forms in the source
// files, so they are loaded through yaml.Node fields and normalized.
type Frontmatter struct {
	Title    string `yaml:"title"`
	Status   string `yaml:"status"`
	Priority *int   `yaml:"priority,omitempty"`
	Created  string `yaml:"created,omitempty"`
	Updated  string `yaml:"updated,omitempty"`
	DueDate  string `yaml:"due_date,omitempty"`

	ScheduleStart string `yaml:"schedule_start,omitempty"`
	ScheduleEnd   string `yaml:"schedule_end,omitempty"`

	SeqID    string `yaml:"seq_id,omitempty"`
	Archived bool   `yaml:"archived,omitempty"`

	ProjectID string `yaml:"project_id,omitempty"`
	EpicID    string `yaml:"epic_id,omitempty"`
	TaskID    string `yaml:"task_id,omitempty"`

	Color       string `yaml:"color,omitempty"`
	IsInbox     bool   `yaml:"is_inbox,omitempty"`
	IsInboxEpic bool   `yaml:"is_inbox_epic,omitempty"`

	RawLabels yaml.Node `yaml:"labels,omitempty"`
	RawPeople yaml.Node `yaml:"people,omitempty"`

	Notes        []string            `yaml:"notes,omitempty"`
	Updates      []UpdateEntry       `yaml:"updates,omitempty"`
	Checklist    []ChecklistEntry    `yaml:"checklist,omitempty"`
	Dependencies map[string][]string `yaml:"dependencies,omitempty"`

	// Person fields
	Name        string `yaml:"name,omitempty"`
	DisplayName string `yaml:"display_name,omitempty"`
	Email       string `yaml:"email,omitempty"`
	Phone       string `yaml:"phone,omitempty"`
	JobTitle    string `yaml:"job_title,omitempty"`
	Company     string `yaml:"company,omitempty"`
}

// Labels returns the normalized label list.
func (f *Frontmatter) Labels() []string {
	return normalizeTags(&f.RawLabels, "")
}

// People returns the normalized people list with any leading @ stripped.
func (f *Frontmatter) People() []string {
	return normalizeTags(&f.RawPeople, "@")
}

func normalizeTags(node *yaml.Node, strip string) []string {
	if node == nil || node.Kind == 0 {
		return nil
	}
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if strip != "" {
			s = strings.TrimPrefix(s, strip)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	switch node.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return nil
		}
		for _, s := range items {
			add(s)
		}
	case yaml.ScalarNode:
		var raw string
		if err := node.Decode(&raw); err != nil {
			return nil
		}
		for _, s := range strings.Split(raw, ",") {
			add(s)
		}
	}
	return out
}

// NewID generates an entity ID in the "{kind}-{8 hex}" format.
func NewID(kind string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return kind + "-" + hex[:8]
}

// ValidateID reports whether id matches the expected pattern for kind.
// The inbox project is the one permitted exception.
func ValidateID(id, kind string) bool {
	if kind == "project" && id == "project-inbox" {
		return true
	}
	re, ok := idPatterns[kind]
	return ok && re.MatchString(id)
}

// SafeJoin joins parts under root and rejects results outside of it.
func SafeJoin(root string, parts ...string) (string, error) {
	p := filepath.Join(append([]string{root}, parts...)...)
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if abs != absRoot && !strings.HasPrefix(abs, absRoot+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return abs, nil
}

// Load parses a markdown file with an optional YAML frontmatter block.
// Missing files return (nil, "", os.ErrNotExist). Malformed YAML falls back
// to defaults with the raw body preserved, matching the tolerant behavior
// of the original file loader.
func Load(path, defaultTitle, defaultStatus string) (*Frontmatter, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")

	if strings.TrimSpace(text) == "" {
		return &Frontmatter{Title: defaultTitle, Status: defaultStatus}, "", nil
	}

	if strings.HasPrefix(text, "---\n") {
		if head, body, found := strings.Cut(text[4:], "\n---\n"); found {
			var fm Frontmatter
			if err := yaml.Unmarshal([]byte(head), &fm); err == nil {
				if fm.Title == "" {
					fm.Title = defaultTitle
				}
				if fm.Status == "" {
					fm.Status = defaultStatus
				}
				return &fm, strings.TrimPrefix(body, "\n"), nil
			}
			return &Frontmatter{Title: defaultTitle, Status: defaultStatus}, strings.TrimPrefix(body, "\n"), nil
		}
	}

	// No frontmatter: the whole file is content.
	fm := &Frontmatter{
		Title:   defaultTitle,
		Status:  defaultStatus,
		Created: time.Now().Format("2006-01-02"),
	}
	return fm, text, nil
}

// Save writes frontmatter and content back to path, creating parent
// directories as needed.
func Save(path string, fm *Frontmatter, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	head, err := yaml.Marshal(fm)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n")
	buf.WriteString(content)
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
