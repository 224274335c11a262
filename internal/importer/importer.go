// Package importer performs the one-time walk of a markdown data tree into
// the database.
package importer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tracker/internal/mdfile"
	"tracker/internal/model"
	"tracker/internal/repository"
	"tracker/internal/search"
)

// Stats counts what a run touched.
type Stats struct {
	Projects int
	Epics    int
	Tasks    int
	Subtasks int
	Notes    int
	People   int
	Errors   int
}

// Importer walks DATA_ROOT and upserts every entity file it finds. Runs are
// idempotent: a re-run overwrites rows with the file contents.
type Importer struct {
	db         *gorm.DB
	updateRepo *repository.UpdateRepository
	personRepo *repository.PersonRepository
	labelRepo  *repository.LabelRepository
	indexer    *search.Indexer

	root   string
	dryRun bool

	stats Stats
	errs  *multierror.Error
}

func New(db *gorm.DB, root string, dryRun bool) *Importer {
	updateRepo := repository.NewUpdateRepository(db)
	personRepo := repository.NewPersonRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	searchRepo := repository.NewSearchRepository(db)
	return &Importer{
		db:         db,
		updateRepo: updateRepo,
		personRepo: personRepo,
		labelRepo:  labelRepo,
		indexer:    search.NewIndexer(searchRepo, updateRepo, personRepo, labelRepo),
		root:       root,
		dryRun:     dryRun,
	}
}

// Run imports the whole tree and returns per-kind counts. File-level
// failures are collected, not fatal: one bad file must not abort the walk.
func (im *Importer) Run(ctx context.Context) (*Stats, error) {
	log.Printf("📁 Importing data tree from %s", im.root)

	im.importProjects(ctx)
	im.importFlatDir(ctx, "notes", model.KindNote)
	im.importFlatDir(ctx, "people", model.KindPerson)

	if im.errs != nil {
		im.stats.Errors = len(im.errs.Errors)
	}
	return &im.stats, im.errs.ErrorOrNil()
}

func (im *Importer) importProjects(ctx context.Context) {
	dir := filepath.Join(im.root, "projects")
	for _, id := range im.entityFiles(dir, model.KindProject) {
		if err := im.importProject(ctx, dir, id); err != nil {
			im.errs = multierror.Append(im.errs, fmt.Errorf("project %s: %w", id, err))
		}
	}
}

func (im *Importer) importProject(ctx context.Context, dir, id string) error {
	fm, content, err := mdfile.Load(filepath.Join(dir, id+".md"), id, model.DefaultStatus(model.KindProject))
	if err != nil {
		return err
	}

	project := &model.Project{
		EntityFields: entityFields(id, fm, content),
		Color:        fm.Color,
		IsInbox:      fm.IsInbox || id == model.InboxProjectID,
		NoteIDs:      fm.Notes,
	}
	if err := im.upsert(ctx, project); err != nil {
		return err
	}
	if err := im.finishEntity(ctx, model.KindProject, id, fm, content); err != nil {
		return err
	}
	im.stats.Projects++
	log.Printf("  ✅ project %s (%s)", id, fm.Title)

	projectDir := filepath.Join(dir, id)

	epicsDir := filepath.Join(projectDir, "epics")
	for _, epicID := range im.entityFiles(epicsDir, model.KindEpic) {
		if err := im.importEpic(ctx, epicsDir, epicID, id); err != nil {
			im.errs = multierror.Append(im.errs, fmt.Errorf("epic %s: %w", epicID, err))
		}
	}

	// Tasks attached straight to the project, outside any epic.
	tasksDir := filepath.Join(projectDir, "tasks")
	for _, taskID := range im.entityFiles(tasksDir, model.KindTask) {
		if err := im.importTask(ctx, tasksDir, taskID, id, nil); err != nil {
			im.errs = multierror.Append(im.errs, fmt.Errorf("task %s: %w", taskID, err))
		}
	}
	return nil
}

func (im *Importer) importEpic(ctx context.Context, dir, id, projectID string) error {
	fm, content, err := mdfile.Load(filepath.Join(dir, id+".md"), id, model.DefaultStatus(model.KindEpic))
	if err != nil {
		return err
	}

	epic := &model.Epic{
		EntityFields: entityFields(id, fm, content),
		ProjectID:    projectID,
		IsInboxEpic:  fm.IsInboxEpic,
		NoteIDs:      fm.Notes,
	}
	if err := im.upsert(ctx, epic); err != nil {
		return err
	}
	if err := im.finishEntity(ctx, model.KindEpic, id, fm, content); err != nil {
		return err
	}
	im.stats.Epics++

	tasksDir := filepath.Join(dir, id, "tasks")
	for _, taskID := range im.entityFiles(tasksDir, model.KindTask) {
		if err := im.importTask(ctx, tasksDir, taskID, projectID, &id); err != nil {
			im.errs = multierror.Append(im.errs, fmt.Errorf("task %s: %w", taskID, err))
		}
	}
	return nil
}

func (im *Importer) importTask(ctx context.Context, dir, id, projectID string, epicID *string) error {
	fm, content, err := mdfile.Load(filepath.Join(dir, id+".md"), id, model.DefaultStatus(model.KindTask))
	if err != nil {
		return err
	}

	task := &model.Task{
		EntityFields: entityFields(id, fm, content),
		ProjectID:    projectID,
		EpicID:       epicID,
		Dependencies: dependencies(fm),
		Checklist:    checklist(fm),
		NoteIDs:      fm.Notes,
	}
	if err := im.upsert(ctx, task); err != nil {
		return err
	}
	if err := im.finishEntity(ctx, model.KindTask, id, fm, content); err != nil {
		return err
	}
	im.stats.Tasks++

	subtasksDir := filepath.Join(dir, id, "subtasks")
	for _, subtaskID := range im.entityFiles(subtasksDir, model.KindSubtask) {
		if err := im.importSubtask(ctx, subtasksDir, subtaskID, id, projectID, epicID); err != nil {
			im.errs = multierror.Append(im.errs, fmt.Errorf("subtask %s: %w", subtaskID, err))
		}
	}
	return nil
}

func (im *Importer) importSubtask(ctx context.Context, dir, id, taskID, projectID string, epicID *string) error {
	fm, content, err := mdfile.Load(filepath.Join(dir, id+".md"), id, model.DefaultStatus(model.KindSubtask))
	if err != nil {
		return err
	}

	subtask := &model.Subtask{
		EntityFields: entityFields(id, fm, content),
		TaskID:       taskID,
		ProjectID:    projectID,
		EpicID:       epicID,
		Dependencies: dependencies(fm),
		Checklist:    checklist(fm),
		NoteIDs:      fm.Notes,
	}
	if err := im.upsert(ctx, subtask); err != nil {
		return err
	}
	if err := im.finishEntity(ctx, model.KindSubtask, id, fm, content); err != nil {
		return err
	}
	im.stats.Subtasks++
	return nil
}

func (im *Importer) importFlatDir(ctx context.Context, name, kind string) {
	dir := filepath.Join(im.root, name)
	for _, id := range im.entityFiles(dir, kind) {
		var err error
		switch kind {
		case model.KindNote:
			err = im.importNote(ctx, dir, id)
		case model.KindPerson:
			err = im.importPerson(ctx, dir, id)
		}
		if err != nil {
			im.errs = multierror.Append(im.errs, fmt.Errorf("%s %s: %w", kind, id, err))
		}
	}
}

func (im *Importer) importNote(ctx context.Context, dir, id string) error {
	fm, content, err := mdfile.Load(filepath.Join(dir, id+".md"), id, model.DefaultStatus(model.KindNote))
	if err != nil {
		return err
	}

	note := &model.Note{
		EntityFields: entityFields(id, fm, content),
		NoteIDs:      fm.Notes,
	}
	if err := im.upsert(ctx, note); err != nil {
		return err
	}
	if err := im.finishEntity(ctx, model.KindNote, id, fm, content); err != nil {
		return err
	}
	im.stats.Notes++
	return nil
}

func (im *Importer) importPerson(ctx context.Context, dir, id string) error {
	fm, content, err := mdfile.Load(filepath.Join(dir, id+".md"), id, model.StatusActive)
	if err != nil {
		return err
	}

	name := fm.Name
	if name == "" {
		name = fm.Title
	}
	person := &model.Person{
		ID:          id,
		Name:        name,
		DisplayName: fm.DisplayName,
		Email:       fm.Email,
		Phone:       fm.Phone,
		JobTitle:    fm.JobTitle,
		Company:     fm.Company,
		Content:     content,
		NoteIDs:     fm.Notes,
	}
	if err := im.upsert(ctx, person); err != nil {
		return err
	}

	if !im.dryRun {
		title := person.DisplayName
		if title == "" {
			title = person.Name
		}
		im.indexer.SyncEntity(ctx, model.KindPerson, id, title, content)
	}
	im.stats.People++
	return nil
}

// finishEntity writes the feed, tag links and search row shared by every
// entity kind.
func (im *Importer) finishEntity(ctx context.Context, kind, id string, fm *mdfile.Frontmatter, content string) error {
	if im.dryRun {
		return nil
	}

	updates := make([]model.Update, 0, len(fm.Updates))
	for _, u := range fm.Updates {
		updateType := u.Type
		if updateType == "" {
			updateType = model.UpdateTypeUser
		}
		updates = append(updates, model.Update{
			EntityID:     id,
			Content:      u.Content,
			Timestamp:    u.Timestamp,
			Type:         updateType,
			ActivityType: u.ActivityType,
		})
	}
	if err := im.updateRepo.ReplaceForEntity(ctx, id, updates); err != nil {
		return err
	}

	for _, labelName := range fm.Labels() {
		label, err := im.labelRepo.FindOrCreate(ctx, labelName)
		if err != nil {
			return err
		}
		if err := im.labelRepo.AddToEntity(ctx, kind, id, label.ID); err != nil {
			return err
		}
	}

	for _, personName := range fm.People() {
		person, err := im.personRepo.FindByName(ctx, personName)
		if err != nil {
			return err
		}
		if person == nil {
			person = &model.Person{ID: mdfile.NewID(model.KindPerson), Name: personName}
			if err := im.personRepo.Create(ctx, person); err != nil {
				return err
			}
		}
		if err := im.personRepo.Assign(ctx, kind, id, person.ID); err != nil {
			return err
		}
	}

	im.indexer.SyncEntity(ctx, kind, id, fm.Title, content)
	return nil
}

// entityFiles lists the valid "{kind}-{hex}.md" IDs in dir. Files with
// foreign names are reported once and skipped.
func (im *Importer) entityFiles(dir, kind string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			im.errs = multierror.Append(im.errs, fmt.Errorf("read %s: %w", dir, err))
		}
		return nil
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".md")
		if !mdfile.ValidateID(id, kind) {
			im.errs = multierror.Append(im.errs, fmt.Errorf("%s: invalid %s file name", entry.Name(), kind))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (im *Importer) upsert(ctx context.Context, value interface{}) error {
	if im.dryRun {
		return nil
	}
	return im.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error
}

func entityFields(id string, fm *mdfile.Frontmatter, content string) model.EntityFields {
	return model.EntityFields{
		ID:            id,
		Title:         fm.Title,
		Status:        fm.Status,
		Priority:      fm.Priority,
		Created:       fm.Created,
		Updated:       fm.Updated,
		DueDate:       optional(fm.DueDate),
		ScheduleStart: optional(fm.ScheduleStart),
		ScheduleEnd:   optional(fm.ScheduleEnd),
		Content:       content,
		SeqID:         fm.SeqID,
		Archived:      fm.Archived,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func dependencies(fm *mdfile.Frontmatter) model.Dependencies {
	return model.Dependencies{
		Blocks:    fm.Dependencies["blocks"],
		BlockedBy: fm.Dependencies["blocked_by"],
	}
}

func checklist(fm *mdfile.Frontmatter) model.Checklist {
	items := make(model.Checklist, 0, len(fm.Checklist))
	for _, entry := range fm.Checklist {
		items = append(items, model.ChecklistItem(entry))
	}
	return items
}
