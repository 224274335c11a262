package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tracker/internal/model"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (*model.Note, error) {
	var note model.Note
	if err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}

func (r *NoteRepository) GetAll(ctx context.Context, includeArchived bool) ([]model.Note, error) {
	var notes []model.Note
	q := r.db.WithContext(ctx).Order("updated DESC, created DESC")
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	err := q.Find(&notes).Error
	return notes, err
}

func (r *NoteRepository) Update(ctx context.Context, note *model.Note) error {
	result := r.db.WithContext(ctx).Save(note)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// Delete removes a note. Notes are the one entity kind deleted physically;
// everything else is archived.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&model.Note{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// Backlink points at an entity that links the note.
type Backlink struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Title      string `json:"title"`
}

// Backlinks finds entities whose note list references the given note.
// note_ids is a JSON text column, so this is a containment scan.
func (r *NoteRepository) Backlinks(ctx context.Context, noteID string) ([]Backlink, error) {
	needle := "%\"" + noteID + "\"%"
	var links []Backlink

	type source struct {
		table string
		kind  string
	}
	for _, s := range []source{
		{"projects", model.KindProject},
		{"epics", model.KindEpic},
		{"tasks", model.KindTask},
		{"subtasks", model.KindSubtask},
		{"notes", model.KindNote},
	} {
		var rows []Backlink
		err := r.db.WithContext(ctx).Table(s.table).
			Select("? AS entity_type, id AS entity_id, title", s.kind).
			Where("note_ids LIKE ?", needle).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		links = append(links, rows...)
	}
	return links, nil
}
