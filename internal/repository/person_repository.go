package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tracker/internal/model"
)

type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) Create(ctx context.Context, person *model.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *PersonRepository) GetByID(ctx context.Context, id string) (*model.Person, error) {
	var person model.Person
	if err := r.db.WithContext(ctx).First(&person, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return &person, nil
}

// FindByName looks a person up by normalized name. Returns nil, nil when
// nobody matches so callers can create on demand.
func (r *PersonRepository) FindByName(ctx context.Context, name string) (*model.Person, error) {
	var person model.Person
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&person).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *PersonRepository) GetAll(ctx context.Context) ([]model.Person, error) {
	var persons []model.Person
	err := r.db.WithContext(ctx).Order("name").Find(&persons).Error
	return persons, err
}

func (r *PersonRepository) Update(ctx context.Context, person *model.Person) error {
	result := r.db.WithContext(ctx).Save(person)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPersonNotFound
	}
	return nil
}

// Assign links a person to an entity, ignoring duplicates.
func (r *PersonRepository) Assign(ctx context.Context, entityType, entityID, personID string) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO entity_person_links (entity_type, entity_id, person_id, created_at) VALUES (?, ?, ?, NOW()) ON CONFLICT DO NOTHING",
		entityType, entityID, personID,
	).Error
}

// Unassign removes a person link from an entity.
func (r *PersonRepository) Unassign(ctx context.Context, entityType, entityID, personID string) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM entity_person_links WHERE entity_type = ? AND entity_id = ? AND person_id = ?",
		entityType, entityID, personID,
	).Error
}

func (r *PersonRepository) GetForEntity(ctx context.Context, entityType, entityID string) ([]model.Person, error) {
	var persons []model.Person
	err := r.db.WithContext(ctx).
		Joins("JOIN entity_person_links l ON l.person_id = persons.id").
		Where("l.entity_type = ? AND l.entity_id = ?", entityType, entityID).
		Order("persons.name").
		Find(&persons).Error
	return persons, err
}

// Reference points at an entity a person is tagged on.
type Reference struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

// References lists the entities a person is linked to.
func (r *PersonRepository) References(ctx context.Context, personID string) ([]Reference, error) {
	var refs []Reference
	err := r.db.WithContext(ctx).Model(&model.EntityPersonLink{}).
		Select("entity_type, entity_id").
		Where("person_id = ?", personID).
		Order("created_at").
		Scan(&refs).Error
	return refs, err
}
