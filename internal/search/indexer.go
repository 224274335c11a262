// Package search keeps the full-text index in step with entity writes.
package search

import (
	"context"
	"log"
	"strings"

	"tracker/internal/model"
	"tracker/internal/repository"
)

// Indexer assembles and writes an entity's search row from its title,
// content, update feed and person/label tags.
type Indexer struct {
	searchRepo *repository.SearchRepository
	updateRepo *repository.UpdateRepository
	personRepo *repository.PersonRepository
	labelRepo  *repository.LabelRepository
}

func NewIndexer(
	searchRepo *repository.SearchRepository,
	updateRepo *repository.UpdateRepository,
	personRepo *repository.PersonRepository,
	labelRepo *repository.LabelRepository,
) *Indexer {
	return &Indexer{
		searchRepo: searchRepo,
		updateRepo: updateRepo,
		personRepo: personRepo,
		labelRepo:  labelRepo,
	}
}

// SyncEntity rebuilds the search row for one entity. Index failures are
// logged, not propagated: a failed sync must never fail the write that
// triggered it.
func (ix *Indexer) SyncEntity(ctx context.Context, kind, id, title, content string) {
	if err := ix.syncEntity(ctx, kind, id, title, content); err != nil {
		log.Printf("⚠️  Failed to sync %s to search index: %v", id, err)
	}
}

func (ix *Indexer) syncEntity(ctx context.Context, kind, id, title, content string) error {
	updates, err := ix.updateRepo.GetByEntityID(ctx, id, "")
	if err != nil {
		return err
	}
	updateTexts := make([]string, 0, len(updates))
	for _, u := range updates {
		updateTexts = append(updateTexts, u.Content)
	}

	persons, err := ix.personRepo.GetForEntity(ctx, kind, id)
	if err != nil {
		return err
	}
	people := make([]string, 0, len(persons))
	for _, p := range persons {
		people = append(people, p.Name)
	}

	labels, err := ix.labelRepo.GetForEntity(ctx, kind, id)
	if err != nil {
		return err
	}
	labelNames := make([]string, 0, len(labels))
	for _, l := range labels {
		labelNames = append(labelNames, l.Name)
	}

	return ix.searchRepo.Sync(ctx, &model.SearchIndex{
		EntityID:   id,
		EntityType: kind,
		Title:      title,
		Content:    content,
		Updates:    strings.Join(updateTexts, " "),
		People:     strings.Join(people, " "),
		Labels:     strings.Join(labelNames, " "),
	})
}

// Remove drops an entity from the index after physical deletion.
func (ix *Indexer) Remove(ctx context.Context, id string) {
	if err := ix.searchRepo.Delete(ctx, id); err != nil {
		log.Printf("⚠️  Failed to remove %s from search index: %v", id, err)
	}
}
