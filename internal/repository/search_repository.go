package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tracker/internal/model"
)

// Long documents are cut before indexing, matching the limit the index
// carried in its file-backed era.
const indexTextLimit = 10000

type SearchRepository struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Sync upserts an entity's full-text row. The tsvector column is generated
// by Postgres from the text columns written here.
func (r *SearchRepository) Sync(ctx context.Context, row *model.SearchIndex) error {
	row.Content = truncate(row.Content, indexTextLimit)
	row.Updates = truncate(row.Updates, indexTextLimit)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"entity_type", "title", "content", "updates", "people", "labels"}),
		}).
		Create(row).Error
}

// Delete drops an entity's full-text row.
func (r *SearchRepository) Delete(ctx context.Context, entityID string) error {
	return r.db.WithContext(ctx).Delete(&model.SearchIndex{}, "entity_id = ?", entityID).Error
}

// Hit is one ranked search result.
type Hit struct {
	EntityID   string  `json:"entity_id"`
	EntityType string  `json:"entity_type"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Updates    string  `json:"updates"`
	People     string  `json:"people"`
	Labels     string  `json:"labels"`
	Rank       float64 `json:"rank"`
}

// Search runs a ranked full-text query. Multiple words match any-term, the
// same OR semantics the old FTS5 index used. An empty or unusable query
// falls back to a title/content ILIKE scan.
func (r *SearchRepository) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 100
	}
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var hits []Hit
	err := r.db.WithContext(ctx).Raw(`
		SELECT entity_id, entity_type, title, content, updates, people, labels,
		       ts_rank(tsv, query) AS rank
		FROM search_index, websearch_to_tsquery('english', ?) AS query
		WHERE tsv @@ query
		ORDER BY rank DESC
		LIMIT ?`,
		strings.Join(terms, " OR "), limit).
		Scan(&hits).Error
	if err != nil {
		return nil, err
	}
	if len(hits) > 0 {
		return hits, nil
	}

	return r.likeSearch(ctx, terms, limit)
}

// likeSearch is the slow path for queries the tsquery parser cannot help
// with (stop words, symbols).
func (r *SearchRepository) likeSearch(ctx context.Context, terms []string, limit int) ([]Hit, error) {
	q := r.db.WithContext(ctx).Model(&model.SearchIndex{}).
		Select("entity_id, entity_type, title, content, updates, people, labels, 0 AS rank")
	for _, term := range terms {
		pattern := "%" + term + "%"
		q = q.Or("title ILIKE ? OR content ILIKE ? OR updates ILIKE ? OR people ILIKE ? OR labels ILIKE ?",
			pattern, pattern, pattern, pattern, pattern)
	}
	var hits []Hit
	err := q.Limit(limit).Scan(&hits).Error
	return hits, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
