package handler

import (
	"net/http"
	"strconv"
	"strings"

	"tracker/internal/repository"

	"github.com/gin-gonic/gin"
)

const snippetLimit = 150

type SearchHandler struct {
	searchRepo *repository.SearchRepository
}

func NewSearchHandler(searchRepo *repository.SearchRepository) *SearchHandler {
	return &SearchHandler{searchRepo: searchRepo}
}

type SearchResult struct {
	EntityID   string  `json:"entity_id"`
	EntityType string  `json:"entity_type"`
	Title      string  `json:"title"`
	Field      string  `json:"field"`
	Snippet    string  `json:"snippet"`
	Rank       float64 `json:"rank"`
}

// Search godoc
// @Summary Full-text search over titles, content, updates, people and labels
// @Tags search
// @Produce json
// @Param q query string true "Query, words matched as OR"
// @Param limit query int false "Max hits (default 50)"
// @Success 200 {array} SearchResult
// @Router /search [get]
// @Security BearerAuth
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	hits, err := h.searchRepo.Search(c, query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	terms := strings.Fields(strings.ToLower(query))
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		field, snippet := matchSnippet(hit, terms)
		results = append(results, SearchResult{
			EntityID:   hit.EntityID,
			EntityType: hit.EntityType,
			Title:      hit.Title,
			Field:      field,
			Snippet:    snippet,
			Rank:       hit.Rank,
		})
	}

	c.JSON(http.StatusOK, results)
}

// matchSnippet picks the first indexed field containing a query term and
// returns the matching line, cut to snippetLimit runes. Falls back to the
// head of the content when the match came from stemming.
func matchSnippet(hit repository.Hit, terms []string) (field, snippet string) {
	if lineContainsAny(hit.Title, terms) {
		return "title", clip(hit.Title)
	}
	if line, ok := matchingLine(hit.Content, terms); ok {
		return "content", clip(line)
	}
	if line, ok := matchingLine(hit.Updates, terms); ok {
		return "updates", clip(line)
	}
	if lineContainsAny(hit.People, terms) {
		return "people", clip(hit.People)
	}
	if lineContainsAny(hit.Labels, terms) {
		return "labels", clip(hit.Labels)
	}
	return "content", clip(firstLine(hit.Content))
}

func matchingLine(text string, terms []string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if lineContainsAny(line, terms) {
			return strings.TrimSpace(line), true
		}
	}
	return "", false
}

func lineContainsAny(line string, terms []string) bool {
	lower := strings.ToLower(line)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}

func clip(s string) string {
	runes := []rune(s)
	if len(runes) <= snippetLimit {
		return s
	}
	return string(runes[:snippetLimit]) + "..."
}
