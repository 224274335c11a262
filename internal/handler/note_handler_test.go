package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"tracker/internal/handler"
	"tracker/internal/repository"
	"tracker/internal/search"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupNoteRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	gin.SetMode(gin.TestMode)
	gormDB, mock := setupHandlerDB(t)

	noteHandler := newNoteHandler(gormDB)

	router := gin.Default()
	router.POST("/notes/link", noteHandler.Link)
	router.POST("/notes/unlink", noteHandler.Unlink)
	return router, mock
}

func newNoteHandler(gormDB *gorm.DB) *handler.NoteHandler {
	updateRepo := repository.NewUpdateRepository(gormDB)
	personRepo := repository.NewPersonRepository(gormDB)
	labelRepo := repository.NewLabelRepository(gormDB)
	indexer := search.NewIndexer(repository.NewSearchRepository(gormDB), updateRepo, personRepo, labelRepo)

	return handler.NewNoteHandler(
		repository.NewNoteRepository(gormDB),
		repository.NewProjectRepository(gormDB),
		repository.NewEpicRepository(gormDB),
		repository.NewTaskRepository(gormDB),
		repository.NewSubtaskRepository(gormDB),
		personRepo,
		updateRepo,
		indexer,
	)
}

func TestNoteLink_AddsLinkAndRecordsActivity(t *testing.T) {
	// Arrange
	router, mock := setupNoteRouter(t)

	mock.ExpectQuery(`SELECT .* FROM "notes" WHERE id = .* LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "note_ids"}).
			AddRow("note-0badf00d", "Meeting notes", "active", "[]"))
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .* LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "project_id", "note_ids"}).
			AddRow("task-deadbeef", "Fix the build", "todo", "project-cafebabe", "[]"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "updates"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	body := []byte(`{"entity_id":"task-deadbeef","note_id":"note-0badf00d"}`)
	req, _ := http.NewRequest("POST", "/notes/link", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Note linked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteUnlink_MissingLink(t *testing.T) {
	// Arrange
	router, mock := setupNoteRouter(t)

	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .* LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "project_id", "note_ids"}).
			AddRow("task-deadbeef", "Fix the build", "todo", "project-cafebabe", "[]"))

	body := []byte(`{"entity_id":"task-deadbeef","note_id":"note-0badf00d"}`)
	req, _ := http.NewRequest("POST", "/notes/unlink", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Note link not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteLink_UnknownNote(t *testing.T) {
	// Arrange
	router, mock := setupNoteRouter(t)

	mock.ExpectQuery(`SELECT .* FROM "notes" WHERE id = .* LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	body := []byte(`{"entity_id":"task-deadbeef","note_id":"note-00000000"}`)
	req, _ := http.NewRequest("POST", "/notes/link", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Note not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
