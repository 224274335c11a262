package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tracker/internal/handler"
	"tracker/internal/repository"
	"tracker/internal/search"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskRow(mockRows *sqlmock.Rows, id, seqID string) *sqlmock.Rows {
	return mockRows.AddRow(id, "Task "+seqID, "todo", "project-cafebabe", seqID, "{}", "[]", "[]")
}

func TestTaskUpdate_MirrorsDependencies(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	gormDB, mock := setupHandlerDB(t)

	updateRepo := repository.NewUpdateRepository(gormDB)
	personRepo := repository.NewPersonRepository(gormDB)
	labelRepo := repository.NewLabelRepository(gormDB)
	indexer := search.NewIndexer(repository.NewSearchRepository(gormDB), updateRepo, personRepo, labelRepo)
	taskHandler := handler.NewTaskHandler(
		repository.NewTaskRepository(gormDB),
		repository.NewSubtaskRepository(gormDB),
		repository.NewEpicRepository(gormDB),
		repository.NewProjectRepository(gormDB),
		repository.NewStatusRepository(gormDB),
		updateRepo,
		personRepo,
		labelRepo,
		indexer,
	)

	router := gin.Default()
	router.PUT("/tasks/:id", taskHandler.Update)

	columns := []string{"id", "title", "status", "project_id", "seq_id", "dependencies", "checklist", "note_ids"}

	// The task being edited, then the counterpart getting the mirror edge.
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .* LIMIT 1`).
		WillReturnRows(taskRow(sqlmock.NewRows(columns), "task-aaaa1111", "t1"))
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .* LIMIT 1`).
		WillReturnRows(taskRow(sqlmock.NewRows(columns), "task-bbbb2222", "t2"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "updates"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := []byte(`{"dependencies":{"blocks":["task-bbbb2222"]}}`)
	req, _ := http.NewRequest("PUT", "/tasks/task-aaaa1111", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response struct {
		Dependencies struct {
			Blocks []string `json:"blocks"`
		} `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, []string{"task-bbbb2222"}, response.Dependencies.Blocks)
	assert.NoError(t, mock.ExpectationsWereMet())
}
