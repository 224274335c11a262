package handler_test

import (
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
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupHandlerDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestEpicGetByID_IncludesProgressRollups(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	gormDB, mock := setupHandlerDB(t)

	epicRepo := repository.NewEpicRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)
	statusRepo := repository.NewStatusRepository(gormDB)
	updateRepo := repository.NewUpdateRepository(gormDB)
	indexer := search.NewIndexer(
		repository.NewSearchRepository(gormDB),
		updateRepo,
		repository.NewPersonRepository(gormDB),
		repository.NewLabelRepository(gormDB),
	)
	epicHandler := handler.NewEpicHandler(epicRepo, projectRepo, statusRepo, updateRepo, indexer)

	router := gin.Default()
	router.GET("/epics/:id", epicHandler.GetByID)

	content := "Plan:\n- [x] scope the work\n- [ ] build it\n"
	mock.ExpectQuery(`SELECT .* FROM "epics" WHERE id = .* LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "content", "project_id"}).
			AddRow("epic-deadbeef", "Launch", "active", content, "project-cafebabe"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	req, _ := http.NewRequest("GET", "/epics/epic-deadbeef", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.EpicResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Progress.Completed)
	assert.Equal(t, 4, response.Progress.Total)
	assert.Equal(t, 25, response.Progress.Percentage)
	assert.Equal(t, 1, response.MarkdownProgress.Completed)
	assert.Equal(t, 2, response.MarkdownProgress.Total)
	assert.Equal(t, 50, response.MarkdownProgress.Percentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
