package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tracker/internal/config"
	"tracker/internal/handler"
	"tracker/internal/middleware"
	"tracker/internal/repository"
	"tracker/internal/search"
	"tracker/migrations"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("❌ failed to run migrations: %w", err)
	}
	log.Println("✅ Database schema up to date")

	// Setup Gin
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	epicRepo := repository.NewEpicRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	personRepo := repository.NewPersonRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	updateRepo := repository.NewUpdateRepository(db)
	searchRepo := repository.NewSearchRepository(db)

	indexer := search.NewIndexer(searchRepo, updateRepo, personRepo, labelRepo)
	lookup := handler.NewEntityLookup(projectRepo, epicRepo, taskRepo, subtaskRepo, noteRepo, personRepo)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo)
	projectHandler := handler.NewProjectHandler(projectRepo, statusRepo, updateRepo, indexer)
	epicHandler := handler.NewEpicHandler(epicRepo, projectRepo, statusRepo, updateRepo, indexer)
	taskHandler := handler.NewTaskHandler(taskRepo, subtaskRepo, epicRepo, projectRepo, statusRepo, updateRepo, personRepo, labelRepo, indexer)
	subtaskHandler := handler.NewSubtaskHandler(subtaskRepo, taskRepo, projectRepo, statusRepo, updateRepo, indexer)
	noteHandler := handler.NewNoteHandler(noteRepo, projectRepo, epicRepo, taskRepo, subtaskRepo, personRepo, updateRepo, indexer)
	personHandler := handler.NewPersonHandler(personRepo, updateRepo, lookup, indexer)
	labelHandler := handler.NewLabelHandler(labelRepo, updateRepo, lookup, indexer)
	updateHandler := handler.NewUpdateHandler(updateRepo, lookup, indexer)
	searchHandler := handler.NewSearchHandler(searchRepo)
	quickAddHandler := handler.NewQuickAddHandler(projectRepo, epicRepo, taskRepo, noteRepo, updateRepo, indexer)
	bulkHandler := handler.NewBulkHandler(taskRepo, subtaskRepo, statusRepo, updateRepo, indexer)
	statusHandler := handler.NewStatusHandler(statusRepo)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.GetAll)
		authorized.GET("/projects/:id", projectHandler.GetByID)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.POST("/projects/:id/archive", projectHandler.Archive)
		authorized.GET("/projects/:id/activity", projectHandler.Activity)

		// Epic routes
		authorized.POST("/epics", epicHandler.Create)
		authorized.GET("/epics", epicHandler.GetByProject)
		authorized.GET("/epics/:id", epicHandler.GetByID)
		authorized.PUT("/epics/:id", epicHandler.Update)
		authorized.POST("/epics/:id/archive", epicHandler.Archive)

		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks", taskHandler.GetByProject)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.PUT("/tasks/:id/status", taskHandler.SetStatus)
		authorized.POST("/tasks/:id/archive", taskHandler.Archive)
		authorized.POST("/tasks/:id/checklist", taskHandler.Checklist)

		// Subtask routes
		authorized.POST("/subtasks", subtaskHandler.Create)
		authorized.GET("/subtasks", subtaskHandler.GetByTask)
		authorized.GET("/subtasks/:id", subtaskHandler.GetByID)
		authorized.PUT("/subtasks/:id", subtaskHandler.Update)
		authorized.PUT("/subtasks/:id/status", subtaskHandler.SetStatus)
		authorized.POST("/subtasks/:id/archive", subtaskHandler.Archive)
		authorized.POST("/subtasks/:id/checklist", subtaskHandler.Checklist)

		// Note routes
		authorized.POST("/notes", noteHandler.Create)
		authorized.GET("/notes", noteHandler.GetAll)
		authorized.GET("/notes/:id", noteHandler.GetByID)
		authorized.PUT("/notes/:id", noteHandler.Update)
		authorized.DELETE("/notes/:id", noteHandler.Delete)
		authorized.POST("/notes/link", noteHandler.Link)
		authorized.POST("/notes/unlink", noteHandler.Unlink)

		// People routes
		authorized.POST("/people", personHandler.Create)
		authorized.GET("/people", personHandler.GetAll)
		authorized.GET("/people/:id", personHandler.GetByID)
		authorized.PUT("/people/:id", personHandler.Update)
		authorized.POST("/people/assign", personHandler.Assign)
		authorized.POST("/people/unassign", personHandler.Unassign)

		// Label routes
		authorized.GET("/labels", labelHandler.GetAll)
		authorized.GET("/labels/for", labelHandler.ForEntity)
		authorized.POST("/labels/attach", labelHandler.Attach)
		authorized.POST("/labels/detach", labelHandler.Detach)

		// Update feed routes
		authorized.POST("/updates", updateHandler.Add)
		authorized.GET("/updates", updateHandler.GetForEntity)

		// Search, capture and batch routes
		authorized.GET("/search", searchHandler.Search)
		authorized.POST("/quick-add", quickAddHandler.Add)
		authorized.POST("/bulk-update", bulkHandler.Update)
		authorized.GET("/statuses", statusHandler.GetAll)
	}
	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

// RunMigrations applies the embedded SQL migrations over the same
// connection GORM uses.
func RunMigrations(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
