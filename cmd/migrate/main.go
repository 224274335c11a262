// Command migrate imports a markdown data tree into the database.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tracker/internal/config"
	"tracker/internal/importer"
	"tracker/internal/server"
)

var (
	dryRun bool
	backup bool
)

func main() {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Import the markdown data tree into the database",
		Long: `Walks DATA_ROOT (projects, epics, tasks, subtasks, notes, people),
parses each markdown file's YAML frontmatter and upserts the entities,
their update feeds, labels, people links and the search index.

Re-running is safe: rows are overwritten with the file contents.`,
		RunE: run,
	}
	root.Flags().BoolVar(&dryRun, "dry-run", false, "walk and validate without writing to the database")
	root.Flags().BoolVar(&backup, "backup", false, "copy the data tree aside before importing")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if backup {
		dest := fmt.Sprintf("%s.backup-%s", filepath.Clean(cfg.DataRoot), time.Now().Format("20060102-150405"))
		if err := copyTree(cfg.DataRoot, dest); err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		log.Printf("✅ Data tree backed up to %s", dest)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}

	if !dryRun {
		if err := server.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to prepare schema: %w", err)
		}
	}

	stats, err := importer.New(db, cfg.DataRoot, dryRun).Run(context.Background())
	if stats != nil {
		log.Printf("📊 Imported: %d projects, %d epics, %d tasks, %d subtasks, %d notes, %d people (%d errors)",
			stats.Projects, stats.Epics, stats.Tasks, stats.Subtasks, stats.Notes, stats.People, stats.Errors)
	}
	if err != nil {
		log.Printf("⚠️  Import finished with errors:\n%v", err)
	}
	return nil
}

// copyTree copies src recursively to dest, which must not exist.
func copyTree(src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
