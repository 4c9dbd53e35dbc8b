package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"
)

//go:embed migrations/*.up.sql
var embedded embed.FS

// Migrations holds the bundled schema files.
var Migrations, _ = fs.Sub(embedded, "migrations")

// RunMigrations applies every *.up.sql file in fsys in name order. The files are
// written to be re-runnable.
func RunMigrations(ctx context.Context, db *sql.DB, fsys fs.FS, logger *zap.Logger) error {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return err
	}

	var upMigrations []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".up.sql") {
			upMigrations = append(upMigrations, file.Name())
		}
	}

	sort.Strings(upMigrations)

	for _, migrationFile := range upMigrations {
		logger.Info("Running migration", zap.String("file", migrationFile))
		content, err := fs.ReadFile(fsys, migrationFile)
		if err != nil {
			return err
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("migration %s failed: %w", migrationFile, err)
		}
	}

	logger.Info("Migrations completed successfully", zap.Int("count", len(upMigrations)))
	return nil
}
