package repository

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/planetsapi/planets/internal/repository/migrations"
)

// MigrationResult summarizes one applied migration.
type MigrationResult struct {
	Version   int64
	Path      string
	Direction string
}

func (r *Repository) migrationProvider() (*goose.Provider, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, r.db.DB, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate creates the schema by applying all pending migrations.
func (r *Repository) Migrate(ctx context.Context) ([]MigrationResult, error) {
	provider, err := r.migrationProvider()
	if err != nil {
		return nil, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return toMigrationResults(results), nil
}

// Drop removes the schema by rolling back every applied migration.
func (r *Repository) Drop(ctx context.Context) ([]MigrationResult, error) {
	provider, err := r.migrationProvider()
	if err != nil {
		return nil, err
	}

	results, err := provider.DownTo(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to roll back migrations: %w", err)
	}

	return toMigrationResults(results), nil
}

// SchemaVersion returns the current migration version, 0 when nothing is applied.
func (r *Repository) SchemaVersion(ctx context.Context) (int64, error) {
	provider, err := r.migrationProvider()
	if err != nil {
		return 0, err
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func toMigrationResults(results []*goose.MigrationResult) []MigrationResult {
	out := make([]MigrationResult, 0, len(results))
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		out = append(out, MigrationResult{
			Version:   res.Source.Version,
			Path:      res.Source.Path,
			Direction: res.Direction,
		})
	}
	return out
}
