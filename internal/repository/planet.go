package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/planetsapi/planets/internal/model"
)

// Common errors for planet repository operations.
var (
	ErrPlanetNotFound = errors.New("planet not found")
	ErrPlanetExists   = errors.New("planet name already exists")
)

const planetColumns = `planet_id, planet_name, planet_type, home_star, mass, radius, distance`

// CreatePlanet inserts a new planet and sets its ID.
// A duplicate name is rejected by the unique index and reported as ErrPlanetExists.
func (r *Repository) CreatePlanet(ctx context.Context, planet *model.Planet) error {
	return insertPlanet(ctx, r.db, planet)
}

func insertPlanet(ctx context.Context, q DBTX, planet *model.Planet) error {
	query := `
		INSERT INTO planets (planet_name, planet_type, home_star, mass, radius, distance)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := q.ExecContext(ctx, query,
		planet.Name,
		planet.Type,
		planet.HomeStar,
		planet.Mass,
		planet.Radius,
		planet.Distance,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPlanetExists
		}
		return fmt.Errorf("failed to create planet: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read planet id: %w", err)
	}
	planet.ID = id

	return nil
}

// GetPlanetByID retrieves a planet by its ID.
func (r *Repository) GetPlanetByID(ctx context.Context, id int64) (*model.Planet, error) {
	query := `SELECT ` + planetColumns + ` FROM planets WHERE planet_id = ?`

	var planet model.Planet
	if err := sqlx.GetContext(ctx, r.db, &planet, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanetNotFound
		}
		return nil, fmt.Errorf("failed to get planet by ID: %w", err)
	}

	return &planet, nil
}

// ListPlanets returns every planet ordered by ID.
func (r *Repository) ListPlanets(ctx context.Context) ([]model.Planet, error) {
	query := `SELECT ` + planetColumns + ` FROM planets ORDER BY planet_id`

	planets := make([]model.Planet, 0)
	if err := sqlx.SelectContext(ctx, r.db, &planets, query); err != nil {
		return nil, fmt.Errorf("failed to list planets: %w", err)
	}

	return planets, nil
}
