package repository

import (
	"context"
	"errors"

	"github.com/planetsapi/planets/internal/model"
)

// SeedResult counts the rows inserted by Seed. Rows that already existed are skipped.
type SeedResult struct {
	PlanetsInserted int
	PlanetsSkipped  int
	UsersInserted   int
	UsersSkipped    int
}

// Seed inserts sample rows in a single transaction.
// Planets and users whose unique name or email already exists are left untouched.
func (r *Repository) Seed(ctx context.Context, planets []model.Planet, users []model.User) (*SeedResult, error) {
	result := &SeedResult{}

	err := r.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		for i := range planets {
			p := planets[i]
			err := insertPlanet(ctx, tx, &p)
			switch {
			case errors.Is(err, ErrPlanetExists):
				result.PlanetsSkipped++
			case err != nil:
				return err
			default:
				result.PlanetsInserted++
			}
		}

		for i := range users {
			u := users[i]
			err := insertUser(ctx, tx, &u)
			switch {
			case errors.Is(err, ErrEmailExists):
				result.UsersSkipped++
			case err != nil:
				return err
			default:
				result.UsersInserted++
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
