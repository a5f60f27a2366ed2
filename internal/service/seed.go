package service

import (
	"context"
	"fmt"

	"github.com/planetsapi/planets/internal/model"
	"github.com/planetsapi/planets/internal/repository"
)

// Sample account created by the seed command.
const (
	SeedUserEmail    = "test@test.com"
	SeedUserPassword = "P@ssw0rd"
)

// Seeder inserts sample rows, skipping ones that already exist.
type Seeder interface {
	Seed(ctx context.Context, planets []model.Planet, users []model.User) (*repository.SeedResult, error)
}

// SamplePlanets returns the inner planets of the solar system.
// Mass is in kg, radius in miles and distance from the sun in miles.
func SamplePlanets() []model.Planet {
	return []model.Planet{
		{Name: "Mercury", Type: "Class D", HomeStar: "Sol", Mass: 2.258e23, Radius: 1516, Distance: 35.98e6},
		{Name: "Venus", Type: "Class K", HomeStar: "Sol", Mass: 4.867e24, Radius: 3760, Distance: 67.24e6},
		{Name: "Earth", Type: "Class M", HomeStar: "Sol", Mass: 5.972e24, Radius: 3959, Distance: 92.96e6},
	}
}

// Seed stores the sample planets and the sample user with a hashed password.
func Seed(ctx context.Context, seeder Seeder, hasher PasswordHasher) (*repository.SeedResult, error) {
	hash, err := hasher.Hash(SeedUserPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := []model.User{{
		FirstName:    "William",
		LastName:     "Herschel",
		Email:        SeedUserEmail,
		PasswordHash: hash,
	}}

	result, err := seeder.Seed(ctx, SamplePlanets(), users)
	if err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	return result, nil
}
