package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/planetsapi/planets/internal/metrics"
	"github.com/planetsapi/planets/internal/model"
	"github.com/planetsapi/planets/internal/repository"
)

// PlanetStore persists planets.
type PlanetStore interface {
	CreatePlanet(ctx context.Context, planet *model.Planet) error
	GetPlanetByID(ctx context.Context, id int64) (*model.Planet, error)
	ListPlanets(ctx context.Context) ([]model.Planet, error)
}

// PlanetService handles planet business logic.
type PlanetService struct {
	store   PlanetStore
	metrics metrics.Recorder
}

// NewPlanetService creates a new PlanetService.
func NewPlanetService(store PlanetStore, recorder metrics.Recorder) *PlanetService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PlanetService{store: store, metrics: recorder}
}

// List returns all planets ordered by ID.
func (s *PlanetService) List(ctx context.Context) ([]model.Planet, error) {
	planets, err := s.store.ListPlanets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list planets: %w", err)
	}
	return planets, nil
}

// Get returns the planet with id.
func (s *PlanetService) Get(ctx context.Context, id int64) (*model.Planet, error) {
	planet, err := s.store.GetPlanetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPlanetNotFound) {
			return nil, ErrPlanetNotFound
		}
		return nil, fmt.Errorf("failed to get planet: %w", err)
	}
	return planet, nil
}

// AddPlanetInput carries the raw form values; numeric fields are parsed by Add.
type AddPlanetInput struct {
	Name     string
	Type     string
	HomeStar string
	Mass     string
	Radius   string
	Distance string
}

// Add validates input and stores a new planet.
func (s *PlanetService) Add(ctx context.Context, input AddPlanetInput) (*model.Planet, error) {
	planet, err := input.toModel()
	if err != nil {
		return nil, err
	}

	if err := s.store.CreatePlanet(ctx, planet); err != nil {
		if errors.Is(err, repository.ErrPlanetExists) {
			return nil, ErrPlanetExists
		}
		return nil, fmt.Errorf("failed to create planet: %w", err)
	}

	s.metrics.IncPlanetCreated()
	return planet, nil
}

func (in AddPlanetInput) toModel() (*model.Planet, error) {
	for _, f := range []struct{ name, value string }{
		{"planet_name", in.Name},
		{"planet_type", in.Type},
		{"home_star", in.HomeStar},
	} {
		if strings.TrimSpace(f.value) == "" {
			return nil, missing(f.name)
		}
	}

	mass, err := parseNumber("mass", in.Mass)
	if err != nil {
		return nil, err
	}
	radius, err := parseNumber("radius", in.Radius)
	if err != nil {
		return nil, err
	}
	distance, err := parseNumber("distance", in.Distance)
	if err != nil {
		return nil, err
	}

	return &model.Planet{
		Name:     in.Name,
		Type:     in.Type,
		HomeStar: in.HomeStar,
		Mass:     mass,
		Radius:   radius,
		Distance: distance,
	}, nil
}

// parseNumber accepts decimal and exponent forms such as "3760" or "4.867e24".
// NaN and infinities are rejected since they cannot be encoded as JSON.
func parseNumber(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, missing(field)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalidNumber(field)
	}
	return v, nil
}
