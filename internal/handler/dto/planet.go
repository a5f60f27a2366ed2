package dto

import (
	"net/url"

	"github.com/planetsapi/planets/internal/model"
)

// AddPlanetRequest is the body of POST /add_planet.
type AddPlanetRequest struct {
	Name     string       `json:"planet_name"`
	Type     string       `json:"planet_type"`
	HomeStar string       `json:"home_star"`
	Mass     NumberString `json:"mass"`
	Radius   NumberString `json:"radius"`
	Distance NumberString `json:"distance"`
}

// FromForm implements FormDecoder.
func (r *AddPlanetRequest) FromForm(form url.Values) {
	r.Name = form.Get("planet_name")
	r.Type = form.Get("planet_type")
	r.HomeStar = form.Get("home_star")
	r.Mass = NumberString(form.Get("mass"))
	r.Radius = NumberString(form.Get("radius"))
	r.Distance = NumberString(form.Get("distance"))
}

// PlanetResponse represents a planet in API responses.
type PlanetResponse struct {
	ID       int64   `json:"planet_id"`
	Name     string  `json:"planet_name"`
	Type     string  `json:"planet_type"`
	HomeStar string  `json:"home_star"`
	Mass     float64 `json:"mass"`
	Radius   float64 `json:"radius"`
	Distance float64 `json:"distance"`
}

// ToPlanetResponse converts a Planet model to PlanetResponse DTO.
func ToPlanetResponse(p *model.Planet) PlanetResponse {
	return PlanetResponse{
		ID:       p.ID,
		Name:     p.Name,
		Type:     p.Type,
		HomeStar: p.HomeStar,
		Mass:     p.Mass,
		Radius:   p.Radius,
		Distance: p.Distance,
	}
}

// ToPlanetListResponse converts planets to a non-nil slice of DTOs.
func ToPlanetListResponse(planets []model.Planet) []PlanetResponse {
	out := make([]PlanetResponse, 0, len(planets))
	for i := range planets {
		out = append(out, ToPlanetResponse(&planets[i]))
	}
	return out
}
