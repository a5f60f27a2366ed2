package model

// Planet is a catalogued celestial body. Name is unique across all planets.
// Mass, Radius and Distance are stored as given; the system attaches no units.
type Planet struct {
	ID       int64   `db:"planet_id" json:"planet_id"`
	Name     string  `db:"planet_name" json:"planet_name"`
	Type     string  `db:"planet_type" json:"planet_type"`
	HomeStar string  `db:"home_star" json:"home_star"`
	Mass     float64 `db:"mass" json:"mass"`
	Radius   float64 `db:"radius" json:"radius"`
	Distance float64 `db:"distance" json:"distance"`
}
