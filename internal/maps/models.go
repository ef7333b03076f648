package maps

import "github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/shared/geo"

// Step is one instruction unit of a walking route. Steps are traversed in
// slice order.
type Step struct {
	Instruction     string         `json:"instruction"`
	Distance        string         `json:"distance"`
	Duration        string         `json:"duration"`
	DistanceMeters  int            `json:"distance_meters"`
	DurationSeconds int            `json:"duration_seconds"`
	Start           geo.Coordinate `json:"start_location"`
	End             geo.Coordinate `json:"end_location"`
}

// Route is a normalized walking route. Immutable once returned by the client.
type Route struct {
	Destination          string         `json:"destination"`
	Origin               geo.Coordinate `json:"origin"`
	TotalDistance        string         `json:"total_distance"`
	TotalDuration        string         `json:"total_duration"`
	TotalDistanceMeters  int            `json:"total_distance_meters"`
	TotalDurationSeconds int            `json:"total_duration_seconds"`
	Steps                []Step         `json:"steps"`
}

// Place is one candidate from a nearby or text search, ranked by the provider.
type Place struct {
	Name     string         `json:"name"`
	Address  string         `json:"address"`
	PlaceID  string         `json:"place_id"`
	Location geo.Coordinate `json:"location"`
}
