package navigation

import (
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/maps"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/shared/geo"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/transit"
)

type DirectionsRequest struct {
	OriginLat   *float64 `json:"origin_lat" validate:"required"`
	OriginLng   *float64 `json:"origin_lng" validate:"required"`
	Destination string   `json:"destination" validate:"required"`
}

type TransitRoutesRequest struct {
	OriginLat   *float64 `json:"origin_lat" validate:"required"`
	OriginLng   *float64 `json:"origin_lng" validate:"required"`
	Destination string   `json:"destination" validate:"required"`
	Mode        string   `json:"mode" validate:"omitempty,oneof=all bus train"`
}

type StartRequest struct {
	SessionID   string   `json:"session_id"`
	Destination string   `json:"destination" validate:"required"`
	OriginLat   *float64 `json:"origin_lat"`
	OriginLng   *float64 `json:"origin_lng"`
}

type SmartStartRequest struct {
	SessionID   string   `json:"session_id"`
	Destination string   `json:"destination" validate:"required"`
	Mode        string   `json:"mode" validate:"omitempty,oneof=walking transit bus train"`
	OriginLat   *float64 `json:"origin_lat"`
	OriginLng   *float64 `json:"origin_lng"`
}

type StopRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// DirectionsResponse is a walking route plus presentation fields.
type DirectionsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	maps.Route
}

// TransitDestination is the resolved end point of a transit plan.
type TransitDestination struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Text string  `json:"text"`
}

// TransitPlan is the full transit answer for a destination request.
type TransitPlan struct {
	Origin      geo.Coordinate     `json:"origin"`
	Destination TransitDestination `json:"destination"`
	OriginStop  transit.Stop       `json:"origin_stop"`
	Options     []transit.Option   `json:"options"`
	Alerts      []transit.Alert    `json:"alerts"`
	GeneratedAt int64              `json:"generated_at"`
}

// Travel modes chosen by the mode selector.
const (
	ModeWalking = "walking"
	ModeTransit = "transit"
)

// SmartResult is the outcome of the single start entry point: a walking
// session with its route, or a transit plan when walking was impossible or
// transit was requested explicitly.
type SmartResult struct {
	Mode  string              `json:"mode"`
	Route *DirectionsResponse `json:"directions,omitempty"`
	Trip  *TransitPlan        `json:"transit,omitempty"`
}
