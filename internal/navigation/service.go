package navigation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/maps"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/resolver"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/session"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/shared/geo"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/stream"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/transit"
)

// Service ties destination resolution, route and transit acquisition, and
// per-session navigation state together. Provider calls run on the calling
// goroutine, so one slow call never stalls other sessions.
type Service struct {
	maps     *maps.Client
	transit  *transit.Client
	resolver *resolver.Resolver
	sessions *session.Store
	hub      *stream.Hub
}

func NewService(mapsClient *maps.Client, transitClient *transit.Client, hub *stream.Hub) *Service {
	return &Service{
		maps:     mapsClient,
		transit:  transitClient,
		resolver: resolver.New(mapsClient),
		sessions: session.NewStore(),
		hub:      hub,
	}
}

// Sessions exposes the session store for transports and tests.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// Directions resolves a destination phrase and fetches a walking route
// without creating a session.
func (s *Service) Directions(ctx context.Context, origin geo.Coordinate, destination string) (DirectionsResponse, error) {
	res, err := s.resolver.Resolve(ctx, destination, origin)
	if err != nil {
		return DirectionsResponse{}, err
	}

	route, err := s.maps.Directions(ctx, origin, res.Destination)
	if err != nil {
		return DirectionsResponse{}, err
	}

	return DirectionsResponse{
		Status:  "success",
		Message: fmt.Sprintf("Found route to %s. %d steps total.", route.Destination, len(route.Steps)),
		Route:   route,
	}, nil
}

// TransitRoutes resolves the destination to a coordinate, finds the nearest
// stop to the origin, plans up to three itineraries and attaches service
// alerts for the routes involved.
func (s *Service) TransitRoutes(ctx context.Context, origin geo.Coordinate, destination, mode string) (TransitPlan, error) {
	if mode == "" {
		mode = transit.ModeAll
	}

	res, err := s.resolver.Resolve(ctx, destination, origin)
	if err != nil {
		return TransitPlan{}, err
	}

	dest := res.Location
	if dest == nil {
		coord, err := s.maps.Geocode(ctx, res.Destination)
		if err != nil {
			return TransitPlan{}, err
		}
		dest = &coord
	}

	stop, err := s.transit.NearestStop(ctx, origin, mode)
	if err != nil {
		return TransitPlan{}, err
	}

	trip, err := s.transit.PlanTrip(ctx, stop, *dest, mode)
	if err != nil {
		return TransitPlan{}, err
	}

	alerts, err := s.transit.ServiceAlerts(ctx, trip.RouteIDs, origin)
	if err != nil {
		return TransitPlan{}, err
	}

	return TransitPlan{
		Origin:      origin,
		Destination: TransitDestination{Lat: dest.Lat, Lng: dest.Lng, Text: res.Destination},
		OriginStop:  stop,
		Options:     trip.Options,
		Alerts:      alerts,
		GeneratedAt: time.Now().Unix(),
	}, nil
}

// Start resolves the destination, acquires a walking route, and stores a
// fresh session under id, overwriting any prior session for that id. The
// session is only stored once fully initialized.
func (s *Service) Start(ctx context.Context, id string, origin geo.Coordinate, destination string) (DirectionsResponse, error) {
	directions, err := s.Directions(ctx, origin, destination)
	if err != nil {
		return DirectionsResponse{}, err
	}

	s.sessions.Put(id, directions.Route)
	log.Printf("navigation: session %s started to %s (%d steps)", id, directions.Destination, len(directions.Steps))
	return directions, nil
}

// SmartStart is the single entry point that performs resolution, mode
// selection, route or trip acquisition, and session creation. An explicit
// transit request is honored; otherwise walking is attempted first and
// transit is the fallback when no walking route exists.
func (s *Service) SmartStart(ctx context.Context, id string, origin geo.Coordinate, destination, mode string) (SmartResult, error) {
	switch mode {
	case ModeTransit, transit.ModeBus, transit.ModeTrain:
		transitMode := mode
		if mode == ModeTransit {
			transitMode = transit.ModeAll
		}
		plan, err := s.TransitRoutes(ctx, origin, destination, transitMode)
		if err != nil {
			return SmartResult{}, err
		}
		return SmartResult{Mode: ModeTransit, Trip: &plan}, nil
	}

	directions, err := s.Start(ctx, id, origin, destination)
	if err == nil {
		return SmartResult{Mode: ModeWalking, Route: &directions}, nil
	}
	if !errors.Is(err, maps.ErrNoRoute) {
		return SmartResult{}, err
	}

	log.Printf("navigation: no walking route for session %s, trying transit", id)
	plan, terr := s.TransitRoutes(ctx, origin, destination, transit.ModeAll)
	if terr != nil {
		// surface the walking failure; transit was a best-effort fallback
		return SmartResult{}, err
	}
	return SmartResult{Mode: ModeTransit, Trip: &plan}, nil
}

// UpdateLocation advances the session with a new fix and fans the resulting
// update out to stream observers.
func (s *Service) UpdateLocation(id string, current geo.Coordinate) (session.Update, error) {
	upd, err := s.sessions.Update(id, current)
	if err != nil {
		return session.Update{}, err
	}

	if s.hub != nil {
		if payload, err := json.Marshal(upd); err == nil {
			s.hub.Broadcast(id, payload)
		}
	}
	return upd, nil
}

// Stop removes the session if present. Safe to call for unknown ids.
func (s *Service) Stop(id string) {
	s.sessions.Stop(id)
}

// ActiveSessions lists the in-flight navigations.
func (s *Service) ActiveSessions() []session.Snapshot {
	return s.sessions.Snapshots()
}

// Health reports provider configuration and load.
func (s *Service) Health() map[string]any {
	return map[string]any{
		"status":             "healthy",
		"service":            "navigation",
		"maps_configured":    s.maps.Configured(),
		"transit_configured": s.transit.Configured(),
		"active_navigations": s.sessions.Len(),
	}
}
