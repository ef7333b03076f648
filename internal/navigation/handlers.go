package navigation

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/location"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/maps"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/resolver"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/session"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/shared/geo"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/transit"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

func RegisterRoutes(r fiber.Router, svc *Service, fixes *location.Store) {
	r.Post("/directions", func(c *fiber.Ctx) error {
		var req DirectionsRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		directions, err := svc.Directions(c.Context(), geo.Coordinate{Lat: *req.OriginLat, Lng: *req.OriginLng}, req.Destination)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(directions)
	})

	r.Post("/transit-routes", func(c *fiber.Ctx) error {
		var req TransitRoutesRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		plan, err := svc.TransitRoutes(c.Context(), geo.Coordinate{Lat: *req.OriginLat, Lng: *req.OriginLng}, req.Destination, req.Mode)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(plan)
	})

	r.Post("/start", func(c *fiber.Ctx) error {
		var req StartRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		sessionID, origin, err := originFor(req.SessionID, req.OriginLat, req.OriginLng, fixes)
		if err != nil {
			return err
		}

		directions, err := svc.Start(c.Context(), sessionID, origin, req.Destination)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{
			"status":     "success",
			"session_id": sessionID,
			"directions": directions,
			"message":    "Navigation started. Connect to /navigation/ws for real-time updates",
		})
	})

	r.Post("/smart-start", func(c *fiber.Ctx) error {
		var req SmartStartRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		sessionID, origin, err := originFor(req.SessionID, req.OriginLat, req.OriginLng, fixes)
		if err != nil {
			return err
		}

		result, err := svc.SmartStart(c.Context(), sessionID, origin, req.Destination, req.Mode)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{
			"status":     "success",
			"session_id": sessionID,
			"mode":       result.Mode,
			"directions": result.Route,
			"transit":    result.Trip,
		})
	})

	r.Post("/stop", func(c *fiber.Ctx) error {
		var req StopRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		svc.Stop(req.SessionID)
		return c.JSON(fiber.Map{"status": "success", "message": "Navigation stopped"})
	})

	r.Get("/active-sessions", func(c *fiber.Ctx) error {
		sessions := svc.ActiveSessions()
		return c.JSON(fiber.Map{
			"status":             "success",
			"active_navigations": len(sessions),
			"sessions":           sessions,
		})
	})

	r.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(svc.Health())
	})

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		handleNavigationSocket(c, svc)
	}))
}

func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// originFor picks the navigation origin: explicit request coordinates win,
// then the latest fix from the location stream. A missing session id is
// generated so the caller can still address the session afterwards.
func originFor(sessionID string, lat, lng *float64, fixes *location.Store) (string, geo.Coordinate, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if lat != nil && lng != nil {
		return sessionID, geo.Coordinate{Lat: *lat, Lng: *lng}, nil
	}
	if fix, ok := fixes.Get(sessionID); ok {
		return sessionID, geo.Coordinate{Lat: fix.Lat, Lng: fix.Lng}, nil
	}
	return "", geo.Coordinate{}, fiber.NewError(fiber.StatusBadRequest,
		"I need your location to start navigation. Connect the location stream or provide origin_lat/origin_lng")
}

// mapError translates the typed error taxonomy into transport responses.
// The human-readable message stays distinct from the error kind.
func mapError(err error) error {
	switch {
	case errors.Is(err, resolver.ErrDestinationNotFound), errors.Is(err, maps.ErrNoAddress):
		return fiber.NewError(fiber.StatusNotFound,
			"Could not find that place near your location. Try a specific address or landmark instead.")
	case errors.Is(err, maps.ErrNoRoute):
		return fiber.NewError(fiber.StatusNotFound,
			"No walking route found. Try being more specific.")
	case errors.Is(err, transit.ErrNoTransit):
		return fiber.NewError(fiber.StatusNotFound,
			"No transit routes found for this destination.")
	case errors.Is(err, session.ErrNoActiveSession):
		return fiber.NewError(fiber.StatusNotFound,
			"No active navigation for this session")
	case errors.Is(err, maps.ErrNotConfigured), errors.Is(err, transit.ErrNotConfigured):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
}

type wsLocationMessage struct {
	SessionID string   `json:"session_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// handleNavigationSocket drives one navigation session over a socket: the
// first message names the session, every following message is a GPS fix, and
// every fix is answered with a navigation update. Arrival closes the socket;
// disconnect stops the session so nothing leaks.
func handleNavigationSocket(c *websocket.Conn, svc *Service) {
	_, data, err := c.ReadMessage()
	if err != nil {
		return
	}

	var init wsLocationMessage
	if err := json.Unmarshal(data, &init); err != nil || init.SessionID == "" {
		_ = c.WriteJSON(fiber.Map{"status": "error", "message": "session_id required in first message"})
		return
	}
	sessionID := init.SessionID
	defer svc.Stop(sessionID)

	sess, err := svc.Sessions().Get(sessionID)
	if err != nil {
		_ = c.WriteJSON(fiber.Map{
			"status":  "error",
			"message": "No active navigation for this session. Call /navigation/start first.",
		})
		return
	}

	if len(sess.Route.Steps) == 0 {
		_ = c.WriteJSON(fiber.Map{"status": "error", "message": "Route has no steps"})
		return
	}

	first := sess.Route.Steps[0]
	_ = c.WriteJSON(fiber.Map{
		"status":           "navigation_started",
		"current_step":     1,
		"total_steps":      len(sess.Route.Steps),
		"instruction":      first.Instruction,
		"distance_to_next": first.DistanceMeters,
		"should_announce":  true,
		"announcement":     "Starting navigation. " + first.Instruction,
	})

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			log.Printf("navigation: socket closed for %s", sessionID)
			return
		}

		var msg wsLocationMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Latitude == nil || msg.Longitude == nil {
			_ = c.WriteJSON(fiber.Map{"status": "error", "message": "Missing latitude or longitude"})
			continue
		}

		upd, err := svc.UpdateLocation(sessionID, geo.Coordinate{Lat: *msg.Latitude, Lng: *msg.Longitude})
		if err != nil {
			_ = c.WriteJSON(fiber.Map{"status": "error", "message": "No active navigation for this session"})
			return
		}

		if err := c.WriteJSON(upd); err != nil {
			return
		}
		if upd.Status == session.StatusArrived {
			log.Printf("navigation: session %s arrived", sessionID)
			return
		}
	}
}
