package location

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type updateMessage struct {
	SessionID string   `json:"session_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp int64    `json:"timestamp"`
}

func RegisterRoutes(r fiber.Router, store *Store) {
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		sessionID := ""
		defer func() {
			if sessionID != "" {
				store.Drop(sessionID)
				log.Printf("location: tracking disconnected for %s", sessionID)
			}
		}()

		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				return
			}

			var msg updateMessage
			if err := json.Unmarshal(data, &msg); err != nil || msg.SessionID == "" || msg.Latitude == nil || msg.Longitude == nil {
				_ = c.WriteJSON(fiber.Map{
					"status":  "error",
					"message": "Missing session_id or coordinates",
				})
				continue
			}

			// one stream serves exactly one session for its lifetime
			if sessionID == "" {
				sessionID = msg.SessionID
			} else if msg.SessionID != sessionID {
				_ = c.WriteJSON(fiber.Map{
					"status":  "error",
					"message": "Stream is bound to session " + sessionID,
				})
				continue
			}

			store.Put(Fix{
				SessionID:   msg.SessionID,
				Lat:         *msg.Latitude,
				Lng:         *msg.Longitude,
				TimestampMs: msg.Timestamp,
			})

			if err := c.WriteJSON(fiber.Map{
				"status":     "received",
				"session_id": msg.SessionID,
			}); err != nil {
				return
			}
		}
	}))

	r.Get("/current/:sessionID", func(c *fiber.Ctx) error {
		fix, ok := store.Get(c.Params("sessionID"))
		if !ok {
			return c.JSON(fiber.Map{
				"status":  "not_found",
				"message": "No location data for this session. Make sure the location stream is connected.",
			})
		}
		return c.JSON(fiber.Map{
			"status":     "success",
			"session_id": fix.SessionID,
			"location":   fix,
		})
	})

	r.Get("/active-sessions", func(c *fiber.Ctx) error {
		fixes := store.All()
		return c.JSON(fiber.Map{
			"status":          "success",
			"active_sessions": len(fixes),
			"sessions":        fixes,
		})
	})
}
