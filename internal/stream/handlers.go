package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes exposes a read-only observer socket per session. A caregiver
// app can watch a user's navigation updates without joining the navigation
// socket itself.
func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws/:sessionID", websocket.New(func(c *websocket.Conn) {
		client := hub.Register(c.Params("sessionID"))
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		// observers never send; reads only detect disconnect
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		<-done
	}))
}
