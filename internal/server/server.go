package server

import (
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/config"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/location"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/maps"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/navigation"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/stream"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/transit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	Redis  *redis.Client
	Stream *stream.Hub
	Fixes  *location.Store
	Nav    *navigation.Service
}

func NewServer(cfg config.Config, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	s := &Server{
		App:    app,
		Cfg:    cfg,
		Redis:  redisClient,
		Stream: hub,
		Fixes:  location.NewStore(),
		Nav: navigation.NewService(
			maps.NewClient(cfg.GoogleMapsAPIKey, cfg.GoogleMapsBaseURL),
			transit.NewClient(cfg.TransitAPIKey, cfg.TransitBaseURL),
			hub,
		),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	location.RegisterRoutes(s.App.Group("/location"), s.Fixes)
	navigation.RegisterRoutes(s.App.Group("/navigation"), s.Nav, s.Fixes)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
