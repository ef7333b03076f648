package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/config"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/db"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig   func() config.Config
	connectRedis func(config.Config) *redis.Client
	notify       func(chan<- os.Signal, ...os.Signal)
	run          func(context.Context, config.Config, *redis.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:   config.Load,
		connectRedis: db.ConnectRedis,
		notify:       signal.Notify,
		run:          Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	if cfg.GoogleMapsAPIKey == "" {
		log.Printf("GOOGLE_MAPS_API_KEY not set, route requests will fail")
	}
	if cfg.TransitAPIKey == "" {
		log.Printf("TRANSIT_API_KEY not set, transit requests will fail")
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, rdb, signals, nil); err != nil {
		log.Printf("server exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	srv := server.NewServer(cfg, rdb)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
