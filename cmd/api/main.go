package main

import (
	"log"

	"pollstream/config"
	"pollstream/internal/events"
	"pollstream/internal/handler"
	pollredis "pollstream/internal/redis"
	"pollstream/internal/server"
	"pollstream/internal/services"
	"pollstream/pkg/database"
	"pollstream/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	loggerMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		loggerMode = logger.ProductionMode
	}
	l := logger.New(loggerMode)
	logger.SetGlobalLogger(l)

	database.Connect(cfg)
	defer database.Close()

	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	hub := server.NewHub(l)
	go hub.Run()
	defer hub.Stop()

	// The hub publishes directly unless redis is enabled, in which case every
	// event goes through the relay and comes back via the subscription.
	var publisher events.Publisher = hub
	var limiter *pollredis.RateLimiter

	if cfg.RedisEnabled {
		client, err := pollredis.NewClient(pollredis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()

		relay := events.NewRedisRelay(client, hub, l)
		if err := relay.Start(); err != nil {
			log.Fatalf("Failed to start event relay: %v", err)
		}
		defer relay.Stop()
		publisher = relay

		limiter = pollredis.NewRateLimiter(client, pollredis.DefaultRateLimitConfig())
	}

	authService := services.NewAuthService(database.DB, cfg.JWTSecret, cfg.JWTExpiryMin, l)
	pollService := services.NewPollService(database.DB, publisher, l)
	voteService := services.NewVoteService(database.DB, publisher, l)
	likeService := services.NewLikeService(database.DB, publisher, l)

	handlers := &server.Handlers{
		Auth: handler.NewAuthHandler(authService),
		Poll: handler.NewPollHandler(pollService, voteService, likeService),
		WS:   server.NewWebSocketHandler(hub, authService, l),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
