package main

import (
	"context"
	"log"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/config"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/database"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/repository"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/routes"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/worker"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	db, err := database.Connect(cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 3. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	sessionService := routes.RegisterRoutes(app, cfg, db)

	// 4. Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper := worker.NewExpirySweeper(
		repository.NewSessionRepository(db),
		sessionService,
		cfg.ExpirySweepInterval,
		cfg.ExpiryGracePeriod,
	)
	go sweeper.Run(ctx)

	// 5. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
