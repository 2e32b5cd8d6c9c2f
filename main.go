package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/InkAurora/educblue-sub001/config"
	controllers "github.com/InkAurora/educblue-sub001/controllers/course"
	"github.com/InkAurora/educblue-sub001/middleware"
	courseRoutes "github.com/InkAurora/educblue-sub001/routers/courseRoutes"
	"github.com/InkAurora/educblue-sub001/upstream"
	"github.com/InkAurora/educblue-sub001/viewer"
)

func main() {
	config.LoadConfig()

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	client := upstream.New(config.AppConfig.UpstreamBaseURL, config.AppConfig.UpstreamTimeout, zlog)
	registry := viewer.NewRegistry(client, config.AppConfig.SessionTTL, zlog)
	controllers.Init(registry, zlog)

	// Sweep idle viewing sessions so torn-down viewers do not pile up.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(config.AppConfig.SessionSweep, registry.Sweep); err != nil {
		log.Fatalf("Failed to schedule session sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.AppConfig.AllowedOrigin,
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Use(middleware.RequestID)

	courseRoutes.SetupCourseRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
