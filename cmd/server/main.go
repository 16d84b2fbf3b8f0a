// Package main is the entry point for the signwise API server.
// It loads the engine configuration, connects the database and the tier
// cache, wires the services and starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signwise/internal/config"
	"signwise/internal/config/engine"
	"signwise/internal/handlers"
	"signwise/internal/logging"
	"signwise/internal/middleware"
	"signwise/internal/repositories"
	"signwise/internal/routes"
	"signwise/internal/services/assignment"
	"signwise/internal/services/auth"
	"signwise/internal/services/billing"
	"signwise/internal/services/pilot"
	"signwise/internal/services/vendor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

const version = "1.0.0"

func main() {
	config.LoadEnv()

	appLogger := logging.New(os.Stdout,
		logging.LevelFromString(config.GetEnv("LOG_LEVEL", "info")),
		config.GetEnv("LOG_FORMAT", "json"))

	engineCfg, err := engine.Load(config.EngineConfigPath())
	if err != nil {
		log.Fatalf("Failed to load engine config: %v", err)
	}
	log.Printf("✅ Engine config loaded from %s", config.EngineConfigPath())

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer repositories.Close()

	sqlDB, err := repositories.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("✅ Successfully connected to database with connection pooling")

	if err := repositories.CacheService.HealthCheck(context.Background()); err != nil {
		log.Printf("⚠️ Tier cache unavailable, tiers will be recomputed: %v", err)
	}

	// Repositories
	clientRepo := repositories.NewClientRepository(repositories.DB)
	vendorRepo := repositories.NewVendorRepository(repositories.DB)
	assignmentRepo := repositories.NewAssignmentRepository(repositories.DB)
	operatorRepo := repositories.NewOperatorRepository(repositories.DB)

	// Services
	var invoicer billing.Invoicer = &billing.NoopInvoicer{Logger: appLogger}
	if key := config.GetEnv("STRIPE_SECRET_KEY", ""); key != "" {
		invoicer = billing.NewStripeInvoicer(key, appLogger)
		log.Println("✅ Stripe invoicing enabled")
	} else {
		log.Println("⚠️ STRIPE_SECRET_KEY not set, billable signings will not be invoiced")
	}

	ledger := pilot.NewLedger(clientRepo, engineCfg.Pilot, appLogger)
	vendorService := vendor.NewService(vendorRepo, repositories.CacheService, engineCfg.Tiers, engineCfg.Scoring, appLogger)
	assignmentService := assignment.NewService(assignment.Deps{
		Assignments: assignmentRepo,
		Clients:     clientRepo,
		Vendors:     vendorRepo,
		Ledger:      ledger,
		VendorSvc:   vendorService,
		Invoicer:    invoicer,
		Rates:       engineCfg.Rates,
		Logger:      appLogger,
	})
	authService := auth.NewService(operatorRepo)

	app := fiber.New(fiber.Config{AppName: "signwise " + version})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Use("/api/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	routes.SetupRoutes(app, routes.Handlers{
		Health: handlers.NewHealthHandler(version, map[string]handlers.HealthCheck{
			"database": sqlDB.PingContext,
			"redis":    repositories.CacheService.HealthCheck,
		}),
		Auth:        handlers.NewAuthHandler(authService),
		Assignments: handlers.NewAssignmentHandler(assignmentService),
		Vendors:     handlers.NewVendorHandler(vendorService, vendorRepo),
		Clients:     handlers.NewClientHandler(ledger, clientRepo),
		CacheStats:  handlers.CacheStats(repositories.CacheService.GetStats),
	}, middleware.NewAuthMiddleware(authService))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️ Server shutdown failed: %v", err)
		}
	}()

	if err := app.Listen(":" + config.GetEnv("PORT", "3000")); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
