package main

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/easyghar/easyghar-backend/internal/config"
	"github.com/easyghar/easyghar-backend/internal/db"
	"github.com/easyghar/easyghar-backend/internal/handlers"
	"github.com/easyghar/easyghar-backend/internal/middleware"
	"github.com/easyghar/easyghar-backend/internal/models"
	"github.com/easyghar/easyghar-backend/internal/services/cloudinary"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	if os.Getenv("APP_ENV") == "local" {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.City{},
		&models.Service{},
		&models.Worker{},
		&models.WorkerDocument{},
		&models.WorkerService{},
		&models.WorkerReviewLog{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	if !cfg.Cloudinary.Configured() {
		logger.Warn("cloudinary credentials missing, media uploads will fail")
	}
	media := cloudinary.New(cfg.Cloudinary)

	app := fiber.New(fiber.Config{
		// three 5MB images plus form fields
		BodyLimit: 20 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error."
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
				message = fe.Message
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": message,
			})
		},
	})

	app.Use(middleware.RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	authH := handlers.NewAuthHandler(gdb, media, logger, cfg.JWTSecret, cfg.JWTExpiresMin)
	workerH := handlers.NewWorkerHandler(gdb, media, logger)
	adminH := handlers.NewAdminHandler(gdb, logger, cfg.StrictVerificationFlow)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	api := app.Group("/api")

	// public
	api.Get("/auth/cities", authH.Cities)
	api.Get("/auth/services", authH.Services)
	api.Post("/auth/register/customer", authH.RegisterCustomer)
	api.Post("/auth/register/worker", authH.RegisterWorker)
	api.Post("/auth/login", authH.Login)

	// worker self-service (bearer JWT, role worker)
	worker := api.Group("/worker",
		middleware.JWTBearer(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
		middleware.RequireRoles("worker"),
	)
	worker.Get("/profile", workerH.Profile)
	worker.Patch("/profile", workerH.UpdateProfile)
	worker.Get("/services-list", workerH.ServicesList)
	worker.Put("/services", workerH.ReplaceServices)

	// admin review
	admin := api.Group("/admin", middleware.RequireAdmin(cfg.JWTSecret, cfg.AdminAPIKey))
	admin.Get("/workers", adminH.ListWorkers)
	admin.Patch("/workers/:id/approve", adminH.Approve)
	admin.Patch("/workers/:id/reject", adminH.Reject)

	logger.Info("listening", zap.String("port", cfg.AppPort))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
