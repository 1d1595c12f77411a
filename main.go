// main.go
package main

import (
	"log"
	"os"
	"time"

	"gametrack/database"
	"gametrack/handlers"
	"gametrack/handlers/admin"
	"gametrack/middleware"
	"gametrack/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Initialize database (runs migrations + seeds the achievement catalog)
	database.InitDB()

	// Initialize services
	services.InitAchievementService(database.GetDB())
	services.InitRawgService()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:4321"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// API Routes
	api := app.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/verify", handlers.VerifyEmail)

	// User routes
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/me", handlers.GetCurrentUser)
	userGroup.Put("/me", handlers.UpdateProfile)
	userGroup.Get("/me/achievements", handlers.GetUserAchievements)
	userGroup.Get("/:id", handlers.GetUserProfile)

	// Friend routes
	friendGroup := api.Group("/friends")
	friendGroup.Use(middleware.AuthMiddleware)
	friendGroup.Get("/", handlers.GetFriends)
	friendGroup.Get("/requests", handlers.GetFriendRequests)
	friendGroup.Post("/request", handlers.SendFriendRequest)
	friendGroup.Post("/accept", handlers.AcceptFriendRequest)

	// Group routes
	groupGroup := api.Group("/groups")
	groupGroup.Use(middleware.AuthMiddleware)
	groupGroup.Post("/", handlers.CreateGroup)
	groupGroup.Get("/", handlers.GetUserGroups)
	groupGroup.Post("/join", handlers.JoinGroup)
	groupGroup.Get("/:id/members", handlers.GetGroupMembers)
	groupGroup.Post("/:id/leave", handlers.LeaveGroup)

	// Game list routes
	listGroup := api.Group("/lists")
	listGroup.Use(middleware.AuthMiddleware)
	listGroup.Post("/", handlers.CreateList)
	listGroup.Get("/", handlers.GetLists)
	listGroup.Post("/:id/games", handlers.AddGame)
	listGroup.Put("/:id/games/:gameId", handlers.UpdateGame)
	listGroup.Delete("/:id/games/:gameId", handlers.DeleteGame)

	// Public achievement catalog
	api.Get("/achievements", handlers.GetAchievementCatalog)

	// Notification routes
	notifGroup := api.Group("/notifications")
	notifGroup.Use(middleware.AuthMiddleware)
	notifGroup.Get("/", handlers.GetNotifications)
	notifGroup.Put("/:id/read", handlers.MarkNotificationRead)

	// RAWG proxy routes
	rawgGroup := api.Group("/rawg")
	rawgGroup.Use(middleware.AuthMiddleware)
	rawgGroup.Get("/games", handlers.SearchGames)
	rawgGroup.Get("/games/:id", handlers.GetGameDetails)
	rawgGroup.Get("/genres", handlers.GetGenres)

	// Admin catalog management
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthMiddleware, middleware.AdminAuthMiddleware)
	adminGroup.Get("/achievements", admin.GetAchievements)
	adminGroup.Post("/achievements", admin.CreateAchievement)
	adminGroup.Put("/achievements/:id", admin.UpdateAchievement)
	adminGroup.Delete("/achievements/:id", admin.DeleteAchievement)

	// Realtime notification stream
	app.Use("/ws", middleware.AuthMiddleware, handlers.WebSocketUpgrade)
	app.Get("/ws", handlers.NotificationSocket)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("RAWG_API_KEY") == "" {
		log.Println("WARNING: RAWG_API_KEY not set, game search will be unavailable")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
