package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"dueboard/backend/internal/auth"
	"dueboard/backend/internal/collab"
	"dueboard/backend/internal/config"
	"dueboard/backend/internal/database"
	"dueboard/backend/internal/deadline"
	"dueboard/backend/internal/handler"
	"dueboard/backend/internal/notify"
	"dueboard/backend/internal/relationship"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Dueboard API
// @version         1.0
// @description     This is the API for the Dueboard deadline tracker.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)
	redisClient := database.ConnectRedis(config.AppConfig.RedisURL)

	// Wire stores and engines
	statusCache := relationship.NewStatusCache(redisClient, 5*time.Minute)
	relationshipStore := relationship.NewGormStore(database.DB, statusCache)
	relationshipEngine := relationship.NewEngine(relationshipStore)

	deadlineStore := deadline.NewGormStore(database.DB)
	deadlineService := deadline.NewService(deadlineStore)

	notificationStore := notify.NewGormStore(database.DB)
	queue := notify.NewQueue(notificationStore, 256)
	queue.Start()
	defer queue.Stop()

	collabEngine := collab.NewEngine(deadlineStore, relationshipEngine, queue)

	userHandler := handler.NewUserHandler(relationshipEngine)
	friendHandler := handler.NewFriendHandler(relationshipEngine, queue)
	deadlineHandler := handler.NewDeadlineHandler(deadlineService, collabEngine)
	notificationHandler := handler.NewNotificationHandler(notificationStore)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes
		apiV1.GET("/users/:id", auth.OptionalAuthMiddleware(), userHandler.GetUserProfile)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
		}

		// Friend routes (protected)
		friendRoutes := apiV1.Group("/friends")
		friendRoutes.Use(auth.AuthMiddleware())
		{
			friendRoutes.GET("", friendHandler.GetFriends)
			friendRoutes.GET("/pending", friendHandler.GetPendingRequests)
			friendRoutes.GET("/sent", friendHandler.GetSentRequests)
			friendRoutes.GET("/blocked", friendHandler.GetBlockedUsers)
			friendRoutes.GET("/search", friendHandler.SearchUsers)
			friendRoutes.GET("/stats", friendHandler.GetStats)

			friendRoutes.POST("/request", friendHandler.SendRequest)
			friendRoutes.PUT("/accept", friendHandler.AcceptRequest)
			friendRoutes.PUT("/decline", friendHandler.DeclineRequest)
			friendRoutes.POST("/block", friendHandler.BlockUser)
			friendRoutes.POST("/unblock", friendHandler.UnblockUser)
			friendRoutes.DELETE("/:id", friendHandler.RemoveFriend)
		}

		// Deadline routes (protected)
		deadlineRoutes := apiV1.Group("/deadlines")
		deadlineRoutes.Use(auth.AuthMiddleware())
		{
			deadlineRoutes.POST("", deadlineHandler.CreateDeadline)
			deadlineRoutes.GET("", deadlineHandler.GetDeadlines)
			deadlineRoutes.GET("/upcoming", deadlineHandler.GetUpcomingDeadlines) // Must be before /:id
			deadlineRoutes.GET("/overdue", deadlineHandler.GetOverdueDeadlines)
			deadlineRoutes.GET("/stats", deadlineHandler.GetDeadlineStats)
			deadlineRoutes.GET("/:id", deadlineHandler.GetDeadlineByID)
			deadlineRoutes.PUT("/:id", deadlineHandler.UpdateDeadline)
			deadlineRoutes.PATCH("/:id/status", deadlineHandler.UpdateDeadlineStatus)
			deadlineRoutes.DELETE("/:id", deadlineHandler.DeleteDeadline)

			// Collaboration routes
			deadlineRoutes.POST("/:id/collaborators", deadlineHandler.AddCollaborators)
			deadlineRoutes.DELETE("/:id/collaborators/:userID", deadlineHandler.RemoveCollaborator)
		}

		// Notification routes (protected)
		notificationRoutes := apiV1.Group("/notifications")
		notificationRoutes.Use(auth.AuthMiddleware())
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.GET("/unread-count", notificationHandler.GetUnreadCount)
			notificationRoutes.PUT("/:id/read", notificationHandler.MarkAsRead)
			notificationRoutes.PUT("/mark-all-read", notificationHandler.MarkAllAsRead)
			notificationRoutes.DELETE("/:id", notificationHandler.DeleteNotification)
		}
	}

	addr := ":" + config.AppConfig.Port
	fmt.Println("Server is running on " + addr)
	fmt.Println("Swagger UI is available at http://localhost" + addr + "/swagger/index.html")
	log.Fatal(router.Run(addr))
}
