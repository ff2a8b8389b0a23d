package main

import (
	"log"
	"time"

	"github.com/alok-bhadauria/WatchParty/internal/config"
	"github.com/alok-bhadauria/WatchParty/internal/database"
	"github.com/alok-bhadauria/WatchParty/internal/handlers"
	"github.com/alok-bhadauria/WatchParty/internal/middleware"
	"github.com/alok-bhadauria/WatchParty/internal/party"
	"github.com/alok-bhadauria/WatchParty/internal/services"
	"github.com/alok-bhadauria/WatchParty/internal/ws"

	_ "github.com/alok-bhadauria/WatchParty/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           WatchParty API
// @version         1.0
// @description     Synchronized watch-party backend: REST surface plus a websocket sync engine
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	mirror := services.NewMirror(db)
	mirror.Start()
	defer mirror.Stop()

	registry := party.NewRegistry(party.Config{
		GracePeriod:  time.Duration(cfg.GracePeriodSec) * time.Second,
		CodeCooldown: time.Duration(cfg.CodeCooldownSec) * time.Second,
		MaxParties:   cfg.MaxParties,
		MaxMembers:   cfg.MaxPartyMembers,
		ChatTail:     cfg.ChatTailSize,
	}, mirror)

	authService := services.NewAuthService(db, cfg.JWTSecret)
	partyService := services.NewPartyService(db)
	messageService := services.NewMessageService(db)
	feedbackService := services.NewFeedbackService(db)

	gateway := ws.NewGateway(registry, authService)

	authHandler := handlers.NewAuthHandler(authService)
	partyHandler := handlers.NewPartyHandler(registry, partyService, authService)
	messageHandler := handlers.NewMessageHandler(messageService)
	mediaHandler := handlers.NewMediaHandler(registry, partyService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	wsHandler := handlers.NewWSHandler(gateway)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.JWTAuth(authService), authHandler.Me)
		}

		parties := api.Group("/parties")
		{
			parties.POST("", middleware.JWTAuth(authService), partyHandler.CreateParty)
			parties.GET("", partyHandler.ListParties)
			parties.GET("/history", middleware.JWTAuth(authService), partyHandler.ListHistory)
			parties.GET("/:code", partyHandler.GetParty)
			parties.GET("/:code/members", partyHandler.ListMembers)
			parties.POST("/:code/close", middleware.JWTAuth(authService), partyHandler.CloseParty)
			parties.GET("/:code/media", mediaHandler.GetMediaState)
			parties.GET("/:code/messages", messageHandler.ListMessages)
		}

		feedback := api.Group("/feedback")
		{
			feedback.POST("", middleware.OptionalAuth(authService), feedbackHandler.Submit)
			feedback.GET("", middleware.JWTAuth(authService), feedbackHandler.List)
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
