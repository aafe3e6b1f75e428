package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/roomstack/room-booking-backend/config"
	"github.com/roomstack/room-booking-backend/database"
	"github.com/roomstack/room-booking-backend/internal/auditlog"
	"github.com/roomstack/room-booking-backend/internal/calendarsync"
	"github.com/roomstack/room-booking-backend/internal/event"
	"github.com/roomstack/room-booking-backend/internal/occurrence"
	"github.com/roomstack/room-booking-backend/internal/room"
	"github.com/roomstack/room-booking-backend/routes"
	"github.com/roomstack/room-booking-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Init Redis (build locks for occurrence materialization)
	if err := utils.InitRedis(cfg); err != nil {
		log.Printf("⚠️ Redis init failed, continuing without cross-replica build locks: %v", err)
	}

	// Init Kafka (provider push queue)
	utils.InitializeKafka(cfg)

	// Auto-migrate models
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auditlog.AuditLog{},
		&room.Room{},
		&room.RoomRule{},
		&event.Event{},
		&event.EventOverride{},
		&occurrence.EventOccurrence{},
		&occurrence.OccurrenceWindow{},
		&calendarsync.ProviderEventMapping{},
		&calendarsync.CalendarSyncState{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:4173", "http://127.0.0.1:4173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	modules := routes.Setup(router, cfg)

	// Calendar provider sync: reconciler on a schedule plus the push
	// consumer draining the outbound queue. A missing provider leaves
	// local operations fully functional.
	if cfg.SyncCalendarID != "" {
		provider, err := calendarsync.NewGoogleProvider(context.Background(), cfg.GoogleCredentialsPath)
		if err != nil {
			log.Printf("⚠️ calendar provider unavailable, sync disabled: %v", err)
		} else {
			syncSvc := calendarsync.NewService(modules.SyncRepo, provider,
				cfg.SyncCalendarID, cfg.SyncRoomID, modules.OccurrenceService)
			calendarsync.StartScheduler(syncSvc, cfg.SyncIntervalMinutes)

			pusher := calendarsync.NewPusher(modules.SyncRepo, modules.EventRepo, provider, cfg.SyncCalendarID)
			go pusher.Run(context.Background())
		}
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
