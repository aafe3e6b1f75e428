package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/roomstack/room-booking-backend/config"
	"github.com/roomstack/room-booking-backend/database"
	"github.com/roomstack/room-booking-backend/internal/auditlog"
	"github.com/roomstack/room-booking-backend/internal/booking"
	"github.com/roomstack/room-booking-backend/internal/calendarsync"
	"github.com/roomstack/room-booking-backend/internal/event"
	"github.com/roomstack/room-booking-backend/internal/occurrence"
	"github.com/roomstack/room-booking-backend/internal/reports"
	"github.com/roomstack/room-booking-backend/internal/room"
	"github.com/roomstack/room-booking-backend/middleware"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Modules bundles the wired services main.go needs after route setup
// (the sync scheduler and push consumer run outside the HTTP surface).
type Modules struct {
	OccurrenceService *occurrence.Service
	SyncRepo          *calendarsync.Repository
	EventRepo         *event.Repository
}

func Setup(r *gin.Engine, cfg *config.Config) *Modules {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())
	api.Use(middleware.AuditMiddleware())

	// ========== Initialize Audit Log Module ==========
	auditRepo := auditlog.NewRepository(database.DB)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Core module wiring ==========
	roomRepo := room.NewRepository(database.DB)
	roomSvc := room.NewService(roomRepo, auditSvc)
	roomHandler := room.NewHandler(roomSvc)

	eventRepo := event.NewRepository(database.DB)
	eventSvc := event.NewService(eventRepo, auditSvc)
	eventHandler := event.NewHandler(eventSvc)

	occRepo := occurrence.NewRepository(database.DB)
	occSvc := occurrence.NewService(occRepo, eventRepo)

	// mutation hooks: cache invalidation + provider push queue
	eventSvc.Invalidator = occSvc
	eventSvc.SyncQueue = calendarsync.NewQueue()

	bookingSvc := booking.NewService(roomRepo, eventSvc, occSvc, auditSvc, cfg.MaterializeAheadDays)
	bookingHandler := booking.NewHandler(bookingSvc)

	reportRepo := reports.NewReportRepository(database.DB)
	reportSvc := reports.NewReportService(reportRepo, reports.NewReportExporter(), auditSvc)
	reportHandler := reports.NewHandler(reportSvc)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg))

	// ========== Audit Logs (Admin Only) ==========
	auditRoutes := protected.Group("/auditlogs")
	auditRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin))
	{
		auditRoutes.GET("/", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}

	// ========== Rooms ==========
	roomRoutes := protected.Group("/rooms")
	{
		roomRoutes.GET("/", roomHandler.ListRooms)
		roomRoutes.GET("/:id", roomHandler.GetRoom)
		roomRoutes.GET("/:id/occurrences", bookingHandler.ListOccurrences)

		// mutations restricted to admin/facilities
		writeRoutes := roomRoutes.Group("/")
		writeRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin, middleware.RoleFacilities))
		{
			writeRoutes.POST("/", roomHandler.CreateRoom)
			writeRoutes.PUT("/:id", roomHandler.UpdateRoom)
			writeRoutes.PUT("/:id/rules", roomHandler.ReplaceRules)
		}
	}

	// ========== Events ==========
	eventRoutes := protected.Group("/events")
	{
		eventRoutes.GET("/:id", eventHandler.GetEvent)

		writeRoutes := eventRoutes.Group("/")
		writeRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin, middleware.RoleFacilities))
		{
			writeRoutes.POST("/", eventHandler.CreateEvent)
			writeRoutes.PUT("/:id", eventHandler.UpdateEvent)
			writeRoutes.DELETE("/:id", eventHandler.CancelEvent)
			writeRoutes.POST("/:id/overrides", eventHandler.ApplyOverride)
		}
	}

	// ========== Bookings ==========
	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("/check", bookingHandler.CheckAvailability)

		writeRoutes := bookingRoutes.Group("/")
		writeRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin, middleware.RoleFacilities))
		{
			writeRoutes.POST("/", bookingHandler.CreateBooking)
			writeRoutes.POST("/cancel", bookingHandler.CancelOccurrence)
		}
	}

	// ========== Reports (Admin + Facilities) ==========
	reportRoutes := protected.Group("/reports")
	reportRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin, middleware.RoleFacilities))
	{
		reportRoutes.GET("/bookings", reportHandler.BookingsReport)
		reportRoutes.GET("/utilization", reportHandler.UtilizationReport)
	}

	return &Modules{
		OccurrenceService: occSvc,
		SyncRepo:          calendarsync.NewRepository(database.DB),
		EventRepo:         eventRepo,
	}
}
