package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/rotaflow/field-scheduler/internal/audit"
	"github.com/rotaflow/field-scheduler/internal/config"
	"github.com/rotaflow/field-scheduler/internal/geocode"
	"github.com/rotaflow/field-scheduler/internal/handlers"
	"github.com/rotaflow/field-scheduler/internal/infra/cache"
	infraRepo "github.com/rotaflow/field-scheduler/internal/infra/repository"
	"github.com/rotaflow/field-scheduler/internal/logging"
	"github.com/rotaflow/field-scheduler/internal/middleware"
	"github.com/rotaflow/field-scheduler/internal/osrm"
	"github.com/rotaflow/field-scheduler/internal/routelock"
	ucAvailability "github.com/rotaflow/field-scheduler/internal/usecase/availability"
	ucRoute "github.com/rotaflow/field-scheduler/internal/usecase/route"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	availabilityRepo := infraRepo.NewAvailabilityGormRepository(db)
	routeRepo := infraRepo.NewRouteGormRepository(db)

	provider := osrm.NewClient(cfg.OSRMUrl, logging.New("osrm"))
	geocoder := geocode.NewNominatim(cfg.NominatimUrl, logging.New("geocode"))

	distanceCache := cache.NewRedisDistanceCache(rdb, logging.New("distance-cache"))
	undoStore := cache.NewRedisUndoStore(rdb, cfg.UndoTTL, logging.New("undo-store"))

	routeLock := routelock.New()

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, logging.New("audit"))

	// ======================================================
	// 🧠 USE CASES — AVAILABILITY
	// ======================================================
	findSlotsUC := ucAvailability.NewFindSlots(
		availabilityRepo,
		provider,
		distanceCache,
		logging.New("availability"),
		cfg.SearchMaxDays,
		cfg.SearchMaxResultDays,
		cfg.ProviderOutageLimit,
	)

	// ======================================================
	// 🧠 USE CASES — ROUTES
	// ======================================================
	routeLog := logging.New("route")

	createRouteUC := ucRoute.NewCreateRoute(routeRepo, geocoder, auditDispatcher, routeLog)
	addStopsUC := ucRoute.NewAddStops(routeRepo, provider, routeLock, auditDispatcher, routeLog)
	removeStopUC := ucRoute.NewRemoveStop(routeRepo, provider, undoStore, routeLock, auditDispatcher, routeLog)
	undoRemoveUC := ucRoute.NewUndoRemove(routeRepo, provider, undoStore, routeLock, auditDispatcher, routeLog)
	reorderUC := ucRoute.NewReorder(routeRepo, provider, routeLock, auditDispatcher, routeLog)
	optimizeUC := ucRoute.NewOptimize(routeRepo, provider, routeLock, auditDispatcher, routeLog)
	setStatusUC := ucRoute.NewSetStatus(routeRepo, routeLock, auditDispatcher, routeLog)
	changeDateUC := ucRoute.NewChangeDate(routeRepo, routeLock, auditDispatcher, routeLog)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	businessRulesHandler := handlers.NewBusinessRulesHandler(db, geocoder)
	serviceHandler := handlers.NewServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db, geocoder)
	technicianHandler := handlers.NewTechnicianHandler(db, geocoder)
	teamHandler := handlers.NewTeamHandler(db, geocoder)
	accessScheduleHandler := handlers.NewAccessScheduleHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(db, geocoder)
	availabilityHandler := handlers.NewAvailabilityHandler(findSlotsUC)

	routeHandler := handlers.NewRouteHandler(
		db,
		createRouteUC,
		addStopsUC,
		removeStopUC,
		undoRemoveUC,
		reorderUC,
		optimizeUC,
		setStatusUC,
		changeDateUC,
	)
	routeAuditsHandler := handlers.NewRouteAuditsHandler(db)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		secured.Use(middleware.AccessScheduleMiddleware(db))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/business-rules", businessRulesHandler.Get)
			secured.PUT("/me/business-rules", businessRulesHandler.Update)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			secured.GET("/me/clients", clientHandler.List)
			secured.POST("/me/clients", clientHandler.Create)

			secured.GET("/me/technicians", technicianHandler.List)
			secured.POST("/me/technicians", technicianHandler.Create)
			secured.PATCH("/me/technicians/:id", technicianHandler.Update)
			secured.PATCH("/me/technicians/:id/active", technicianHandler.SetActive)

			secured.GET("/me/teams", teamHandler.List)
			secured.POST("/me/teams", teamHandler.Create)
			secured.PUT("/me/teams/:id/members", teamHandler.UpdateMembers)
			secured.PATCH("/me/teams/:id/active", teamHandler.SetActive)

			secured.GET("/me/access-schedules", accessScheduleHandler.List)
			secured.POST("/me/access-schedules", accessScheduleHandler.Create)
			secured.PUT("/me/access-schedules/:id", accessScheduleHandler.Update)
			secured.DELETE("/me/access-schedules/:id", accessScheduleHandler.Delete)
			secured.POST("/me/access-schedules/assign", accessScheduleHandler.AssignToUser)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.GET("/me/appointments", appointmentHandler.List)
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)

			// ------------------------------
			// AVAILABILITY (SSE)
			// ------------------------------
			secured.POST("/scheduling/find-available-dates", availabilityHandler.Search)

			// ------------------------------
			// ROUTES
			// ------------------------------
			secured.GET("/routes", routeHandler.List)
			secured.POST("/routes", routeHandler.Create)
			secured.POST("/routes/start-point", routeHandler.StartPoint)
			secured.GET("/routes/:id", routeHandler.Get)
			secured.POST("/routes/:id/stops", routeHandler.AddStops)
			secured.DELETE("/routes/:id/stops/:stopId", routeHandler.RemoveStop)
			secured.POST("/routes/:id/stops/undo", routeHandler.UndoRemove)
			secured.PATCH("/routes/:id/stops/reorder", routeHandler.Reorder)
			secured.POST("/routes/:id/optimize", routeHandler.Optimize)
			secured.PATCH("/routes/:id/status", routeHandler.SetStatus)
			secured.PATCH("/routes/:id/date", routeHandler.ChangeDate)

			secured.GET("/routes/:id/audits", routeAuditsHandler.List)
		}
	}
}
