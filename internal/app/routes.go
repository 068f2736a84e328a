package app

import (
	"time"

	"nekocare/internal/auth"
	"nekocare/internal/config"
	"nekocare/internal/handlers"
	"nekocare/internal/realtime"
	"nekocare/internal/service"
	"nekocare/internal/storage"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log *zap.Logger, be backend, hub *realtime.Hub) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	deps := service.Deps{
		Cache:     be.cache,
		Publisher: hub,
		Log:       log,
		Location:  cfg.Care.Location(),
	}
	store := storage.NewStore(cfg.Storage.Root)
	signer := storage.NewURLSigner(cfg.Storage.SigningKey, cfg.Storage.PublicBaseURL, cfg.Storage.URLTTL.Duration())

	userSvc := service.NewUserService(be.users, be.households, cfg.Care.DayStartHour)
	registerAuthRoutes(api, handlers.NewAuthHandler(be.sessions, userSvc, log))
	registerMediaRoutes(api, handlers.NewMediaHandler(store, signer, log))

	protected := api.Group("", auth.RequireSession(be.sessions))

	careSvc := service.NewCareService(be.care, be.themes, cfg.Care.Thresholds(), cfg.Care.PointsPerLog, deps)
	registerCareRoutes(protected, handlers.NewCareHandler(careSvc, log))
	registerInventoryRoutes(protected, handlers.NewInventoryHandler(careSvc, cfg.Care.Location(), log))

	incidentSvc := service.NewIncidentService(be.incidents, be.care, store, signer, deps)
	registerIncidentRoutes(protected, handlers.NewIncidentHandler(incidentSvc, log))

	householdSvc := service.NewHouseholdService(be.households, be.care, deps)
	registerHouseholdRoutes(protected, handlers.NewHouseholdHandler(householdSvc, log))

	themeSvc := service.NewThemeService(be.themes, be.care, deps)
	registerThemeRoutes(protected, handlers.NewThemeHandler(themeSvc, log))

	registerRealtimeRoutes(protected, handlers.NewRealtimeHandler(hub, log))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "nekocare API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"demo":    cfg.App.Demo,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env, "time": time.Now().In(cfg.Care.Location())})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)
}

func registerMediaRoutes(api *gin.RouterGroup, h *handlers.MediaHandler) {
	api.GET("/media/*path", h.Get)
}

func registerCareRoutes(api *gin.RouterGroup, h *handlers.CareHandler) {
	api.GET("/care/today", h.Today)
	api.POST("/care/feed", h.Feed)
	api.POST("/care/logs", h.AddLog)
	api.DELETE("/care/logs/:id", h.UndoLog)
	api.GET("/care/task-defs", h.ListTaskDefs)
	api.POST("/care/task-defs", h.CreateTaskDef)
	api.PATCH("/care/task-defs/:id", h.UpdateTaskDef)
	api.DELETE("/care/task-defs/:id", h.DeleteTaskDef)
	api.GET("/care/notice-defs", h.ListNoticeDefs)
	api.POST("/care/notice-defs", h.CreateNoticeDef)
	api.DELETE("/care/notice-defs/:id", h.DeleteNoticeDef)
	api.POST("/care/observations", h.AddObservation)
	api.POST("/care/observations/:id/ack", h.AcknowledgeObservation)
}

func registerInventoryRoutes(api *gin.RouterGroup, h *handlers.InventoryHandler) {
	api.GET("/inventory", h.List)
	api.POST("/inventory", h.Create)
	api.PATCH("/inventory/:id", h.Update)
}

func registerIncidentRoutes(api *gin.RouterGroup, h *handlers.IncidentHandler) {
	api.GET("/incidents", h.List)
	api.POST("/incidents", h.Create)
	api.POST("/incidents/photos", h.UploadPhoto)
	api.GET("/incidents/:id", h.Get)
	api.POST("/incidents/:id/updates", h.AddUpdate)
}

func registerHouseholdRoutes(api *gin.RouterGroup, h *handlers.HouseholdHandler) {
	api.GET("/cats", h.ListCats)
	api.POST("/cats", h.AddCat)
	api.GET("/settings", h.Settings)
	api.PUT("/settings/day-start", h.SetDayStart)
}

func registerThemeRoutes(api *gin.RouterGroup, h *handlers.ThemeHandler) {
	api.GET("/themes", h.Shop)
	api.PUT("/settings/layout", h.SetLayout)
	api.POST("/themes/:id/purchase", h.Purchase)
}

func registerRealtimeRoutes(api *gin.RouterGroup, h *handlers.RealtimeHandler) {
	api.GET("/realtime", h.Stream)
}
