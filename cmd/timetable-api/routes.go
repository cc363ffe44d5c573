package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, logr *zap.Logger, deps *dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.Tenant.Header))
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(deps.metrics))

	health := handler.NewHealthHandler(deps.registry, version)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)

	if cfg.Metrics.Enabled {
		r.GET("/metrics", handler.NewMetricsHandler(deps.metrics).Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Tenant(cfg.Tenant.Header))
	if cfg.Auth.Enabled {
		api.Use(middleware.JWT(deps.auth))
		api.GET("/auth/me", handler.NewAuthHandler().Me)
	}

	years := handler.NewAcademicYearHandler(deps.calendar)
	yearRoutes := api.Group("/academic-years")
	yearRoutes.GET("", years.List)
	yearRoutes.POST("", years.Create)
	yearRoutes.GET("/active", years.Active)
	yearRoutes.GET("/:id", years.Get)
	yearRoutes.POST("/:id/activate", years.Activate)
	yearRoutes.POST("/:id/archive", years.Archive)
	yearRoutes.DELETE("/:id", years.Delete)

	classes := handler.NewClassHandler(deps.classes)
	api.GET("/classes", classes.List)
	api.POST("/classes", classes.Create)
	api.GET("/classes/:id", classes.Get)

	refs := handler.NewReferenceHandler(deps.teachers, deps.subjects, deps.rooms)
	api.GET("/teachers", refs.ListTeachers)
	api.POST("/teachers", refs.CreateTeacher)
	api.GET("/subjects", refs.ListSubjects)
	api.POST("/subjects", refs.CreateSubject)
	api.GET("/rooms", refs.ListRooms)
	api.POST("/rooms", refs.CreateRoom)

	bookings := handler.NewBookingHandler(deps.bookings, deps.exports, cfg.Booking.DefaultPageSize)
	bookingRoutes := api.Group("/bookings")
	bookingRoutes.GET("", bookings.List)
	bookingRoutes.POST("", bookings.Create)
	bookingRoutes.GET("/export", bookings.Export)
	bookingRoutes.GET("/:id", bookings.Get)
	bookingRoutes.PUT("/:id", bookings.Update)
	bookingRoutes.PATCH("/:id/status", bookings.SetStatus)
	bookingRoutes.DELETE("/:id", bookings.Delete)
	bookingRoutes.DELETE("/:id/purge", middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin), bookings.Purge)
	bookingRoutes.POST("/:id/exceptions", bookings.AddException)

	return r
}
