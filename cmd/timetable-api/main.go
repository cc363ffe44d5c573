package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// @title Timetable API
// @version 1.0.0
// @description Multi-tenant school timetable booking with class, teacher and room conflict detection.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reg, err := database.Open(startCtx, cfg, logr)
	if err != nil {
		return fmt.Errorf("open database registry: %w", err)
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logr.Error("failed to close database registry", zap.Error(err))
		}
	}()

	deps := buildDependencies(cfg, reg, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logr, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("version", version))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logr.Info("shutdown started", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logr.Error("could not stop server gracefully", zap.Error(err))
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not force stop server: %w", err)
			}
		}
		logr.Info("server stopped")
	}
	return nil
}

type dependencies struct {
	registry *database.Registry
	metrics  *service.MetricsService
	auth     *service.AuthService
	calendar *service.CalendarService
	classes  *service.ClassService
	teachers *service.TeacherService
	subjects *service.SubjectService
	rooms    *service.RoomService
	bookings *service.BookingService
	exports  *service.ExportService
}

func buildDependencies(cfg *config.Config, reg *database.Registry, logr *zap.Logger) *dependencies {
	validate := validator.New()
	metrics := service.NewMetricsService()

	yearRepo := repository.NewAcademicYearRepository(reg.DB)
	refRepo := repository.NewReferenceRepository(reg.DB)
	classRepo := repository.NewClassRepository(reg.DB)
	bookingRepo := repository.NewBookingRepository(reg.DB)

	var cache *service.CacheService
	if reg.Redis != nil {
		cacheRepo := repository.NewCacheRepository(reg.Redis, logr)
		cache = service.NewCacheService(cacheRepo, metrics, cfg.Registry.CacheTTL, logr, true)
	}
	registry := service.NewReferenceRegistry(refRepo, classRepo, cache, cfg.Registry.CacheTTL, logr)
	detector := service.NewConflictDetector(bookingRepo, cfg.Booking.RoomConflicts)

	return &dependencies{
		registry: reg,
		metrics:  metrics,
		auth:     service.NewAuthService(cfg.Auth.Secret),
		calendar: service.NewCalendarService(yearRepo, validate, logr),
		classes:  service.NewClassService(classRepo, yearRepo, registry, validate, logr),
		teachers: service.NewTeacherService(repository.NewTeacherRepository(reg.DB), validate, logr),
		subjects: service.NewSubjectService(repository.NewSubjectRepository(reg.DB), validate, logr),
		rooms:    service.NewRoomService(repository.NewRoomRepository(reg.DB), validate, logr),
		bookings: service.NewBookingService(bookingRepo, detector, yearRepo, registry, metrics, validate, logr),
		exports:  service.NewExportService(bookingRepo, registry, logr),
	}
}
