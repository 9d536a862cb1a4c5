package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campusdesk/timetable-api/api/swagger"
	"github.com/campusdesk/timetable-api/internal/handler"
	internalmiddleware "github.com/campusdesk/timetable-api/internal/middleware"
	"github.com/campusdesk/timetable-api/internal/models"
	"github.com/campusdesk/timetable-api/internal/repository"
	"github.com/campusdesk/timetable-api/internal/service"
	"github.com/campusdesk/timetable-api/pkg/cache"
	"github.com/campusdesk/timetable-api/pkg/config"
	"github.com/campusdesk/timetable-api/pkg/database"
	"github.com/campusdesk/timetable-api/pkg/jobs"
	"github.com/campusdesk/timetable-api/pkg/logger"
	corsmiddleware "github.com/campusdesk/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusdesk/timetable-api/pkg/middleware/requestid"
)

// @title Campusdesk Timetable API
// @version 1.0.0
// @description Academic timetable service with conflict checking and availability search
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	divisionRepo := repository.NewDivisionRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	conflictSvc := service.NewConflictService(timetableRepo, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, conflictSvc, studentRepo, validate, logr)
	availabilitySvc := service.NewAvailabilityService(timetableRepo, facultyRepo, roomRepo, timeSlotRepo, subjectRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, roomRepo, cacheRepo, logr, cfg.Dashboard.CacheTTL)
	departmentSvc := service.NewDepartmentService(departmentRepo, validate, logr)
	divisionSvc := service.NewDivisionService(divisionRepo, departmentRepo, validate, logr)
	facultySvc := service.NewFacultyService(facultyRepo, departmentRepo, userRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, divisionRepo, userRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	timeSlotSvc := service.NewTimeSlotService(timeSlotRepo, validate, logr)

	invalidationQueue := jobs.NewQueue("cache-invalidation", func(ctx context.Context, _ jobs.Task) error {
		return cacheRepo.DeleteByPattern(ctx, "dashboard:*")
	}, jobs.QueueConfig{Workers: 1, Logger: logr})
	invalidationQueue.Start(context.Background())
	defer invalidationQueue.Stop()

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, metricsSvc, invalidationQueue)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	departmentHandler := handler.NewDepartmentHandler(departmentSvc, divisionSvc)
	rosterHandler := handler.NewRosterHandler(facultySvc, studentSvc)
	catalogHandler := handler.NewCatalogHandler(roomSvc, subjectSvc, timeSlotSvc)
	userHandler := handler.NewUserHandler(userSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db.Ping)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	secured.GET("/auth/me", authHandler.Me)

	adminOnly := internalmiddleware.RequireRoles(models.RoleAdmin)
	staff := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleFaculty)
	anyRole := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleFaculty, models.RoleStudent)

	secured.GET("/timetables", staff, timetableHandler.List)
	secured.POST("/timetables/batch", adminOnly, timetableHandler.Batch)
	secured.POST("/timetables/check", staff, timetableHandler.Check)
	secured.DELETE("/timetables/:id", adminOnly, timetableHandler.Deactivate)
	secured.GET("/timetables/export", staff, timetableHandler.Export)
	secured.GET("/timetable/available-slots", staff, availabilityHandler.AvailableSlots)
	secured.GET("/timetable/my-schedule", anyRole, timetableHandler.MySchedule)

	if cfg.Dashboard.Enabled {
		secured.GET("/dashboard/stats", staff, dashboardHandler.Stats)
		secured.GET("/dashboard/todays-schedule", anyRole, dashboardHandler.TodaysSchedule)
		secured.GET("/dashboard/room-occupancy", staff, dashboardHandler.RoomOccupancy)
		secured.GET("/dashboard/department-overview", staff, dashboardHandler.DepartmentOverview)
	}

	secured.GET("/users", adminOnly, userHandler.List)
	secured.POST("/users", adminOnly, userHandler.Create)
	secured.GET("/departments", anyRole, departmentHandler.List)
	secured.POST("/departments", adminOnly, departmentHandler.Create)
	secured.GET("/divisions", anyRole, departmentHandler.ListDivisions)
	secured.POST("/divisions", adminOnly, departmentHandler.CreateDivision)
	secured.GET("/faculty", staff, rosterHandler.ListFaculty)
	secured.POST("/faculty", adminOnly, rosterHandler.CreateFaculty)
	secured.GET("/students", staff, rosterHandler.ListStudents)
	secured.POST("/students", adminOnly, rosterHandler.CreateStudent)
	secured.GET("/rooms", staff, catalogHandler.ListRooms)
	secured.POST("/rooms", adminOnly, catalogHandler.CreateRoom)
	secured.GET("/subjects", anyRole, catalogHandler.ListSubjects)
	secured.POST("/subjects", adminOnly, catalogHandler.CreateSubject)
	secured.GET("/time-slots", anyRole, catalogHandler.ListTimeSlots)
	secured.POST("/time-slots", adminOnly, catalogHandler.CreateTimeSlot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
