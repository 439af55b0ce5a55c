package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/planboard-backend/internal/clients/redis"
	"github.com/yungbote/planboard-backend/internal/db"
	"github.com/yungbote/planboard-backend/internal/handlers"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/middleware"
	"github.com/yungbote/planboard-backend/internal/observability"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/server"
	"github.com/yungbote/planboard-backend/internal/services"
	"github.com/yungbote/planboard-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "planboard",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(ctx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	feedTimeout := utils.GetEnvAsInt("FEED_FETCH_TIMEOUT_SECS", 30, log)
	feedRegistryPath := utils.GetEnv("FEED_REGISTRY_PATH", "configs/feeds.yaml", log)
	port := utils.GetEnv("PORT", "8080", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	subjectRepo := repos.NewSubjectRepo(thePG, log)
	milestoneRepo := repos.NewMilestoneRepo(thePG, log)
	activityRepo := repos.NewActivityRepo(thePG, log)
	slotRepo := repos.NewTimetableSlotRepo(thePG, log)
	eventRepo := repos.NewCalendarEventRepo(thePG, log)
	planRepo := repos.NewWeeklyLessonPlanRepo(thePG, log)
	entryRepo := repos.NewScheduledEntryRepo(thePG, log)

	// Redis (optional, feed sync bookkeeping only)
	syncState, err := redis.NewSyncStateStore(log)
	if err != nil {
		log.Warn("Redis sync-state store unavailable, sync timestamps disabled", "error", err)
		syncState = nil
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	subjectService := services.NewSubjectService(thePG, log, subjectRepo)
	milestoneService := services.NewMilestoneService(thePG, log, subjectRepo, milestoneRepo, activityRepo)
	activityService := services.NewActivityService(thePG, log, milestoneRepo, activityRepo, entryRepo)
	timetableService := services.NewTimetableService(thePG, log, slotRepo, subjectRepo)
	overlayService := services.NewOverlayService(thePG, log, eventRepo)
	calendarService := services.NewCalendarEventService(thePG, log, eventRepo)
	feedSyncService := services.NewFeedSyncService(thePG, log, eventRepo, syncState, time.Duration(feedTimeout)*time.Second, feedRegistryPath)
	sequenceService := services.NewSequenceService(thePG, log, milestoneRepo, activityRepo)
	suggestionService := services.NewSuggestionService(thePG, log, milestoneRepo, activityRepo, entryRepo)
	assignmentService := services.NewAssignmentService(thePG, log, overlayService, activityRepo, slotRepo, planRepo, entryRepo)
	autoFillService := services.NewAutoFillService(thePG, log, overlayService, assignmentService, slotRepo, milestoneRepo, activityRepo, entryRepo)
	lessonPlanService := services.NewLessonPlanService(thePG, log, planRepo, entryRepo)
	subPlanService := services.NewSubPlanService(thePG, log, overlayService, slotRepo, subjectRepo, activityRepo, entryRepo, eventRepo)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	timetableHandler := handlers.NewTimetableHandler(timetableService)
	calendarHandler := handlers.NewCalendarHandler(calendarService, feedSyncService)
	curriculumHandler := handlers.NewCurriculumHandler(subjectService, milestoneService, activityService)
	plannerHandler := handlers.NewPlannerHandler(suggestionService, assignmentService, sequenceService, autoFillService)
	lessonPlanHandler := handlers.NewLessonPlanHandler(lessonPlanService)
	subPlanHandler := handlers.NewSubPlanHandler(subPlanService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		Log:               log,
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		TimetableHandler:  timetableHandler,
		CalendarHandler:   calendarHandler,
		CurriculumHandler: curriculumHandler,
		PlannerHandler:    plannerHandler,
		LessonPlanHandler: lessonPlanHandler,
		SubPlanHandler:    subPlanHandler,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
