package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/planboard-backend/internal/handlers"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/middleware"
)

type RouterConfig struct {
	Log               *logger.Logger
	AuthHandler       *handlers.AuthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	TimetableHandler  *handlers.TimetableHandler
	CalendarHandler   *handlers.CalendarHandler
	CurriculumHandler *handlers.CurriculumHandler
	PlannerHandler    *handlers.PlannerHandler
	LessonPlanHandler *handlers.LessonPlanHandler
	SubPlanHandler    *handlers.SubPlanHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("planboard"))
	router.Use(middleware.RequestLogger(cfg.Log))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Refresh-Token"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Timetable
	protected.GET("/timetable", cfg.TimetableHandler.List)
	protected.PUT("/timetable", cfg.TimetableHandler.Replace)
	// Calendar
	protected.GET("/calendar-events", cfg.CalendarHandler.List)
	protected.POST("/calendar-events", cfg.CalendarHandler.Create)
	protected.PUT("/calendar-events/:id", cfg.CalendarHandler.Update)
	protected.DELETE("/calendar-events/:id", cfg.CalendarHandler.Delete)
	protected.POST("/calendar-events/sync", cfg.CalendarHandler.SyncAll)
	protected.POST("/calendar-events/sync/:feedType", cfg.CalendarHandler.Sync)
	// Subjects
	protected.GET("/subjects", cfg.CurriculumHandler.ListSubjects)
	protected.POST("/subjects", cfg.CurriculumHandler.CreateSubject)
	protected.PUT("/subjects/:id", cfg.CurriculumHandler.UpdateSubject)
	protected.DELETE("/subjects/:id", cfg.CurriculumHandler.DeleteSubject)
	protected.GET("/subjects/:id/milestones", cfg.CurriculumHandler.ListMilestones)
	// Milestones
	protected.POST("/milestones", cfg.CurriculumHandler.CreateMilestone)
	protected.PUT("/milestones/:id", cfg.CurriculumHandler.UpdateMilestone)
	protected.DELETE("/milestones/:id", cfg.CurriculumHandler.DeleteMilestone)
	protected.GET("/milestones/:id/activities", cfg.CurriculumHandler.ListActivities)
	// Activities
	protected.POST("/activities", cfg.CurriculumHandler.CreateActivity)
	protected.PUT("/activities/:id", cfg.CurriculumHandler.UpdateActivity)
	protected.DELETE("/activities/:id", cfg.CurriculumHandler.DeleteActivity)
	protected.POST("/activities/reorder", cfg.PlannerHandler.Reorder)
	// Planner
	protected.GET("/planner/suggestions", cfg.PlannerHandler.Suggestions)
	protected.POST("/planner/assign", cfg.PlannerHandler.Assign)
	protected.DELETE("/planner/assign/:entryId", cfg.PlannerHandler.Unassign)
	protected.POST("/planner/auto-fill", cfg.PlannerHandler.AutoFill)
	// Lesson plans
	protected.PUT("/lesson-plans/:weekStart", cfg.LessonPlanHandler.GetWeek)
	// Sub plans
	protected.POST("/sub-plan/generate", cfg.SubPlanHandler.Generate)

	return router
}
