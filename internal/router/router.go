package router

import (
	"time"

	"todo-manager/backend/internal/handlers"
	"todo-manager/backend/internal/middleware"
	"todo-manager/backend/internal/monitoring"
	"todo-manager/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	AllowedOrigins []string
	Verifier       middleware.TokenVerifier
	Monitor        *monitoring.Monitor
	// RequestLogging enables gin's access log.
	RequestLogging bool
}

// New assembles the gin engine with CORS, recovery, metrics and every /api
// route guarded by session authentication.
func New(svc *services.Services, opts Options) *gin.Engine {
	engine := gin.New()
	if opts.RequestLogging {
		engine.Use(gin.Logger())
	}
	engine.Use(middleware.RecoveryWithLog())
	engine.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	monitor := opts.Monitor
	if monitor == nil {
		monitor = monitoring.NewMonitor()
	}
	engine.Use(monitor.MetricsMiddleware())

	engine.GET("/health", monitor.HealthHandler())
	engine.GET("/ready", monitor.ReadinessHandler())
	engine.GET("/live", monitor.LivenessHandler())
	engine.GET("/metrics", monitor.MetricsHandler())

	taskHandler := handlers.NewTaskHandler(svc.Tasks)
	labelHandler := handlers.NewLabelHandler(svc.Labels, svc.Tasks)
	commentHandler := handlers.NewCommentHandler(svc.Comments)
	activityHandler := handlers.NewActivityHandler(svc.Activity)
	preferencesHandler := handlers.NewPreferencesHandler(svc.Preferences)
	threadHandler := handlers.NewThreadHandler(svc.Threads)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)

	api := engine.Group("/api")
	api.Use(middleware.AuthMiddleware(opts.Verifier))

	tasks := api.Group("/tasks")
	{
		tasks.GET("", taskHandler.GetTasks)
		tasks.GET("/counts", taskHandler.GetTaskCounts)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/:id", taskHandler.GetTaskByID)
		tasks.PATCH("/:id", taskHandler.UpdateTask)
		tasks.PUT("/:id/order", taskHandler.ReorderTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)

		tasks.GET("/:id/labels", labelHandler.GetTaskLabels)
		tasks.POST("/:id/labels/:label_id", labelHandler.AddLabelToTask)
		tasks.DELETE("/:id/labels/:label_id", labelHandler.RemoveLabelFromTask)

		tasks.GET("/:id/comments", commentHandler.GetTaskComments)
		tasks.POST("/:id/comments", commentHandler.CreateComment)

		tasks.GET("/:id/activity", activityHandler.GetTaskActivity)
	}

	api.DELETE("/comments/:id", commentHandler.DeleteComment)

	api.GET("/activity", activityHandler.GetAllActivity)
	api.GET("/activity/recent", activityHandler.GetRecentActivity)

	labels := api.Group("/labels")
	{
		labels.GET("", labelHandler.GetLabels)
		labels.POST("", labelHandler.CreateLabel)
		labels.GET("/:id", labelHandler.GetLabelByID)
		labels.PATCH("/:id", labelHandler.UpdateLabel)
		labels.DELETE("/:id", labelHandler.DeleteLabel)
		labels.GET("/:id/tasks", labelHandler.GetLabelTasks)
	}

	api.GET("/preferences", preferencesHandler.GetPreferences)
	api.PATCH("/preferences", preferencesHandler.UpdatePreferences)

	threads := api.Group("/ai/threads")
	{
		threads.GET("", threadHandler.GetThreads)
		threads.POST("", threadHandler.CreateThread)
		threads.GET("/:id", threadHandler.GetThread)
		threads.PATCH("/:id", threadHandler.UpdateThread)
		threads.DELETE("/:id", threadHandler.DeleteThread)
		threads.POST("/:id/messages", threadHandler.SendMessage)
	}

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/summary", dashboardHandler.GetSummary)
		dashboard.GET("/recent", dashboardHandler.GetRecent)
		dashboard.GET("/activity", dashboardHandler.GetRecentActivity)
		dashboard.GET("/totals", dashboardHandler.GetTotals)
	}

	return engine
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		// cors.New rejects a config that allows nothing
		config.AllowOrigins = nil
		config.AllowAllOrigins = true
		config.AllowCredentials = false
	}
	return config
}
