package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cppla/wellcheck/config"
	"github.com/cppla/wellcheck/controllers"
	"github.com/cppla/wellcheck/middleware"
	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(core *services.Core) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access logs go to their own rolling file
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.RequestMetrics())

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authController := controllers.NewAuthController(core.Profiles, cfg.SessionTTL)
	profileController := controllers.NewProfileController(core.Profiles)
	learningController := controllers.NewLearningController(core.Profiles)
	checkInController := controllers.NewCheckInController(core.CheckIns, core.History)
	queueController := controllers.NewQueueController(core.Queue)
	insightController := controllers.NewInsightController(core.Insights)
	predictionController := controllers.NewPredictionController()
	statsController := controllers.NewStatsController(core.History)

	publicLimit := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	userLimit := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	api := r.Group("/api/v1")
	api.GET("/stats", statsController.GetStats)
	api.GET("/learning", learningController.List)
	api.POST("/predictions", publicLimit.Middleware(), predictionController.Predict)

	authGroup := api.Group("/auth")
	authGroup.Use(publicLimit.Middleware())
	authGroup.POST("/onboard", authController.Onboard)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), userLimit.Middleware())

	protected.GET("/profile", profileController.Get)
	protected.PATCH("/profile", profileController.UpdateDetails)
	protected.DELETE("/profile", profileController.Delete)
	protected.PUT("/profile/baseline", profileController.SetBaseline)
	protected.PATCH("/profile/preferences", profileController.UpdatePreferences)
	protected.POST("/profile/tips", profileController.SaveTip)
	protected.DELETE("/profile/tips/:id", profileController.RemoveTip)
	protected.POST("/learning/:id/complete", learningController.Complete)

	protected.POST("/checkins", checkInController.Submit)
	protected.GET("/checkins", checkInController.List)
	protected.GET("/checkins/status", checkInController.Status)
	protected.GET("/checkins/export", checkInController.Export)
	protected.POST("/checkins/import", checkInController.Import)

	protected.GET("/queue", queueController.List)
	protected.POST("/queue/drain", queueController.Drain)

	protected.GET("/insights", insightController.Correlations)
	protected.GET("/insights/weekly", insightController.Weekly)
	protected.GET("/insights/monthly", insightController.Monthly)
	protected.GET("/insights/forecast", insightController.Forecast)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
