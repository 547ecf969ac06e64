// Package main runs the alumni tracer-study HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unitracer/backend/config"
	"github.com/unitracer/backend/internal/alumni"
	"github.com/unitracer/backend/internal/auth"
	"github.com/unitracer/backend/internal/dashboard"
	"github.com/unitracer/backend/internal/export"
	"github.com/unitracer/backend/internal/faculties"
	"github.com/unitracer/backend/internal/middleware"
	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/internal/programs"
	"github.com/unitracer/backend/internal/qtypes"
	"github.com/unitracer/backend/internal/questionnaires"
	"github.com/unitracer/backend/internal/questions"
	"github.com/unitracer/backend/internal/responses"
	"github.com/unitracer/backend/internal/years"
	"github.com/unitracer/backend/pkg/clock"
	"github.com/unitracer/backend/pkg/database"
	"github.com/unitracer/backend/pkg/redis"
	"github.com/unitracer/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	clk := clock.Real()
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	revoker := auth.NewRevoker(rdb.Client)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, revoker, logger)

	// Reference data
	facultyRepo := faculties.NewRepository(pool)
	facultyHandler := faculties.NewHandler(facultyRepo)
	programRepo := programs.NewRepository(pool)
	programHandler := programs.NewHandler(programRepo)
	yearRepo := years.NewRepository(pool)
	yearHandler := years.NewHandler(yearRepo)
	typeRepo := qtypes.NewRepository(pool)
	typeHandler := qtypes.NewHandler(typeRepo)

	// Alumni registry
	alumniRepo := alumni.NewRepository(pool)
	alumniHandler := alumni.NewHandler(alumniRepo, programRepo, yearRepo, cfg.Import.MaxFileSizeMB, logger)

	// Questionnaires and questions
	questionnaireRepo := questionnaires.NewRepository(pool)
	questionnaireHandler := questionnaires.NewHandler(questionnaireRepo, typeRepo, yearRepo, clk, logger)
	questionRepo := questions.NewRepository(pool)
	questionHandler := questions.NewHandler(questionRepo, questionnaireRepo, logger)

	// Responses
	responseRepo := responses.NewRepository(pool)
	responseHandler := responses.NewHandler(responseRepo, questionnaireRepo, questionRepo, authRepo, clk, logger)
	publicHandler := responses.NewPublicHandler(responseRepo, questionnaireRepo, questionRepo, clk, logger)

	// Reporting and exports
	dashboardRepo := dashboard.NewRepository(pool)
	dashboardHandler := dashboard.NewHandler(dashboardRepo, questionnaireRepo, questionRepo, responseRepo, clk, logger)
	exportHandler := export.NewHandler(questionnaireRepo, questionRepo, responseRepo, clk, logger)

	submitLimiter := middleware.RateLimit(rdb.Client, cfg.RateLimit.SubmitPerMinute, time.Minute, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	router.POST("/login", authHandler.Login)

	// Public questionnaires (no auth)
	public := router.Group("/public")
	{
		public.GET("/questionnaires", publicHandler.List)
		public.GET("/questionnaires/:id", publicHandler.Show)
		public.POST("/questionnaires/:id/submit", submitLimiter, publicHandler.Submit)
	}

	// Authenticated API
	api := router.Group("")
	api.Use(middleware.JWT(jwtService, revoker))
	{
		api.POST("/logout", authHandler.Logout)
		api.GET("/me", authHandler.Me)
		api.GET("/programs", programHandler.List)

		// Alumni self-service
		my := api.Group("", middleware.RequireRole(models.RoleAlumni))
		{
			my.GET("/questionnaires/counts", responseHandler.Counts)
			my.GET("/questionnaires", responseHandler.List)
			my.GET("/questionnaires/:id", responseHandler.Show)
			my.POST("/questionnaires/:id/submit", submitLimiter, responseHandler.Submit)
		}

		// Administration
		admin := api.Group("/admin", middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/dashboard", dashboardHandler.Summary)

			admin.GET("/faculties", facultyHandler.List)
			admin.GET("/faculties/:id", facultyHandler.Get)
			admin.POST("/faculties", facultyHandler.Create)
			admin.PUT("/faculties/:id", facultyHandler.Update)
			admin.DELETE("/faculties/:id", facultyHandler.Delete)

			admin.GET("/programs", programHandler.List)
			admin.GET("/programs/:id", programHandler.Get)
			admin.POST("/programs", programHandler.Create)
			admin.PUT("/programs/:id", programHandler.Update)
			admin.DELETE("/programs/:id", programHandler.Delete)

			admin.GET("/years", yearHandler.List)
			admin.GET("/years/:id", yearHandler.Get)
			admin.POST("/years", yearHandler.Create)
			admin.PUT("/years/:id", yearHandler.Update)
			admin.DELETE("/years/:id", yearHandler.Delete)

			admin.GET("/questionnaire-types", typeHandler.List)
			admin.POST("/questionnaire-types", typeHandler.Create)
			admin.PUT("/questionnaire-types/:id", typeHandler.Update)
			admin.DELETE("/questionnaire-types/:id", typeHandler.Delete)

			admin.GET("/alumni", alumniHandler.List)
			admin.GET("/alumni/template", alumniHandler.Template)
			admin.GET("/alumni/:id", alumniHandler.Get)
			admin.POST("/alumni", alumniHandler.Create)
			admin.POST("/alumni/import", alumniHandler.Import)
			admin.PUT("/alumni/:id", alumniHandler.Update)
			admin.DELETE("/alumni/:id", alumniHandler.Delete)

			admin.GET("/questionnaires", questionnaireHandler.List)
			admin.POST("/questionnaires", questionnaireHandler.Create)
			admin.GET("/questionnaires/:id", questionnaireHandler.Get)
			admin.PUT("/questionnaires/:id", questionnaireHandler.Update)
			admin.DELETE("/questionnaires/:id", questionnaireHandler.Delete)
			admin.GET("/questionnaires/:id/results", dashboardHandler.Results)
			admin.GET("/questionnaires/:id/export/excel", exportHandler.Excel)
			admin.GET("/questionnaires/:id/export/pdf", exportHandler.PDF)
			admin.GET("/export/excel", exportHandler.Excel)
			admin.GET("/export/pdf", exportHandler.PDF)

			admin.POST("/questionnaires/:id/questions", questionHandler.Create)
			admin.POST("/questionnaires/:id/questions/reorder", questionHandler.Reorder)
			admin.PUT("/questions/:id", questionHandler.Update)
			admin.DELETE("/questions/:id", questionHandler.Delete)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
