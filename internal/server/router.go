package server

import (
	"github.com/farsightlab/arv-backend/internal/handlers"
	"github.com/farsightlab/arv-backend/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	SessionHandler       *handlers.SessionHandler
	RequestLogMiddleware *middleware.RequestLogMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	if cfg.RequestLogMiddleware != nil {
		router.Use(cfg.RequestLogMiddleware.Handle())
	}

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/sessions", cfg.SessionHandler.Create)
		api.GET("/sessions", cfg.SessionHandler.List)
		api.GET("/sessions/:id", cfg.SessionHandler.Get)
		api.POST("/sessions/:id/prediction", cfg.SessionHandler.Predict)
		api.POST("/sessions/:id/prediction/preview", cfg.SessionHandler.PreviewPrediction)
		api.POST("/sessions/:id/reveal", cfg.SessionHandler.Reveal)
		api.DELETE("/sessions/:id", cfg.SessionHandler.Delete)
	}

	return router
}
