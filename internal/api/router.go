package api

import (
	"net/http"

	"github.com/Ayash-Bera/miniplex/internal/api/handlers"
	"github.com/Ayash-Bera/miniplex/internal/metrics"
	"github.com/Ayash-Bera/miniplex/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	CORSOrigins []string
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics
}

// NewRouter wires the HTTP API. CORS wraps the whole engine so preflight
// requests never reach the rate limiter.
func NewRouter(cfg RouterConfig, answers *handlers.AnswerHandler, healthHandler *handlers.HealthHandler, logger *logrus.Logger) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())

	router.GET("/health", healthHandler.HandleHealth)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	if cfg.RateLimiter != nil {
		v1.Use(cfg.RateLimiter.RateLimit())
	}
	{
		v1.POST("/search/:session_id", answers.HandleSearch)
		v1.POST("/answer/:session_id", answers.HandleAnswer)
		v1.POST("/session", answers.HandleCreateSession)
		v1.DELETE("/session/:session_id", answers.HandleClearSession)
		v1.GET("/session/:session_id/history", answers.HandleHistory)
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler(router)
}
