package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/caddie-backend/internal/http/handlers"
	httpMW "github.com/yungbote/caddie-backend/internal/http/middleware"
	"github.com/yungbote/caddie-backend/internal/observability"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	RequestTimeout time.Duration
	RouteTimeouts  map[string]time.Duration

	AuthMiddleware *httpMW.AuthMiddleware

	UserHandler     *httpH.UserHandler
	ClubHandler     *httpH.ClubHandler
	CourseHandler   *httpH.CourseHandler
	RoundHandler    *httpH.RoundHandler
	HandicapHandler *httpH.HandicapHandler
	CaddieHandler   *httpH.CaddieHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(httpMW.AttachRequestContext(cfg.RequestTimeout, cfg.RouteTimeouts))
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// User (Me)
	if cfg.UserHandler != nil {
		api.GET("/me", cfg.UserHandler.GetMe)
		api.POST("/me", cfg.UserHandler.Provision)
		api.PATCH("/me", cfg.UserHandler.UpdateProfile)
		api.PUT("/me/handicap", cfg.UserHandler.SetStartingHandicap)
	}

	// Clubs
	if cfg.ClubHandler != nil {
		api.GET("/clubs", cfg.ClubHandler.List)
		api.POST("/clubs", cfg.ClubHandler.Add)
		api.PATCH("/clubs/:name", cfg.ClubHandler.Update)
		api.DELETE("/clubs/:name", cfg.ClubHandler.Delete)
	}

	// Courses
	if cfg.CourseHandler != nil {
		api.GET("/courses", cfg.CourseHandler.Search)
		api.GET("/courses/:id", cfg.CourseHandler.Get)
	}

	// Rounds
	if cfg.RoundHandler != nil {
		api.POST("/rounds", cfg.RoundHandler.Start)
		api.GET("/rounds", cfg.RoundHandler.History)
		api.GET("/rounds/active", cfg.RoundHandler.Active)
		api.GET("/rounds/:id", cfg.RoundHandler.Get)
		api.PUT("/rounds/:id/holes/:hole", cfg.RoundHandler.UpdateHole)
		api.POST("/rounds/:id/complete", cfg.RoundHandler.Complete)
		api.DELETE("/rounds/:id", cfg.RoundHandler.Delete)
	}

	// Handicap
	if cfg.HandicapHandler != nil {
		api.POST("/handicap/calculate", cfg.HandicapHandler.Calculate)
		api.POST("/handicap/differential", cfg.HandicapHandler.Differential)
		api.POST("/handicap/recompute", cfg.HandicapHandler.Recompute)
	}

	// Caddie
	if cfg.CaddieHandler != nil {
		api.POST("/caddie/recommend", cfg.CaddieHandler.Recommend)
		api.POST("/caddie/feedback", cfg.CaddieHandler.Feedback)
		api.GET("/caddie/shots", cfg.CaddieHandler.ListShots)
	}

	return r
}
