package app

import (
	"time"

	apphttp "github.com/yungbote/caddie-backend/internal/http"
	httpMW "github.com/yungbote/caddie-backend/internal/http/middleware"
	"github.com/yungbote/caddie-backend/internal/observability"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.ServiceName,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		RouteTimeouts:  routeTimeouts(cfg),

		AuthMiddleware: middleware.Auth,

		UserHandler:     handlers.User,
		ClubHandler:     handlers.Club,
		CourseHandler:   handlers.Course,
		RoundHandler:    handlers.Round,
		HandicapHandler: handlers.Handicap,
		CaddieHandler:   handlers.Caddie,

		HealthHandler: handlers.Health,
	})
}

// recommendTimeout covers the relevance filter and the agent run plus the
// persistence that follows them.
func recommendTimeout(cfg Config) time.Duration {
	return max(cfg.RequestTimeout, cfg.Caddie.FilterTimeout+cfg.Caddie.AgentTimeout+10*time.Second)
}

func routeTimeouts(cfg Config) map[string]time.Duration {
	return map[string]time.Duration{
		"/api/caddie/recommend": recommendTimeout(cfg),
	}
}
