package app

import (
	httpH "github.com/yungbote/caddie-backend/internal/http/handlers"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	User     *httpH.UserHandler
	Club     *httpH.ClubHandler
	Course   *httpH.CourseHandler
	Round    *httpH.RoundHandler
	Handicap *httpH.HandicapHandler
	Caddie   *httpH.CaddieHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, checks map[string]httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(checks, cfg.Version),
		User:     httpH.NewUserHandler(log, services.User),
		Club:     httpH.NewClubHandler(log, services.Club),
		Course:   httpH.NewCourseHandler(log, services.Course),
		Round:    httpH.NewRoundHandler(log, services.Round),
		Handicap: httpH.NewHandicapHandler(log, services.Handicap),
		Caddie:   httpH.NewCaddieHandler(log, services.Caddie),
	}
}
