package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/caddie-backend/internal/data/aggregates"
	"github.com/yungbote/caddie-backend/internal/modules/caddie"
	"github.com/yungbote/caddie-backend/internal/modules/handicap"
	"github.com/yungbote/caddie-backend/internal/modules/shotmemory"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	User     services.UserService
	Club     services.ClubService
	Course   services.CourseService
	Round    services.RoundService
	Handicap services.HandicapService
	Caddie   services.CaddieService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	tx := aggregates.NewGormTxRunner(db)
	updater := handicap.NewUpdater(reposet.User, reposet.Round, log)

	store := shotmemory.NewDualStore(clients.Vectors, clients.OpenAI, log)
	memory := shotmemory.NewMemory(store, reposet.ShotRecord, log)
	retriever := shotmemory.NewRetriever(store, log)
	filter := shotmemory.NewRelevanceFilter(
		clients.OpenAI,
		shotmemory.ParsePolicy(cfg.Caddie.FilterPolicy),
		cfg.Caddie.FilterTimeout,
		log,
	)
	agent := caddie.NewAgent(clients.OpenAI, caddie.DefaultToolbox(reposet.Club), caddie.AgentConfig{
		MaxSteps: cfg.Caddie.AgentMaxSteps,
		Timeout:  cfg.Caddie.AgentTimeout,
	}, log)
	orchestrator := caddie.NewOrchestrator(retriever, filter, agent, memory, caddie.Settings{
		CandidateK:          cfg.Caddie.CandidateK,
		SimilarityThreshold: cfg.Caddie.SimilarityThreshold,
		TargetCount:         cfg.Caddie.TargetCount,
	}, log)

	return Services{
		Auth:     services.NewAuthService(log, cfg.JWTSecretKey, cfg.JWTIssuer),
		User:     services.NewUserService(log, reposet.User),
		Club:     services.NewClubService(log, reposet.Club),
		Course:   services.NewCourseService(log, reposet.Course, clients.Cache),
		Round:    services.NewRoundService(log, tx, reposet.User, reposet.Course, reposet.Round, reposet.HoleScore, updater),
		Handicap: services.NewHandicapService(log, tx, reposet.User, updater),
		Caddie:   services.NewCaddieService(log, reposet.User, orchestrator, memory),
	}
}
