package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/caddie-backend/internal/data/repos"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type Repos struct {
	User       repos.UserRepo
	Club       repos.ClubRepo
	Course     repos.CourseRepo
	Round      repos.RoundRepo
	HoleScore  repos.HoleScoreRepo
	ShotRecord repos.ShotRecordRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		Club:       repos.NewClubRepo(db, log),
		Course:     repos.NewCourseRepo(db, log),
		Round:      repos.NewRoundRepo(db, log),
		HoleScore:  repos.NewHoleScoreRepo(db, log),
		ShotRecord: repos.NewShotRecordRepo(db, log),
	}
}
