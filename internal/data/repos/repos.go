package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/caddie-backend/internal/data/repos/golf"
	"github.com/yungbote/caddie-backend/internal/data/repos/shot"
	"github.com/yungbote/caddie-backend/internal/data/repos/user"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type ClubRepo = user.ClubRepo

type CourseRepo = golf.CourseRepo
type RoundRepo = golf.RoundRepo
type HoleScoreRepo = golf.HoleScoreRepo

type ShotRecordRepo = shot.RecordRepo

// HandicapWindow is how many recent scored rounds feed the handicap index.
const HandicapWindow = golf.HandicapWindow

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewClubRepo(db *gorm.DB, baseLog *logger.Logger) ClubRepo { return user.NewClubRepo(db, baseLog) }

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return golf.NewCourseRepo(db, baseLog)
}
func NewRoundRepo(db *gorm.DB, baseLog *logger.Logger) RoundRepo {
	return golf.NewRoundRepo(db, baseLog)
}
func NewHoleScoreRepo(db *gorm.DB, baseLog *logger.Logger) HoleScoreRepo {
	return golf.NewHoleScoreRepo(db, baseLog)
}

func NewShotRecordRepo(db *gorm.DB, baseLog *logger.Logger) ShotRecordRepo {
	return shot.NewRecordRepo(db, baseLog)
}
