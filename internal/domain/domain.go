package domain

import (
	"github.com/yungbote/caddie-backend/internal/domain/golf"
	"github.com/yungbote/caddie-backend/internal/domain/shot"
	"github.com/yungbote/caddie-backend/internal/domain/user"
)

type (
	User            = user.User
	HandicapProfile = user.HandicapProfile
	Club            = user.Club

	Course     = golf.Course
	CourseTee  = golf.CourseTee
	CourseHole = golf.CourseHole
	Round      = golf.Round
	HoleScore  = golf.HoleScore

	ShotRecord    = shot.Record
	ShotSituation = shot.Situation
	ShotFeedback  = shot.Feedback
)

// NewGolferHandicap is the sentinel index of a golfer without a history.
const NewGolferHandicap = user.NewGolferHandicap

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&User{},
		&Club{},
		&Course{},
		&CourseTee{},
		&CourseHole{},
		&Round{},
		&HoleScore{},
		&ShotRecord{},
	}
}
