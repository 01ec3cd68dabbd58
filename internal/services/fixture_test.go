package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/caddie-backend/internal/data/aggregates"
	"github.com/yungbote/caddie-backend/internal/data/repos"
	"github.com/yungbote/caddie-backend/internal/data/repos/testutil"
	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/modules/handicap"
	"github.com/yungbote/caddie-backend/internal/platform/apierr"
	"github.com/yungbote/caddie-backend/internal/platform/ctxutil"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type fixture struct {
	db      *gorm.DB
	log     *logger.Logger
	tx      aggregates.TxRunner
	users   repos.UserRepo
	clubs   repos.ClubRepo
	courses repos.CourseRepo
	rounds  repos.RoundRepo
	holes   repos.HoleScoreRepo
	updater *handicap.Updater
	user    *types.User
	ctx     context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	users := repos.NewUserRepo(db, log)
	rounds := repos.NewRoundRepo(db, log)
	u := testutil.SeedUser(t, context.Background(), db, "golfer@example.com")
	return &fixture{
		db:      db,
		log:     log,
		tx:      aggregates.NewGormTxRunner(db),
		users:   users,
		clubs:   repos.NewClubRepo(db, log),
		courses: repos.NewCourseRepo(db, log),
		rounds:  rounds,
		holes:   repos.NewHoleScoreRepo(db, log),
		updater: handicap.NewUpdater(users, rounds, log),
		user:    u,
		ctx:     ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: u.ID}),
	}
}

func (f *fixture) roundService() RoundService {
	return NewRoundService(f.log, f.tx, f.users, f.courses, f.rounds, f.holes, f.updater)
}

func requireAPIStatus(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok, "expected *apierr.Error, got %T: %v", err, err)
	require.Equal(t, status, ae.Status)
	if code != "" {
		require.Equal(t, code, ae.Code)
	}
}

func dbcFor(f *fixture) dbctx.Context {
	return dbctx.Context{Ctx: f.ctx}
}
